package markdown

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strings"
)

// HighlightJSON pretty-prints raw JSON and renders it as a chroma code block.
// Invalid JSON is shown verbatim.
func HighlightJSON(raw string) template.HTML {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return template.HTML("")
	}

	var pretty bytes.Buffer
	source := raw
	if err := json.Indent(&pretty, []byte(raw), "", "  "); err == nil {
		source = pretty.String()
	}

	var out bytes.Buffer
	renderCodeBlock(&out, source, "json")
	return template.HTML(out.String())
}
