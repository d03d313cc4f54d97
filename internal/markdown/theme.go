package markdown

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// Theme names the chroma styles used for highlighted metadata. Light is the
// default; Dark applies under prefers-color-scheme: dark.
type Theme struct {
	Light string
	Dark  string
}

var DefaultTheme = Theme{Light: "github", Dark: "dracula"}

var themeCSS sync.Map

// CSS returns the stylesheet for the theme. Each theme is rendered once.
func (t Theme) CSS() template.CSS {
	t = t.withDefaults()
	if cached, ok := themeCSS.Load(t); ok {
		return cached.(template.CSS)
	}

	css, _ := themeCSS.LoadOrStore(t, template.CSS(t.build()))
	return css.(template.CSS)
}

func (t Theme) withDefaults() Theme {
	t.Light = strings.TrimSpace(t.Light)
	t.Dark = strings.TrimSpace(t.Dark)
	if t.Light == "" {
		t.Light = DefaultTheme.Light
	}
	if t.Dark == "" {
		t.Dark = DefaultTheme.Dark
	}
	return t
}

func (t Theme) build() string {
	var out strings.Builder
	out.WriteString(styleCSS(t.Light))
	if t.Dark != t.Light {
		out.WriteString("@media (prefers-color-scheme: dark) {\n")
		out.WriteString(styleCSS(t.Dark))
		out.WriteString("}\n")
	}
	return out.String()
}

// styleCSS falls back to chroma's default style for unknown names.
func styleCSS(name string) string {
	style := styles.Get(name)

	var buffer bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buffer, style); err != nil {
		return ""
	}
	return buffer.String()
}
