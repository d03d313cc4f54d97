package markdown

import (
	"strings"
	"testing"
)

func TestToHTML_ExternalLinksOpenInNewTab(t *testing.T) {
	html := string(ToHTML("[docs](https://example.com/read)", Options{
		RootURL: "https://situs.example",
	}))

	if !strings.Contains(html, `href="https://example.com/read"`) {
		t.Fatalf("expected external href, got %s", html)
	}
	if !strings.Contains(html, `target="_blank"`) {
		t.Fatalf("expected target blank, got %s", html)
	}
	if !strings.Contains(html, `rel="noopener noreferrer"`) {
		t.Fatalf("expected external rel attrs, got %s", html)
	}
}

func TestToHTML_NormalizesSameDomainAbsoluteLinks(t *testing.T) {
	html := string(ToHTML("[same](https://situs.example/acme/assets?x=1#k)", Options{
		RootURL: "https://situs.example",
	}))

	if !strings.Contains(html, `href="/acme/assets?x=1#k"`) {
		t.Fatalf("expected normalized same-domain href, got %s", html)
	}
	if strings.Contains(html, `target="_blank"`) {
		t.Fatalf("did not expect target blank for same-domain links, got %s", html)
	}
}

func TestToHTML_RelativeLinksStayInTab(t *testing.T) {
	html := string(ToHTML("[assets](/acme/assets)", Options{}))

	if !strings.Contains(html, `href="/acme/assets"`) {
		t.Fatalf("expected relative href, got %s", html)
	}
	if strings.Contains(html, `rel="noopener noreferrer"`) {
		t.Fatalf("did not expect rel attrs for relative links, got %s", html)
	}
}

func TestToHTML_StripsRawHTML(t *testing.T) {
	html := string(ToHTML("hello <script>alert(1)</script>", Options{}))

	if strings.Contains(html, "<script>") {
		t.Fatalf("expected raw html to be skipped, got %s", html)
	}
}

func TestToHTML_HighlightsCodeBlocks(t *testing.T) {
	source := "```go\nfmt.Println(\"hello\")\n```"
	html := string(ToHTML(source, Options{}))

	if !strings.Contains(html, `class="chroma"`) {
		t.Fatalf("expected chroma class for fenced code block, got %s", html)
	}
	if !strings.Contains(html, "Println") {
		t.Fatalf("expected code content in rendered block, got %s", html)
	}
}

func TestToHTML_RendersInlineCodeClass(t *testing.T) {
	html := string(ToHTML("Run `situs update-database` now.", Options{}))

	if !strings.Contains(html, `<code class="inline-code">situs update-database</code>`) {
		t.Fatalf("expected inline code class, got %s", html)
	}
}

func TestInline_DropsParagraphWrapper(t *testing.T) {
	got := string(Inline("**Maintenance** tonight", Options{}))
	if got != "<strong>Maintenance</strong> tonight" {
		t.Fatalf("expected unwrapped inline html, got %q", got)
	}

	if got := string(Inline("  ", Options{})); got != "" {
		t.Fatalf("expected empty output for blank input, got %q", got)
	}
}

func TestHighlightJSON(t *testing.T) {
	html := string(HighlightJSON(`{"name":"Deed #1","attributes":[1,2]}`))

	if !strings.Contains(html, `class="chroma"`) {
		t.Fatalf("expected chroma block, got %s", html)
	}
	if !strings.Contains(html, "Deed #1") {
		t.Fatalf("expected metadata content, got %s", html)
	}
	if string(HighlightJSON("   ")) != "" {
		t.Fatal("expected empty output for blank metadata")
	}

	invalid := string(HighlightJSON(`{not json`))
	if !strings.Contains(invalid, `class="chroma"`) {
		t.Fatalf("expected invalid json to still render a code block, got %s", invalid)
	}
}

func TestThemeCSS(t *testing.T) {
	css := string(DefaultTheme.CSS())
	if !strings.Contains(css, ".chroma") {
		t.Fatalf("expected chroma rules, got %q", css)
	}
	if !strings.Contains(css, "prefers-color-scheme: dark") {
		t.Fatalf("expected dark scheme override, got %q", css)
	}

	if got := string(Theme{}.CSS()); got != css {
		t.Fatal("empty theme should fall back to the default styles")
	}

	single := string(Theme{Light: "monokai", Dark: "monokai"}.CSS())
	if strings.Contains(single, "prefers-color-scheme") {
		t.Fatalf("identical styles should not emit a dark override, got %q", single)
	}
}
