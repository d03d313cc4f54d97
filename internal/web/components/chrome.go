package components

//go:generate go run situs/framework/cmd/templgen -path . -base ../../..

import (
	"html/template"
	"strings"
	"sync"

	"github.com/a-h/templ"

	"situs/internal/markdown"
	"situs/internal/situs"
	"situs/internal/web/appcore"
)

const siteName = "situs"

var chrome struct {
	sync.RWMutex
	announcement template.HTML
	theme        markdown.Theme
}

// SetAnnouncement renders the banner markdown once; AnnouncementBanner reuses it.
func SetAnnouncement(source string, opts markdown.Options) {
	rendered := markdown.Inline(strings.TrimSpace(source), opts)

	chrome.Lock()
	chrome.announcement = rendered
	chrome.Unlock()
}

// SetHighlightTheme selects the chroma styles embedded in every page head.
func SetHighlightTheme(theme markdown.Theme) {
	chrome.Lock()
	chrome.theme = theme
	chrome.Unlock()
}

func currentAnnouncement() template.HTML {
	chrome.RLock()
	defer chrome.RUnlock()
	return chrome.announcement
}

func highlightCSS() string {
	chrome.RLock()
	theme := chrome.theme
	chrome.RUnlock()
	return string(theme.CSS())
}

type FontConfig struct {
	Sans          string
	Mono          string
	StylesheetURL string
}

var (
	fontsOnce        sync.Once
	fonts            FontConfig
	fontVariablesCSS string
)

func Fonts() FontConfig {
	fontsOnce.Do(buildFonts)
	return fonts
}

// FontVariablesCSS exposes the font stacks as --font-sans and --font-mono.
func FontVariablesCSS() string {
	fontsOnce.Do(buildFonts)
	return fontVariablesCSS
}

func buildFonts() {
	fonts = FontConfig{
		Sans:          `"Inter", ui-sans-serif, system-ui, -apple-system, "Segoe UI", sans-serif`,
		Mono:          `"JetBrains Mono", ui-monospace, SFMono-Regular, Menlo, monospace`,
		StylesheetURL: "https://fonts.googleapis.com/css2?family=Inter:wght@400;600&family=JetBrains+Mono&display=swap",
	}
	fontVariablesCSS = ":root{--font-sans:" + fonts.Sans + ";--font-mono:" + fonts.Mono + ";}"
}

// inlineStyle writes trusted CSS unescaped; style elements cannot hold expressions.
func inlineStyle(css string) templ.Component {
	return templ.Raw("<style>" + css + "</style>")
}

func pageTitle(view appcore.RootLayoutView) string {
	if view == nil || view.LayoutPageTitle() == "" {
		return siteName
	}
	return view.LayoutPageTitle() + " | " + siteName
}

func tokenLabel(token situs.Token) string {
	if token.Name != "" {
		return token.Name
	}
	return token.Contract + " #" + token.TokenID
}
