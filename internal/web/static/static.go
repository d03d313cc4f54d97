package static

import "embed"

//go:embed *.css
var FS embed.FS
