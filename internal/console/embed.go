// ABOUTME: Embeds HTML templates, static assets and help pages into the binary
// ABOUTME: Provides templateFS, staticFS and helpFS for loading at runtime

package console

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed help/*.md
var helpFS embed.FS
