package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPage       = "page"
	KeyOutputPath = "output_path"
	KeyDepth      = "depth"
	KeyActivePage = "active_page"
	KeyFragment   = "fragment"
	KeyTemplates  = "templates_dir"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyError      = "error"
	KeyBuildID    = "build_id"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Page(title string) slog.Attr       { return slog.String(KeyPage, title) }
func OutputPath(p string) slog.Attr     { return slog.String(KeyOutputPath, p) }
func Depth(d int) slog.Attr             { return slog.Int(KeyDepth, d) }
func ActivePage(id string) slog.Attr    { return slog.String(KeyActivePage, id) }
func Fragment(name string) slog.Attr    { return slog.String(KeyFragment, name) }
func TemplatesDir(dir string) slog.Attr { return slog.String(KeyTemplates, dir) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
