package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocument   = "document"
	KeyLayout     = "layout"
	KeyOutputPath = "output_path"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeyPages      = "pages"
	KeyAssets     = "assets"
	KeyFootnote   = "footnote"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Document(path string) slog.Attr    { return slog.String(KeyDocument, path) }
func Layout(name string) slog.Attr      { return slog.String(KeyLayout, name) }
func OutputPath(path string) slog.Attr  { return slog.String(KeyOutputPath, path) }
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Pages(n int) slog.Attr             { return slog.Int(KeyPages, n) }
func Assets(n int) slog.Attr            { return slog.Int(KeyAssets, n) }
func Footnote(label string) slog.Attr   { return slog.String(KeyFootnote, label) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
