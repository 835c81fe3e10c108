package templates

import (
	"embed"
	"html/template"
	"time"
)

//go:embed *.html
var files embed.FS

// Load parses the embedded page templates.
func Load() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"stamp": stamp,
	}).ParseFS(files, "*.html")
}

func stamp(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.Format("2006-01-02 15:04:05")
}
