package email

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"day": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006")
	},
}

// loadTemplates parses every embedded template; each is executed by file name.
func loadTemplates() (*template.Template, error) {
	return template.New("email").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
