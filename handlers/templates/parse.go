// Package templates embeds the HTML pages served by the handlers.
package templates

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/icco/moodpick/lib/tmdb"
	"github.com/icco/moodpick/models"
)

//go:embed *.html
var FS embed.FS

// Layout is the template every page is executed through.
const Layout = "base.html"

// ParseTemplates parses the layout plus the given page templates.
func ParseTemplates(files ...string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"poster": tmdb.GetPosterURL,
		"https":  models.SecureURL,
		"logo":   tmdb.GetLogoURL,
		"rating": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
	}

	return template.New(Layout).Funcs(funcMap).ParseFS(FS, append([]string{Layout}, files...)...)
}
