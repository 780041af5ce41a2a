package plotpage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "page.html"

// layout holds the parsed page templates. Parsing happens on first use.
type layout struct {
	load func() (*template.Template, error)
}

func newLayout() *layout {
	return &layout{load: sync.OnceValues(func() (*template.Template, error) {
		tmpl, err := template.New("").Funcs(template.FuncMap{
			"css": func(s string) template.CSS { return template.CSS(s) }, //nolint:gosec // theme constants only.
		}).ParseFS(templateFS, "templates/*.html")
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}

		return tmpl, nil
	})}
}

var pageLayout = newLayout()

// execute renders the page template into a buffer so a failed render never
// leaves partial HTML in the destination.
func (l *layout) execute(view any) ([]byte, error) {
	tmpl, err := l.load()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	err = tmpl.ExecuteTemplate(&buf, pageTemplate, view)
	if err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}

	return buf.Bytes(), nil
}
