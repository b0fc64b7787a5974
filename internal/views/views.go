// Package views renders the console pages from embedded templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/Masterminds/sprig"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templateFS embed.FS

// Page template names
const (
	PageLogin        = "login.html"
	PageDashboard    = "dashboard.html"
	PageUsers        = "users.html"
	PageUnauthorized = "unauthorized.html"
)

// Renderer implements gin's render.HTMLRender with one template set per page
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page together with the shared layout
func New() (*Renderer, error) {
	return parse(templateFS)
}

func parse(fsys fs.FS) (*Renderer, error) {
	entries, err := fs.ReadDir(fsys, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == "layout.html" || !strings.HasSuffix(name, ".html") {
			continue
		}

		t, err := template.New(name).
			Funcs(sprig.FuncMap()).
			ParseFS(fsys, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}

	return r, nil
}

// Instance returns the render for a page. Unknown pages are a programming
// error and panic, which gin's recovery middleware turns into a 500.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		panic(fmt.Sprintf("views: unknown page %q", name))
	}

	return render.HTML{
		Template: t,
		Name:     "layout",
		Data:     data,
	}
}
