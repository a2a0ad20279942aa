// Package render turns the pages produced by the endpoints into HTML or JSON responses
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/derWhity/fyyur/internal/models"
)

//go:embed templates
var templateFS embed.FS

const (
	templateRoot  = "templates/"
	layoutPattern = "templates/layouts/*.html"
)

// Page is the result of an endpoint: the template to render, the data to render it with and the messages to show
type Page struct {
	// HTTP status of the response - 200 when not set
	Status   int               `json:"-"`
	Template string            `json:"template"`
	Data     interface{}       `json:"data,omitempty"`
	Flash    string            `json:"flash,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// StatusCode returns the HTTP status the page is delivered with
func (p Page) StatusCode() int {
	if p.Status == 0 {
		return http.StatusOK
	}
	return p.Status
}

// jsonPage is the JSON form of a page
type jsonPage struct {
	OK bool `json:"ok"`
	Page
}

var funcs = template.FuncMap{
	"join": func(items []string) string {
		return strings.Join(items, ", ")
	},
	"datetime": func(t time.Time) string {
		return t.UTC().Format("Mon Jan 2, 2006 15:04")
	},
	"states": func() []string {
		return models.States
	},
	"genreChoices": func() []string {
		return models.GenreChoices
	},
	"summaries": func(kind string, items []models.Summary) map[string]interface{} {
		return map[string]interface{}{"Kind": kind, "Items": items}
	},
	"contains": func(items models.Genres, item string) bool {
		return items.Contains(item)
	},
}

// Renderer renders pages with the embedded templates
type Renderer struct {
	pages map[string]*template.Template
}

// New parses all embedded templates. Every template outside of the layouts directory becomes a page named by its path
// without the extension, e.g. "pages/venues".
func New() (*Renderer, error) {
	layout, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, layoutPattern)
	if err != nil {
		return nil, errors.Wrap(err, "New: Failed to parse layouts")
	}
	files, err := fs.Glob(templateFS, templateRoot+"*/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "New: Failed to list templates")
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, file := range files {
		if strings.HasPrefix(file, templateRoot+"layouts/") {
			continue
		}
		t, err := layout.Clone()
		if err != nil {
			return nil, errors.Wrap(err, "New: Failed to clone layout")
		}
		if _, err = t.ParseFS(templateFS, file); err != nil {
			return nil, errors.Wrapf(err, "New: Failed to parse template '%s'", file)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, templateRoot), ".html")
		r.pages[name] = t
	}
	return r, nil
}

// Has checks if a page with the given name exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Write delivers the page as JSON or as HTML
func (r *Renderer) Write(w http.ResponseWriter, p Page, asJSON bool) error {
	if asJSON {
		return JSON(w, p)
	}
	return r.HTML(w, p)
}

// HTML renders the page with its template. Nothing is written when rendering fails.
func (r *Renderer) HTML(w http.ResponseWriter, p Page) error {
	t, ok := r.pages[p.Template]
	if !ok {
		return errors.Errorf("HTML: Unknown template '%s'", p.Template)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return errors.Wrapf(err, "HTML: Failed to render template '%s'", p.Template)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(p.StatusCode())
	_, err := buf.WriteTo(w)
	return err
}

// JSON writes the page as JSON document
func JSON(w http.ResponseWriter, p Page) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(p.StatusCode())
	return json.NewEncoder(w).Encode(jsonPage{OK: p.StatusCode() < http.StatusBadRequest, Page: p})
}
