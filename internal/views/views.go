// Package views renders the server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

type Renderer struct {
	pages map[string]*template.Template
	md    goldmark.Markdown
}

// LoginPage, RegisterPage and DashboardPage name the available pages.
const (
	LoginPage     = "login.html"
	RegisterPage  = "register.html"
	DashboardPage = "dashboard.html"
)

func New() (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template),
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}

	funcs := template.FuncMap{"markdown": r.Markdown}
	for _, page := range []string{LoginPage, RegisterPage, DashboardPage} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render executes page into w. Output is buffered so a template error never
// leaves a half-written page behind.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Markdown converts assistant output to HTML. Raw HTML in the source is
// escaped by goldmark's default renderer.
func (r *Renderer) Markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}
