package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/foxzi/tweetsift/internal/web/models"
)

//go:embed *.html
var templatesFS embed.FS

// TweetURL is the public address of a post id
func TweetURL(id string) string {
	return "https://twitter.com/i/web/status/" + id
}

// FormatDate renders t as "January 2nd, 2006 · 15:04"
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January ") + humanize.Ordinal(t.Day()) + t.Format(", 2006 · 15:04")
}

var funcs = template.FuncMap{
	"formatDate": FormatDate,
	"labelColor": models.LabelColor,
	"tweetURL":   TweetURL,
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
}

type Engine struct {
	templates map[string]*template.Template
}

func New() (*Engine, error) {
	e := &Engine{
		templates: make(map[string]*template.Template),
	}

	// Parse layout
	layoutTmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "layout.html")
	if err != nil {
		return nil, err
	}

	// Parse each page template
	entries, err := fs.ReadDir(templatesFS, ".")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == "layout.html" {
			continue
		}

		name := entry.Name()
		baseName := name[:len(name)-len(filepath.Ext(name))]

		// Clone layout and parse page template
		tmpl, err := layoutTmpl.Clone()
		if err != nil {
			return nil, err
		}

		_, err = tmpl.ParseFS(templatesFS, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		e.templates[baseName] = tmpl
	}

	return e, nil
}

// Render executes page name into w. Output is buffered so a failing
// template never leaves a half-written page behind.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	tmpl, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a page template exists
func (e *Engine) Has(name string) bool {
	_, ok := e.templates[name]
	return ok
}
