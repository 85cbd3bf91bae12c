package templates

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Engine renders named templates against arbitrary payload data.
// Parsed templates are cached per engine; safe for concurrent use.
type Engine struct {
	loader Loader
	md     *markdownConverter

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewEngine creates an Engine backed by the given loader.
func NewEngine(loader Loader) *Engine {
	e := &Engine{
		loader: loader,
		md:     newMarkdownConverter(),
		cache:  make(map[string]*template.Template),
	}
	return e
}

// Render executes the named template against data and returns the markup.
// Returns ErrNotFound if no such template exists; any other failure is
// ErrRender, a server-side condition the caller must not conflate with
// not-found.
func (e *Engine) Render(ctx context.Context, name string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrRender, name, err)
	}
	return sb.String(), nil
}

// lookup returns the parsed template for name, parsing and caching on first use.
func (e *Engine) lookup(name string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}

	source, err := e.loader.Load(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(e.funcMap()).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrRender, name, err)
	}

	e.cache[name] = tmpl
	return tmpl, nil
}

// funcMap exposes the helper functions available inside templates.
func (e *Engine) funcMap() template.FuncMap {
	return template.FuncMap{
		// markdown renders a payload field as an HTML fragment.
		"markdown": func(s string) (template.HTML, error) {
			out, err := e.md.toHTML(s)
			if err != nil {
				return "", err
			}
			return template.HTML(out), nil // #nosec G203 -- goldmark output, payload text is escaped by goldmark
		},
		// formatDate renders a payload date string with a token format
		// or preset name ("iso", "european", "us", "long").
		"formatDate": formatDate,
		// money formats an amount with two decimals.
		"money": func(v any) string {
			switch n := v.(type) {
			case float64:
				return fmt.Sprintf("%.2f", n)
			case float32:
				return fmt.Sprintf("%.2f", n)
			case int:
				return fmt.Sprintf("%d.00", n)
			case int64:
				return fmt.Sprintf("%d.00", n)
			default:
				return fmt.Sprintf("%v", v)
			}
		},
	}
}
