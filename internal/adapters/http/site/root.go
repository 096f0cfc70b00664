// Package site renders the raffle landing page shell.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/raffle/internal/config"
)

// Error constants
var (
	ErrRender = errors.New("site render failed")
)

var page = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="es">
  <head>
    <meta charset="{{.Charset}}">
    <meta name="viewport" content="{{.Viewport}}">
    <meta name="description" content="{{.Description}}">
    <title>{{.Title}}</title>
    <link rel="icon" type="image/x-icon" href="{{.Favicon}}">
  </head>
  <body>
    <div id="app"></div>
  </body>
</html>
`))

// Render writes the page shell for meta.
func Render(meta config.Site) ([]byte, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// Register attaches the landing page to r.
func Register(_ context.Context, r chi.Router, meta config.Site) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/", NewRootHandler(meta).HandleRoot)
}

// RootHandler handles root path requests
type RootHandler struct {
	meta config.Site
}

// NewRootHandler creates a new root handler
func NewRootHandler(meta config.Site) *RootHandler {
	return &RootHandler{meta: meta}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	body, err := Render(h.meta)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset="+h.meta.Charset)
	_, _ = w.Write(body)
}
