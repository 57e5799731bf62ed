package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/mrwolf/hallmark-server/internal/selection"
)

const (
	msgGenerationFailed = "Generation of improved Hallmark movies has failed. Hallmark is just really good as it is, apparently."
	msgOriginalFailed   = "Attempt to lookup the original movie details failed."
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// movieView is a movie ready for a page. Plots come from the trusted lexicon
// and carry their own emphasis markup.
type movieView struct {
	Plot  template.HTML
	Image string
	Title string
}

type indexView struct {
	Heading string
	Movies  []movieView
}

type originalView struct {
	Heading string
	Movie   movieView
}

type apologyView struct {
	Heading string
	Message string
	Status  int
}

func newMovieView(p selection.Pick) movieView {
	return movieView{Plot: template.HTML(p.Plot), Image: p.Image, Title: p.Title}
}

// Index handles GET /
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	picks := h.movies.Batch(selection.MaxBatch)

	view := indexView{Heading: "Hallmark Movies, Improved"}
	for _, p := range picks {
		view.Movies = append(view.Movies, newMovieView(p))
	}

	if err := h.render(w, http.StatusOK, "index.html", view); err != nil {
		h.log.Error("rendering index failed", "error", err)
		h.apology(w, msgGenerationFailed, http.StatusForbidden)
	}
}

// Original handles GET /original
func (h *Handlers) Original(w http.ResponseWriter, r *http.Request) {
	m := h.movies.Generate(true)
	if len(m.Images) == 0 || len(m.Titles) == 0 {
		h.apology(w, msgOriginalFailed, http.StatusForbidden)
		return
	}

	view := originalView{
		Heading: "The Original",
		Movie:   newMovieView(selection.Pick{Plot: m.Plot, Image: m.Images[0], Title: m.Titles[0]}),
	}
	if err := h.render(w, http.StatusOK, "original.html", view); err != nil {
		h.log.Error("rendering original failed", "error", err)
		h.apology(w, msgOriginalFailed, http.StatusForbidden)
	}
}

// NotFound renders the apology page for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.apology(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// MethodNotAllowed renders the apology page for unsupported methods.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.apology(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// render executes a page into a buffer first so a failing template never
// leaves a half-written response.
func (h *Handlers) render(w http.ResponseWriter, status int, name string, view interface{}) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (h *Handlers) apology(w http.ResponseWriter, message string, status int) {
	view := apologyView{Heading: "Sorry", Message: message, Status: status}
	if err := h.render(w, status, "apology.html", view); err != nil {
		h.log.Error("rendering apology failed", "error", err)
		http.Error(w, message, status)
	}
}

// recoverPage turns a panic in a page handler into the apology page with
// the given message.
func (h *Handlers) recoverPage(message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					h.log.Error("page handler panicked", "path", r.URL.Path, "panic", rec)
					h.apology(w, message, http.StatusForbidden)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
