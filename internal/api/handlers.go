package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mrwolf/hallmark-server/internal/archive"
	"github.com/mrwolf/hallmark-server/internal/generator"
	"github.com/mrwolf/hallmark-server/internal/logger"
	"github.com/mrwolf/hallmark-server/internal/models"
	"github.com/mrwolf/hallmark-server/internal/scheduler"
	"github.com/mrwolf/hallmark-server/internal/selection"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// MovieGenerator makes single movies and selected batches.
type MovieGenerator interface {
	Generate(wantOriginal bool) generator.Movie
	Batch(n int) []selection.Pick
}

// Pinger reports lexicon reachability.
type Pinger interface {
	Ping() error
}

type Handlers struct {
	movies   MovieGenerator
	store    Pinger
	featured *scheduler.Featured
	archive  *archive.Archive
	log      *logger.Logger
}

// NewHandlers wires the handlers. arch may be nil when archiving is
// disabled.
func NewHandlers(movies MovieGenerator, store Pinger, featured *scheduler.Featured, arch *archive.Archive, log *logger.Logger) *Handlers {
	return &Handlers{
		movies:   movies,
		store:    store,
		featured: featured,
		archive:  arch,
		log:      log,
	}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  "ok",
		Lexicon: h.checkLexicon(),
		Version: "1.0.0",
	}
	if resp.Lexicon != "connected" {
		resp.Status = "degraded"
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handlers) checkLexicon() string {
	if err := h.store.Ping(); err != nil {
		return "error: " + err.Error()
	}
	return "connected"
}

// Movies handles GET /api/v1/movies
func (h *Handlers) Movies(w http.ResponseWriter, r *http.Request) {
	picks := h.movies.Batch(selection.MaxBatch)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.MoviesResponse{Movies: models.MoviesFromPicks(picks)})
}

// OriginalMovie handles GET /api/v1/original
func (h *Handlers) OriginalMovie(w http.ResponseWriter, r *http.Request) {
	m := h.movies.Generate(true)
	if len(m.Images) == 0 || len(m.Titles) == 0 {
		writeError(w, http.StatusInternalServerError, msgOriginalFailed, "ORIGINAL_FAILED")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.Movie{Plot: m.Plot, Image: m.Images[0], Title: m.Titles[0]})
}

// Featured handles GET /api/v1/featured
func (h *Handlers) Featured(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.featured.Get()
	if !ok {
		writeError(w, http.StatusNotFound, "no featured batch yet", "NOT_READY")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(batch)
}

// FeaturedHistory handles GET /api/v1/featured/history
// Query params: limit (default 10, max 100)
func (h *Handlers) FeaturedHistory(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "featured archive is disabled", "ARCHIVE_DISABLED")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "INVALID_LIMIT")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	batches, err := h.archive.Recent(limit)
	if err != nil {
		h.log.Error("reading featured archive failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read featured archive", "ARCHIVE_ERROR")
		return
	}
	if batches == nil {
		batches = []models.FeaturedBatch{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.FeaturedHistoryResponse{Batches: batches})
}

// recoverJSON turns a panic in a JSON handler into an error response.
func (h *Handlers) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.log.Error("api handler panicked", "path", r.URL.Path, "panic", rec)
				writeError(w, http.StatusInternalServerError, msgGenerationFailed, "GENERATION_FAILED")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
