package listing

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/dewey/feed-directory/directory"
)

// PlaceholderPath is where the fallback favicon is served
const PlaceholderPath = "/static/placeholder.svg"

var (
	//go:embed templates/*.html
	templateFS embed.FS
	//go:embed static/*
	staticFS embed.FS

	indexTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
		"timestamp": func(t time.Time) string { return t.UTC().Format(time.RFC1123) },
	}).ParseFS(templateFS, "templates/index.html"))
)

// NewHandler initializes a new feed directory handler
func NewHandler(l log.Logger, s Service) *chi.Mux {
	r := chi.NewRouter()

	static, _ := fs.Sub(staticFS, "static")
	r.Group(func(r chi.Router) {
		r.Get("/", indexHandler(l, s))
		r.Get("/healthz", healthHandler(l, s))
		r.Get("/api/feeds", feedsHandler(l, s))
		r.Get("/feeds/{id}/preview", previewHandler(l, s))
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	})

	return r
}

type row struct {
	directory.Entry
	Favicon string
	// Hidden rows don't match the query but stay in the page so the search box can bring them back
	Hidden bool
}

type page struct {
	Query       string
	Status      directory.Status
	Message     string
	Rows        []row
	Visible     int
	Total       int
	LoadedAt    time.Time
	Placeholder string
}

func indexHandler(l log.Logger, s Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.Snapshot()
		p := page{
			Query:       r.URL.Query().Get("q"),
			Status:      snap.Status,
			Message:     snap.Message(),
			Total:       len(snap.Entries),
			LoadedAt:    snap.LoadedAt,
			Placeholder: PlaceholderPath,
		}
		if snap.Status == directory.StatusReady {
			p.Rows = lo.Map(snap.Entries, func(e directory.Entry, _ int) row {
				return row{
					Entry:   e,
					Favicon: lo.Ternary(e.FaviconURL != "", e.FaviconURL, PlaceholderPath),
					Hidden:  !directory.Matches(e, p.Query),
				}
			})
			p.Visible = lo.CountBy(p.Rows, func(r row) bool { return !r.Hidden })
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if snap.Status == directory.StatusError {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := indexTemplate.Execute(w, p); err != nil {
			level.Error(l).Log("msg", "rendering directory page", "err", err)
		}
	}
}

type feedsResponse struct {
	Query   string            `json:"query"`
	Count   int               `json:"count"`
	Entries []directory.Entry `json:"entries"`
}

func feedsHandler(l log.Logger, s Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		entries, err := s.Search(q)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		if entries == nil {
			entries = []directory.Entry{}
		}
		writeJSON(w, http.StatusOK, feedsResponse{Query: q, Count: len(entries), Entries: entries})
	}
}

func previewHandler(l log.Logger, s Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := s.Preview(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrUnknownEntry) {
				writeError(w, http.StatusNotFound, err)
				return
			}
			level.Error(l).Log("msg", "fetching feed preview", "id", id, "err", err)
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type healthResponse struct {
	Status  directory.Status `json:"status"`
	Entries int              `json:"entries"`
	Error   string           `json:"error,omitempty"`
}

func healthHandler(l log.Logger, s Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.Snapshot()
		status := http.StatusOK
		if snap.Status == directory.StatusError {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, healthResponse{Status: snap.Status, Entries: len(snap.Entries), Error: snap.Message()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
