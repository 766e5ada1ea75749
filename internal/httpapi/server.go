package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/catalog"
	"github.com/hamed0406/runnercheck/internal/domain"
	apimw "github.com/hamed0406/runnercheck/internal/httpapi/middleware"
	"github.com/hamed0406/runnercheck/internal/repo"
)

// ScanFunc runs one full scan and returns its report.
type ScanFunc func(ctx context.Context) (*domain.ScanReport, error)

type Server struct {
	Logger  *zap.Logger
	Catalog catalog.Catalog
	Reports repo.ReportStore
	Scan    ScanFunc

	scanning sync.Mutex
}

func NewServer(l *zap.Logger, cat catalog.Catalog, reports repo.ReportStore, scan ScanFunc) *Server {
	return &Server{Logger: l, Catalog: cat, Reports: reports, Scan: scan}
}

// RouterOptions configures auth, CORS and rate limiting.
type RouterOptions struct {
	Keys           apimw.Keys
	AllowedOrigins []string // empty allows all
	PublicRPM      int
	PublicBurst    int
}

func (s *Server) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if len(opts.AllowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(opts.PublicRPM, opts.PublicBurst))
		r.Use(apimw.RequireAny(opts.Keys))
		r.Get("/api/catalog", s.handleCatalog)
		r.Get("/api/reports/latest", s.handleLatest)
		r.Get("/api/reports", s.handleList)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(opts.Keys))
		r.Post("/api/scans", s.handleScan)
	})

	return r
}

type catalogEntry struct {
	Name     string            `json:"name"`
	Patterns []catalog.Pattern `json:"patterns"`
	Hosts    []string          `json:"hosts"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	out := make([]catalogEntry, 0, len(s.Catalog))
	for _, c := range s.Catalog {
		out = append(out, catalogEntry{Name: c.Name, Patterns: c.Patterns, Hosts: c.Hosts()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Reports.Latest(r.Context())
	if err != nil {
		s.Logger.Error("latest_report_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load report")
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "no scan yet")
		return
	}
	w.Header().Set("X-Run-ID", string(rep.RunID))
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be 1..500")
			return
		}
		limit = n
	}
	list, err := s.Reports.List(r.Context(), limit)
	if err != nil {
		s.Logger.Error("list_reports_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list reports")
		return
	}
	if list == nil {
		list = []domain.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleScan runs a scan synchronously. Only one scan runs at a time.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !s.scanning.TryLock() {
		writeError(w, http.StatusConflict, "scan already running")
		return
	}
	defer s.scanning.Unlock()

	rep, err := s.Scan(r.Context())
	if err != nil {
		s.Logger.Error("api_scan_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	s.Logger.Info("api_scan_done",
		zap.String("run_id", string(rep.RunID)),
		zap.Bool("all_reachable", rep.AllReachable()),
	)
	w.Header().Set("X-Run-ID", string(rep.RunID))
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
