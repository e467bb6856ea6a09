package server

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/navlens/nav-audit/internal/common"
	"github.com/navlens/nav-audit/internal/entity"
	"github.com/navlens/nav-audit/internal/export"
	"github.com/navlens/nav-audit/internal/repository"
)

// Analyzer is the slice of the pipeline the HTTP layer depends on.
type Analyzer interface {
	AnalyzeText(ctx context.Context, rawText, sourceName string) (*entity.AnalysisReport, error)
}

// Server wires the thin HTTP plumbing around the analysis pipeline. All the
// actual work happens in the pipeline and its collaborators; handlers only
// decode requests and encode responses.
type Server struct {
	cfg      common.ServerConfig
	analyzer Analyzer
	reports  repository.ReportRepository
	exporter *export.Service
	logger   *slog.Logger
	limiter  *rate.Limiter
}

func New(cfg common.ServerConfig, analyzer Analyzer, reports repository.ReportRepository, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		analyzer: analyzer,
		reports:  reports,
		exporter: exporter,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(cfg.RateEvery), cfg.RateBurst),
	}
}

// Handler returns the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/reports", s.handleListReports)
	mux.HandleFunc("GET /api/reports/export", s.handleExportReports)
	mux.HandleFunc("GET /api/reports/{id}", s.handleGetReport)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.enableCORS(s.rateLimit(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.Warn("rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
