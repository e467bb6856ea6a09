package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navlens/nav-audit/internal/common"
	"github.com/navlens/nav-audit/internal/entity"
	"github.com/navlens/nav-audit/internal/export"
)

type stubAnalyzer struct {
	lastText   string
	lastSource string
	err        error
}

func (s *stubAnalyzer) AnalyzeText(ctx context.Context, rawText, sourceName string) (*entity.AnalysisReport, error) {
	s.lastText = rawText
	s.lastSource = sourceName
	if s.err != nil {
		return nil, s.err
	}
	return &entity.AnalysisReport{
		ID:         uuid.New(),
		SourceName: sourceName,
		Record:     entity.FinancialRecord{FundName: "Acme Growth Fund"},
		Validation: entity.ValidationResult{IsValid: true, Confidence: 100},
		Analysis:   entity.NAVAnalysis{Assessment: "figures agree", Severity: "NONE"},
		CreatedAt:  time.Now().UTC(),
	}, nil
}

type stubRepo struct {
	byID    map[uuid.UUID]*entity.AnalysisReport
	listErr error
}

func (s *stubRepo) Save(ctx context.Context, r *entity.AnalysisReport) error { return nil }

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisReport, error) {
	if r, ok := s.byID[id]; ok {
		return r, nil
	}
	return nil, common.ErrNotFound
}

func (s *stubRepo) GetByContentHash(ctx context.Context, hash string) (*entity.AnalysisReport, error) {
	return nil, common.ErrNotFound
}

func (s *stubRepo) List(ctx context.Context, limit int) ([]*entity.AnalysisReport, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*entity.AnalysisReport
	for _, r := range s.byID {
		out = append(out, r)
	}
	return out, nil
}

func testServerConfig() common.ServerConfig {
	return common.ServerConfig{
		Addr:           ":0",
		MaxUploadBytes: 1 << 20,
		RateEvery:      time.Millisecond,
		RateBurst:      100,
	}
}

func newTestHandler(analyzer *stubAnalyzer, repo *stubRepo) http.Handler {
	if repo == nil {
		repo = &stubRepo{byID: map[uuid.UUID]*entity.AnalysisReport{}}
	}
	exporter := export.NewService(repo, nil)
	return New(testServerConfig(), analyzer, repo, exporter, nil).Handler()
}

func TestAnalyzeJSONBody(t *testing.T) {
	analyzer := &stubAnalyzer{}
	h := newTestHandler(analyzer, nil)

	body := `{"text":"Total assets: $1,250,000","source_name":"acme.txt"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "acme.txt", analyzer.lastSource)

	var report entity.AnalysisReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "figures agree", report.Analysis.Assessment)
}

func TestAnalyzeEmptyTextRejected(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "empty")
}

func TestAnalyzeInvalidJSONRejected(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyzeMultipartUpload(t *testing.T) {
	analyzer := &stubAnalyzer{}
	h := newTestHandler(analyzer, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "statement.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Total assets: $1,250,000"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "statement.txt", analyzer.lastSource)
	assert.Equal(t, "Total assets: $1,250,000", analyzer.lastText)
}

func TestAnalyzeRejectsNonTextUpload(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "statement.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "plain-text")
}

func TestAnalyzePipelineFailure(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{err: errors.New("store down")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetReport(t *testing.T) {
	stored := &entity.AnalysisReport{
		ID:       uuid.New(),
		Analysis: entity.NAVAnalysis{Severity: "MINOR"},
	}
	repo := &stubRepo{byID: map[uuid.UUID]*entity.AnalysisReport{stored.ID: stored}}
	h := newTestHandler(&stubAnalyzer{}, repo)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reports/"+stored.ID.String(), nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got entity.AnalysisReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, stored.ID, got.ID)
}

func TestGetReportBadID(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reports/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetReportNotFound(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reports/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListReportsBadLimit(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reports?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportReportsContentType(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reports/export", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(&stubAnalyzer{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateEvery = time.Hour
	cfg.RateBurst = 1
	repo := &stubRepo{byID: map[uuid.UUID]*entity.AnalysisReport{}}
	h := New(cfg, &stubAnalyzer{}, repo, export.NewService(repo, nil), nil).Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
