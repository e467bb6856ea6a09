package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/navlens/nav-audit/internal/common"
)

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			sendJSONError(w, "limit must be a positive integer", http.StatusBadRequest, s.logger)
			return
		}
		limit = n
	}

	reports, err := s.reports.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list reports failed", "error", err)
		sendJSONError(w, "list reports failed", http.StatusInternalServerError, s.logger)
		return
	}
	sendJSON(w, http.StatusOK, reports, s.logger)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendJSONError(w, "id must be a UUID", http.StatusBadRequest, s.logger)
		return
	}

	report, err := s.reports.GetByID(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		sendJSONError(w, "report not found", http.StatusNotFound, s.logger)
		return
	}
	if err != nil {
		s.logger.Error("get report failed", "report_id", id, "error", err)
		sendJSONError(w, "get report failed", http.StatusInternalServerError, s.logger)
		return
	}
	sendJSON(w, http.StatusOK, report, s.logger)
}

func (s *Server) handleExportReports(w http.ResponseWriter, r *http.Request) {
	limit := 0 // repository default
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			sendJSONError(w, "limit must be a positive integer", http.StatusBadRequest, s.logger)
			return
		}
		limit = n
	}

	b, err := s.exporter.ExportReportsXLSX(r.Context(), limit)
	if err != nil {
		s.logger.Error("export reports failed", "error", err)
		sendJSONError(w, "export failed", http.StatusInternalServerError, s.logger)
		return
	}

	filename := "nav-reports-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(b); err != nil {
		s.logger.Error("write xlsx response failed", "error", err)
	}
}
