package server

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/navlens/nav-audit/constants"
)

type analyzeRequest struct {
	Text       string `json:"text"`
	SourceName string `json:"source_name,omitempty"`
}

// handleAnalyze accepts either a JSON body {"text": ...} or a multipart
// upload with a "file" field holding a plain-text document. Document-to-
// text conversion is assumed to have happened upstream.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	text, sourceName, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(text) == "" {
		sendJSONError(w, "document text is empty", http.StatusBadRequest, s.logger)
		return
	}

	report, err := s.analyzer.AnalyzeText(r.Context(), text, sourceName)
	if err != nil {
		s.logger.Error("analyze failed", "source", sourceName, "error", err)
		sendJSONError(w, "analysis failed", http.StatusInternalServerError, s.logger)
		return
	}

	sendJSON(w, http.StatusOK, report, s.logger)
}

func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (text, sourceName string, ok bool) {
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
			s.logger.Warn("failed to parse multipart form or request too large",
				"error", err, "limit", s.cfg.MaxUploadBytes)
			sendJSONError(w, "failed to parse form or request too large", http.StatusBadRequest, s.logger)
			return "", "", false
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			s.logger.Warn("failed to retrieve file from request", "error", err)
			sendJSONError(w, "failed to retrieve file; use the 'file' field", http.StatusBadRequest, s.logger)
			return "", "", false
		}
		defer file.Close()

		ext := constants.NormalizeExt(filepath.Ext(header.Filename))
		if _, allowed := constants.AllowedExtensions[ext]; !allowed {
			sendJSONError(w, "only plain-text documents are accepted", http.StatusBadRequest, s.logger)
			return "", "", false
		}

		b, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes))
		if err != nil {
			s.logger.Warn("failed to read uploaded file", "filename", header.Filename, "error", err)
			sendJSONError(w, "failed to read uploaded file", http.StatusBadRequest, s.logger)
			return "", "", false
		}
		return string(b), header.Filename, true
	}

	var req analyzeRequest
	body := io.LimitReader(r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.logger.Warn("failed to decode analyze request", "error", err)
		sendJSONError(w, "invalid JSON body", http.StatusBadRequest, s.logger)
		return "", "", false
	}
	return req.Text, req.SourceName, true
}
