package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/etnz/btcfolio/presenter"
	"github.com/etnz/btcfolio/renderer"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sortOf reads the sort and order query parameters.
func (s *Server) sortOf(w http.ResponseWriter, r *http.Request) (presenter.Sort, bool) {
	sort, err := presenter.ParseSort(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return sort, false
	}
	return sort, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sort, ok := s.sortOf(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := renderer.Dashboard(&buf, s.viewer.View(r.Context()), sort); err != nil {
		s.log.Error().Err(err).Msg("cannot render dashboard")
		http.Error(w, "cannot render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sort, ok := s.sortOf(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := renderer.ReportPage(&buf, s.viewer.View(r.Context()), sort); err != nil {
		s.log.Error().Err(err).Msg("cannot render report")
		http.Error(w, "cannot render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.viewer.View(r.Context()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.viewer.Refresh()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot encode response")
		http.Error(w, "cannot encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
