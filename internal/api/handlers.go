package api

import (
	"fmt"
	"net/http"
	"strconv"

	"mlengine/internal/intelligence/schema"

	"github.com/goccy/go-json"
)

const maxSearchBody = 1 << 20

// GET /ml/health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Health())
}

// GET /ml/stats
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.GlobalStats())
}

// GET /ml/overview/sectors
func (s *Server) handleSectors(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.SectorAnalysis())
}

// GET /ml/overview/matrix?size=N
func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", s.matrixSample)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.MarketMatrix(size))
}

// GET /ml/research/{ticker}
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")

	result, ok := s.svc.TickerDetails(ticker)
	if !ok {
		s.writeError(w, http.StatusNotFound,
			fmt.Sprintf("Ticker '%s' not found in the GreenScale institutional universe.", ticker))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// GET /ml/anomalies?sector=S&limit=N
func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.Anomalies(r.URL.Query().Get("sector"), limit))
}

// POST /ml/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := schema.SearchRequest{Page: 1, Limit: 10}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid search request: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, s.svc.SearchTickers(r.Context(), req))
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer", name)
	}
	return v, nil
}
