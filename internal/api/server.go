package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"mlengine/internal/intelligence/schema"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const defaultMatrixSample = 150

// Intelligence is the read surface the HTTP layer serves.
type Intelligence interface {
	GlobalStats() schema.GlobalStats
	SectorAnalysis() []schema.SectorAnalysis
	MarketMatrix(n int) []schema.MarketMatrixPoint
	TickerDetails(ticker string) (*schema.ResearchResult, bool)
	Anomalies(sector string, limit int) schema.AnomalySummary
	SearchTickers(ctx context.Context, req schema.SearchRequest) *schema.SearchResponse
	Health() schema.Health
}

type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	MatrixSample int
}

type Server struct {
	httpServer   *http.Server
	svc          Intelligence
	logger       *zap.Logger
	matrixSample int
}

func NewServer(opts Options, svc Intelligence, logger *zap.Logger) *Server {
	s := &Server{
		svc:          svc,
		logger:       logger,
		matrixSample: opts.MatrixSample,
	}
	if s.matrixSample <= 0 {
		s.matrixSample = defaultMatrixSample
	}

	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 5 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readTimeout,
	}
	return s
}

// Handler returns the routed /ml handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ml/health", s.handleHealth)
	mux.HandleFunc("GET /ml/stats", s.handleStats)
	mux.HandleFunc("GET /ml/overview/sectors", s.handleSectors)
	mux.HandleFunc("GET /ml/overview/matrix", s.handleMatrix)
	mux.HandleFunc("GET /ml/research/{ticker}", s.handleResearch)
	mux.HandleFunc("GET /ml/anomalies", s.handleAnomalies)
	mux.HandleFunc("POST /ml/search", s.handleSearch)
	return s.logRequests(mux)
}

// Start begins serving on the configured address and returns once the
// listener is bound.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("api server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server stopped", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorBody{Detail: detail})
}
