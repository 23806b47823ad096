package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"daytrack/internal/core"
	"daytrack/internal/log"
	"daytrack/internal/middleware/ratelimit"
)

// RecordService is the part of services.RecordService the handlers use
type RecordService interface {
	List(ctx context.Context, month string) ([]core.DailyRecord, error)
	Get(ctx context.Context, id string) (core.DailyRecord, error)
	Create(ctx context.Context, r core.DailyRecord) (core.DailyRecord, error)
	Update(ctx context.Context, id string, r core.DailyRecord) (core.DailyRecord, error)
	Delete(ctx context.Context, id string) error
	MonthSummary(ctx context.Context, month string) (core.MonthlySummary, error)
}

// Pinger is implemented by backends that can report readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	records RecordService
	ready   Pinger
	limiter *ratelimit.Limiter
	logger  *log.Logger
}

// NewServer configures routes, returning a ready-to-run http.Server.
// ready may be nil.
func NewServer(addr string, records RecordService, ready Pinger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		records: records,
		ready:   ready,
		logger:  logger.WithComponent(log.ComponentHTTP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/daily", s.withLogging(s.handleListRecords))
	mux.HandleFunc("POST /api/daily", s.withLogging(s.limited(s.handleCreateRecord)))
	mux.HandleFunc("GET /api/daily/{id}", s.withLogging(s.handleGetRecord))
	mux.HandleFunc("PUT /api/daily/{id}", s.withLogging(s.limited(s.handleUpdateRecord)))
	mux.HandleFunc("DELETE /api/daily/{id}", s.withLogging(s.limited(s.handleDeleteRecord)))
	mux.HandleFunc("GET /api/summary", s.withLogging(s.handleMonthSummary))

	return s
}

// LimitWrites throttles record mutations per client. nil removes the limit.
func (s *Server) LimitWrites(l *ratelimit.Limiter) {
	s.limiter = l
}

func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next(w, r)
			return
		}
		s.limiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Write rate limit exceeded", log.FieldClientIP, clientIP(r))
			writeError(w, r, http.StatusTooManyRequests, "Too many changes. Please try again in a minute.")
		})(next)(w, r)
	}
}

// clientIP prefers proxy headers over the socket address
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		first, _, _ := strings.Cut(ip, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// withLogging tags the request with an id, sets JSON security headers and
// logs the outcome
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		r = r.WithContext(log.IntoContext(r.Context(), reqLogger))

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}
		fields := log.NewFields().
			WithHTTP(r.Method, r.URL.Path, rw.statusCode, time.Since(start).Milliseconds())
		fields[log.FieldClientIP] = clientIP(r)
		reqLogger.LogContext(r.Context(), level, "Request completed", fields.ToSlice()...)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
