package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/wgomg/precis/internal/utils"
	"github.com/wgomg/precis/internal/utils/httputils"
)

const (
	requestIDHeader      = "X-Request-ID"
	slowRequestThreshold = 5 * time.Second
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestID tags each request with the caller's X-Request-ID or a fresh uuid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), reqID)))
	})
}

// Logging logs every request with its status and duration. Slow requests are
// logged at warn level.
func Logging(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			reqID := utils.RequestID(r.Context())
			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.Error(reqID, "%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, duration)
			case duration > slowRequestThreshold:
				logger.Warn(reqID, "Slow request %s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, duration)
			default:
				logger.Info(reqID, "%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, duration)
			}
		})
	}
}

// RateLimit rejects requests beyond a shared token bucket with 429.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	limiter := rate.NewLimiter(limit, max(burst, 1))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				httputils.JSONError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
