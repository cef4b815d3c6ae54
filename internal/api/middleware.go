package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/metrics"
	"go.uber.org/zap"
)

var knownPaths = map[string]bool{
	"/":            true,
	"/key":         true,
	"/feature":     true,
	"/submit":      true,
	"/clear":       true,
	"/export":      true,
	"/image":       true,
	"/api/history": true,
	"/healthz":     true,
	"/metrics":     true,
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument counts every request by route and status and logs it at debug
// level.
func Instrument(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if !knownPaths[path] {
			path = "other"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		logger.Debug("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
