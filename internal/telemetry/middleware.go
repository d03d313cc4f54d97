package telemetry

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Middleware constructor.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one listed runs outermost.
func Chain(next http.Handler, middlewares ...Middleware) http.Handler {
	for idx := len(middlewares) - 1; idx >= 0; idx-- {
		next = middlewares[idx](next)
	}
	return next
}

func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			statusW := newStatusResponseWriter(w)

			defer func(start time.Time) {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", statusW.Code()),
					zap.Int("bytes", statusW.bytes),
					zap.Duration("elapsed", time.Since(start)),
				}
				if statusW.Code() >= http.StatusInternalServerError {
					logger.Warn("request failed", fields...)
					return
				}
				logger.Debug("request served", fields...)
			}(time.Now())

			next.ServeHTTP(statusW, r)
		}
		return http.HandlerFunc(fn)
	}
}

func Instrument(metrics *Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}

		fn := func(w http.ResponseWriter, r *http.Request) {
			statusW := newStatusResponseWriter(w)

			defer func(start time.Time) {
				route := RouteLabel(r.URL.Path)
				code := strconv.Itoa(statusW.Code())
				metrics.requests.WithLabelValues(r.Method, route, code).Inc()
				metrics.durations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			}(time.Now())

			next.ServeHTTP(statusW, r)
		}
		return http.HandlerFunc(fn)
	}
}

// RouteLabel collapses tenant and token paths so label cardinality stays bounded.
func RouteLabel(path string) string {
	switch {
	case path == "/" || path == "":
		return "/"
	case strings.HasPrefix(path, "/api/"), path == "/healthz", path == "/metrics":
		return path
	case strings.HasPrefix(path, "/static/"):
		return "/static"
	case strings.HasPrefix(path, "/metadata/"):
		return "/metadata/[contract]/[tokenId]"
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segments) == 1:
		return "/[situs]"
	case len(segments) == 2 && segments[1] == "assets":
		return "/[situs]/assets"
	case len(segments) == 3 && segments[1] == "certificates" && segments[2] == "mine":
		return "/[situs]/certificates/mine"
	default:
		return "unmatched"
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{ResponseWriter: w}
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if w.statusCode == 0 {
		w.statusCode = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusResponseWriter) Code() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *statusResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
