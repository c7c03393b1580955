package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// HTTPMetrics returns middleware that records request duration, count,
// and response size for every request passing through it.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Probe endpoints are scraped constantly and would drown the
			// signal from ranking traffic.
			if isProbePath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			mw := &metricsResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(mw, r)

			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path)
			status := strconv.Itoa(mw.statusCode)

			metrics.ObserveHTTPRequest(r.Method, path, status, duration, mw.size)
		})
	}
}

// isProbePath reports whether the path is a health or scrape endpoint
// that should be excluded from request metrics.
func isProbePath(path string) bool {
	return path == "/health" || path == "/ready" || path == "/metrics"
}

// normalizePath collapses unknown paths to a single label so that
// path scanning cannot inflate metric cardinality.
func normalizePath(path string) string {
	switch path {
	case "/v1/feed", "/v1/suggestions", "/v1/trending", "/health", "/ready", "/metrics":
		return path
	}
	return "other"
}

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (mw *metricsResponseWriter) WriteHeader(statusCode int) {
	if mw.wroteHeader {
		return
	}
	mw.statusCode = statusCode
	mw.wroteHeader = true
	mw.ResponseWriter.WriteHeader(statusCode)
}

func (mw *metricsResponseWriter) Write(b []byte) (int, error) {
	if !mw.wroteHeader {
		mw.WriteHeader(http.StatusOK)
	}
	n, err := mw.ResponseWriter.Write(b)
	mw.size += int64(n)
	return n, err
}

// Unwrap exposes the wrapped writer so context updates can reach the
// logging layer beneath this one.
func (mw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return mw.ResponseWriter
}
