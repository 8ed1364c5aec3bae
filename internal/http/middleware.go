package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/storefront-cart/internal/obs"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
)

// RequestIDFromContext returns the id assigned by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

type statusRecorder struct {
	w      http.ResponseWriter
	status int
	n      int
}

func (r *statusRecorder) Header() http.Header { return r.w.Header() }
func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.w.WriteHeader(code)
}
func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.w.Write(b)
	r.n += n
	return n, err
}
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.w }

// WithRequestID propagates X-Request-Id, minting a uuid when the client sent none.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

// WithLogging emits one http_request line per request.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{w: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		lat := time.Since(start)
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.status,
			"bytes", sr.n,
			"latency_ms", float64(lat.Microseconds()) / 1000.0,
			"request_id", RequestIDFromContext(r.Context()),
		}
		// the checkout redirect carries the order text; only log where local redirects go
		if loc := sr.Header().Get("Location"); loc != "" && loc[0] == '/' {
			attrs = append(attrs, "location", loc)
		}
		obs.Logger.Info("http_request", attrs...)
	})
}
