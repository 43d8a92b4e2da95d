package server

import (
	"mime"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/observability"
)

// requestLogger logs each request at debug level, or at warn level for
// server errors, and reports it to the HTTP hooks.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, status, elapsed)

			keyvals := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
			}
			if id := middleware.GetReqID(ctx); id != "" {
				keyvals = append(keyvals, "request_id", id)
			}
			if status >= http.StatusInternalServerError {
				logger.Warn("request failed", keyvals...)
				return
			}
			logger.Debug("request", keyvals...)
		})
	}
}

// requireJSON refuses state-changing requests whose Content-Type is not
// application/json.
func (s *Server) requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			s.writeJSON(w, http.StatusUnsupportedMediaType, errorBody{
				Code:  errors.ErrCodeInvalidInput,
				Error: "requests that change the document must be sent as application/json",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
