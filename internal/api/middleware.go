package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID    = "X-Request-ID"
	headerConfigSource = "X-Config-Source"
	allowedMethods     = "GET, HEAD, OPTIONS"
)

// readOnlyMiddleware answers CORS preflights and refuses every write verb
// before routing. Responses name the file the settings were loaded from.
func readOnlyMiddleware(source string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Expose-Headers", headerRequestID+", "+headerConfigSource)
		h.Set(headerConfigSource, source)

		switch r.Method {
		case http.MethodGet, http.MethodHead:
			next.ServeHTTP(w, r)
		case http.MethodOptions:
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+headerRequestID)
			h.Set("Access-Control-Max-Age", "86400")
			h.Set("Allow", allowedMethods)
			w.WriteHeader(http.StatusNoContent)
		default:
			h.Set("Allow", allowedMethods)
			writeError(w, http.StatusMethodNotAllowed, "Read-only API",
				r.Method+" is not supported; settings change only by editing "+source)
		}
	})
}

// accessLogMiddleware logs one line per request. Lookups of a single setting
// also record whether the value came from the config file.
func accessLogMiddleware(logger *zap.Logger, settings Settings, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Int("bytes", sw.written),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestIDFromContext(r.Context())),
		}
		if key := r.PathValue("key"); key != "" && settings.Known(key) {
			fields = append(fields,
				zap.String("key", key),
				zap.Bool("overridden", settings.Overridden(key)),
			)
		}
		logger.Info("settings request", fields...)
	})
}

func recoveryMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				id := requestIDFromContext(r.Context())
				logger.Error("panic serving settings",
					zap.Any("error", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", id),
				)
				writeError(w, http.StatusInternalServerError, "Internal error",
					"unexpected server error (request "+id+")")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(contextWithRequestID(r.Context(), id)))
	})
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// statusWriter records the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (s *statusWriter) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusWriter) Write(p []byte) (int, error) {
	n, err := s.ResponseWriter.Write(p)
	s.written += n
	return n, err
}
