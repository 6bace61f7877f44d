package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

const traceIDHeader = "X-Trace-ID"

type ctxKey int

const userKeyCtxKey ctxKey = iota

var (
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is empty")
	ErrInvalidAuthorizationHeader = errors.New("authorization header is invalid")
)

func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		l := h.log.GetChildLogger()
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("trace_id", traceID)
		})
		r = r.WithContext(l.WithContext(ctx))

		w.Header().Set(traceIDHeader, traceID)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()

		lw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(lw, r)

		log.Info().
			Str("uri", r.RequestURI).
			Str("method", r.Method).
			Int("status", lw.status).
			Dur("duration", time.Since(start)).
			Send()
	})
}

// auth accepts either a bearer access token or, when configured, the
// static API key in the configured header. The resolved user key is put
// into the request context.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		if h.apiKey != "" && r.Header.Get(h.apiKeyHeader) == h.apiKey {
			next.ServeHTTP(w, r.WithContext(withUserKey(r.Context(), "api-key-user")))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			log.Err(ErrInvalidAuthorizationHeader).Send()
			http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		userKey, err := h.tokens.ValidateAccess(tokenString)
		if err != nil {
			log.Err(err).Msg("access token rejected")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserKey(r.Context(), userKey)))
	})
}

func withUserKey(ctx context.Context, userKey string) context.Context {
	return context.WithValue(ctx, userKeyCtxKey, userKey)
}

func userKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(userKeyCtxKey).(string)
	return key
}

// responseWriter captures the status code for the logging middleware.
type responseWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
