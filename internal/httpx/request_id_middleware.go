package httpx

import (
	"net/http"

	"bookreview/internal/platform/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware assigns a request ID and stores a logger tagged with it
// in the request context.
func RequestIDMiddleware(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set(requestIDHeader, requestID)
			ctx := ContextWithRequestID(r.Context(), requestID)
			ctx = logger.WithContext(ctx, base.With(zap.String("request_id", requestID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
