// Package middleware contains HTTP middleware shared by the protected
// routes — today that is bearer-token authentication.
//
// The middleware resolves the token to a full account ONCE per request
// and passes it down through the request context. Handlers pull the
// caller back out with Caller(ctx); there is no ambient "current user"
// global anywhere in the process.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vvvvvivekkk/health/internal/storage"
	"github.com/vvvvvivekkk/health/internal/types"
	"github.com/vvvvvivekkk/health/internal/utils/response"
)

// ctxKey is unexported so no other package can collide with (or forge)
// the caller value in a context.
type ctxKey int

const callerKey ctxKey = 0

// Auth wraps a handler with bearer-token authentication.
//
// Expected header:
//
//	Authorization: Bearer <token>
//
// A missing, malformed, unknown or expired token short-circuits with
// 401 before the wrapped handler runs. On success the resolved account
// is stored in the request context.
func Auth(store storage.Storage, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized, no token"))
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Error("not authorized, invalid token"))
			return
		}

		caller, err := store.GetUserByToken(token, time.Now())
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Unknown and expired tokens are indistinguishable to
				// the client on purpose.
				response.WriteJSON(w, http.StatusUnauthorized,
					response.Error("not authorized, invalid token"))
				return
			}
			slog.Error("token lookup failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.Internal())
			return
		}

		next(w, r.WithContext(WithCaller(r.Context(), caller)))
	}
}

// WithCaller returns a copy of ctx carrying the authenticated account.
// Exported so handler tests can build an authenticated request without
// running the middleware.
func WithCaller(ctx context.Context, caller types.User) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// Caller extracts the authenticated account placed in the context by
// Auth. The second return is false when the handler was reached
// without authentication — a wiring bug, not a client error.
func Caller(ctx context.Context) (types.User, bool) {
	caller, ok := ctx.Value(callerKey).(types.User)
	return caller, ok
}
