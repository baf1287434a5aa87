// middleware/socket_auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"tictactoe-arena/services"
)

type contextKey string

const socketUserContextKey contextKey = "socketUser"

// TokenValidator checks a player session token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, accessToken, deviceID string) (*services.ValidateResponse, error)
}

// SocketAuth validates `token` and `device_id` from the query string before the
// websocket upgrade. Browsers cannot set headers on the handshake.
func SocketAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			accessToken := strings.TrimSpace(q.Get("token"))
			deviceID := strings.TrimSpace(q.Get("device_id"))

			if accessToken == "" || deviceID == "" {
				log.Printf("[SOCKET] ❌ Missing token or device_id from %s", r.RemoteAddr)
				http.Error(w, "missing token or device_id in query", http.StatusBadRequest)
				return
			}

			resp, err := validator.ValidateToken(r.Context(), accessToken, deviceID)
			if err != nil {
				log.Printf("[SOCKET] ❌ Validation failed for token (prefix: %s...), device %s: %v",
					accessToken[:min(10, len(accessToken))], deviceID, err)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), socketUserContextKey, resp)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SocketUser returns the identity attached by SocketAuth.
func SocketUser(ctx context.Context) (*services.ValidateResponse, bool) {
	u, ok := ctx.Value(socketUserContextKey).(*services.ValidateResponse)
	return u, ok && u != nil
}

// WithSocketUser attaches an already validated identity to ctx.
func WithSocketUser(ctx context.Context, u *services.ValidateResponse) context.Context {
	return context.WithValue(ctx, socketUserContextKey, u)
}
