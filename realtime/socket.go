// realtime/socket.go
package realtime

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tictactoe-arena/middleware"
	"tictactoe-arena/models"
)

// AccountEnsurer resolves the display name a presence plays under.
type AccountEnsurer interface {
	EnsureAccount(ctx context.Context, userID, displayName string) (*models.Account, error)
}

// SocketServer upgrades authenticated requests and attaches them to a match.
type SocketServer struct {
	Registry *Registry
	Accounts AccountEnsurer
	upgrader websocket.Upgrader
}

func NewSocketServer(registry *Registry, accounts AccountEnsurer, allowedOrigins []string) *SocketServer {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSpace(o)] = true
	}
	return &SocketServer{
		Registry: registry,
		Accounts: accounts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Handler mounts the socket endpoint at /ws behind auth.
func (s *SocketServer) Handler(auth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", auth(s))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *SocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.SocketUser(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	matchID := strings.TrimSpace(r.URL.Query().Get("match_id"))
	if matchID == "" {
		http.Error(w, "missing match_id", http.StatusBadRequest)
		return
	}
	if _, err := s.Registry.State(matchID); err != nil {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	displayName := user.Username
	if s.Accounts != nil {
		acc, err := s.Accounts.EnsureAccount(r.Context(), user.UserID, user.Username)
		if err != nil {
			log.Printf("[SOCKET] ⚠️ Account lookup failed for %s: %v", user.UserID, err)
		} else {
			displayName = acc.DisplayName
		}
	}
	if displayName == "" {
		displayName = user.UserID
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SOCKET] ❌ Upgrade failed for %s: %v", user.UserID, err)
		return
	}

	client := newWSClient(conn, user.UserID)
	ctx := context.WithoutCancel(r.Context())
	presence := models.Presence{UserID: user.UserID, DisplayName: displayName}

	if err := s.Registry.Join(ctx, matchID, presence, client); err != nil {
		reason := "match unavailable"
		if errors.Is(err, ErrJoinRejected) {
			reason = "match is full"
		}
		log.Printf("[SOCKET] 🚫 %s could not join match %s: %v", user.UserID, matchID, err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	log.Printf("[SOCKET] 🔌 %s connected to match %s", user.UserID, matchID)

	go client.writePump()
	client.readPump(func(env models.Envelope) {
		if err := s.Registry.Send(matchID, user.UserID, env.OpCode, env.Data); err != nil {
			log.Printf("[SOCKET] ⚠️ Dropping message from %s: %v", user.UserID, err)
		}
	})

	client.Close()
	if err := s.Registry.Leave(ctx, matchID, user.UserID); err != nil && !errors.Is(err, ErrMatchNotFound) {
		log.Printf("[SOCKET] ⚠️ Leave failed for %s in match %s: %v", user.UserID, matchID, err)
	}
	log.Printf("[SOCKET] 👋 %s disconnected from match %s", user.UserID, matchID)
}
