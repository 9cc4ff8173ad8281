// Package gateway exposes the agent over a WebSocket chat endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// TurnHandler is the agent surface the gateway drives.
type TurnHandler interface {
	HandleTurn(ctx context.Context, userID, message string) (string, error)
	ClearConversation(userID string) error
}

// ClientMessage is one inbound frame.
type ClientMessage struct {
	// Type is "message" or "clear".
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Text   string `json:"text,omitempty"`
}

// ServerMessage is one outbound frame.
type ServerMessage struct {
	// Type is "reply", "cleared", or "error".
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Gateway serves the chat WebSocket.
type Gateway struct {
	handler  TurnHandler
	upgrader websocket.Upgrader
}

// New creates a Gateway over the agent.
func New(handler TurnHandler) *Gateway {
	return &Gateway{
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the HTTP handler for the /chat endpoint.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", g.serveChat)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// serveChat upgrades the connection and loops over frames. Frames on one
// connection are handled sequentially; per-user ordering is enforced again
// by the session actor, so multiple connections for a user stay safe.
func (g *Gateway) serveChat(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[GATEWAY] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[GATEWAY] Read failed: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			g.send(conn, ServerMessage{Type: "error", Text: "malformed frame"})
			continue
		}
		g.send(conn, g.handle(r.Context(), msg))
	}
}

func (g *Gateway) handle(ctx context.Context, msg ClientMessage) ServerMessage {
	switch msg.Type {
	case "message":
		reply, err := g.handler.HandleTurn(ctx, msg.UserID, msg.Text)
		if err != nil {
			log.Printf("[GATEWAY] Turn failed for user=%s: %v", msg.UserID, err)
			return ServerMessage{Type: "error", Text: err.Error()}
		}
		return ServerMessage{Type: "reply", Text: reply}
	case "clear":
		if err := g.handler.ClearConversation(msg.UserID); err != nil {
			return ServerMessage{Type: "error", Text: err.Error()}
		}
		return ServerMessage{Type: "cleared"}
	default:
		return ServerMessage{Type: "error", Text: "unknown frame type"}
	}
}

func (g *Gateway) send(conn *websocket.Conn, msg ServerMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[GATEWAY] Write failed: %v", err)
	}
}
