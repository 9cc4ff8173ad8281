package gateway

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

type stubHandler struct {
	cleared []string
}

func (h *stubHandler) HandleTurn(_ context.Context, userID, message string) (string, error) {
	if userID == "" {
		return "", core.ValidationErrorf("user id is empty")
	}
	return "echo: " + message, nil
}

func (h *stubHandler) ClearConversation(userID string) error {
	h.cleared = append(h.cleared, userID)
	return nil
}

func dialGateway(t *testing.T, h TurnHandler) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(New(h).Handler())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg ClientMessage) ServerMessage {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var reply ServerMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return reply
}

func TestChatRoundTrip(t *testing.T) {
	conn := dialGateway(t, &stubHandler{})

	reply := roundTrip(t, conn, ClientMessage{Type: "message", UserID: "user-1", Text: "hello"})
	if reply.Type != "reply" || reply.Text != "echo: hello" {
		t.Errorf("unexpected reply: %+v", reply)
	}
}

func TestClearFrame(t *testing.T) {
	h := &stubHandler{}
	conn := dialGateway(t, h)

	reply := roundTrip(t, conn, ClientMessage{Type: "clear", UserID: "user-1"})
	if reply.Type != "cleared" {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if len(h.cleared) != 1 || h.cleared[0] != "user-1" {
		t.Errorf("expected clear forwarded, got %v", h.cleared)
	}
}

func TestTurnErrorSurfacesAsErrorFrame(t *testing.T) {
	conn := dialGateway(t, &stubHandler{})

	reply := roundTrip(t, conn, ClientMessage{Type: "message", UserID: "", Text: "hello"})
	if reply.Type != "error" {
		t.Errorf("expected error frame, got %+v", reply)
	}
}

func TestUnknownFrameType(t *testing.T) {
	conn := dialGateway(t, &stubHandler{})

	reply := roundTrip(t, conn, ClientMessage{Type: "dance", UserID: "user-1"})
	if reply.Type != "error" || reply.Text != "unknown frame type" {
		t.Errorf("unexpected reply: %+v", reply)
	}
}

func TestMalformedFrame(t *testing.T) {
	conn := dialGateway(t, &stubHandler{})

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var reply ServerMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if reply.Type != "error" {
		t.Errorf("expected error frame, got %+v", reply)
	}
}
