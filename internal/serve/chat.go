package serve

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/denysvitali/nbalance/internal/host"
	"github.com/denysvitali/nbalance/internal/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatMessage is the JSON frame exchanged on the chat socket.
// Clients send type "message"; the server answers with "reply" or "error".
type chatMessage struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Sender string `json:"sender,omitempty"`
}

// handleChat bridges a websocket connection to the plugin command router.
// Every incoming message is dispatched like a chat line and plugin replies
// are written back on the same connection.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	l := logger.FromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxBodyBytes)

	for {
		var msg chatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Warn("Chat connection closed", zap.Error(err))
			}
			return
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			if err := conn.WriteJSON(chatMessage{Type: "error", Text: "expected a non-empty message"}); err != nil {
				return
			}
			continue
		}

		sender := msg.Sender
		if sender == "" {
			sender = r.RemoteAddr
		}
		ev := &host.TextEvent{
			Text: msg.Text,
			From: sender,
			ReplyFn: func(text string) error {
				return conn.WriteJSON(chatMessage{Type: "reply", Text: text})
			},
		}
		if !s.engine.Dispatch(r.Context(), ev) {
			l.Debug("No command matched", zap.String("text", msg.Text))
		}
	}
}
