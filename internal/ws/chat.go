package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/api/middleware"
	"github.com/themobileprof/momvitals-be/internal/assistant"
	"github.com/themobileprof/momvitals-be/internal/audit"
	"github.com/themobileprof/momvitals-be/internal/risk"
)

// Frame types
const (
	TypeMessage    = "message"
	TypeAssessment = "assessment"
	TypeAlert      = "alert"
	TypeReminder   = "reminder"
	TypeError      = "error"
	TypeDone       = "done"
)

const defaultMessagesPerMinute = 30

// Recorder writes chat assessments to the audit trail
type Recorder interface {
	Record(ctx context.Context, userID, origin string, assessment risk.Assessment)
}

// ChatHandler handles WebSocket chat connections
type ChatHandler struct {
	engine            *assistant.Engine
	recorder          Recorder
	jwtSecret         string
	upgrader          websocket.Upgrader
	messagesPerMinute int
	logger            *zap.Logger
}

// NewChatHandler creates a new chat handler. An empty allowedOrigins list
// accepts any origin. recorder may be nil.
func NewChatHandler(engine *assistant.Engine, recorder Recorder, jwtSecret string, allowedOrigins []string, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		engine:            engine,
		recorder:          recorder,
		jwtSecret:         jwtSecret,
		upgrader:          websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		messagesPerMinute: defaultMessagesPerMinute,
		logger:            logger,
	}
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Content  string `json:"content"`
	Document string `json:"document,omitempty"`
}

// OutgoingMessage represents a message to the client
type OutgoingMessage struct {
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HandleChat handles WebSocket chat connections
func (h *ChatHandler) HandleChat(c *gin.Context) {
	// Validate JWT from query parameter or header
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	claims, err := middleware.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	channel, ok := assistant.ParseChannel(c.DefaultQuery("channel", string(assistant.ChannelDoctor)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown channel"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	userID := claims.UserID
	log := h.logger.With(zap.String("user_id", userID), zap.String("channel", string(channel)))
	log.Info("websocket connected")

	greeting := assistant.Greeting(channel)
	if err := h.send(conn, OutgoingMessage{Type: TypeMessage, Content: greeting.Content, Data: greeting}); err != nil {
		return
	}

	limiter := middleware.NewWebSocketLimiter(h.messagesPerMinute)
	ctx := c.Request.Context()

	for {
		var msg IncomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			break
		}

		if !limiter.Allow() {
			if err := h.sendError(conn, "Too many messages, please slow down"); err != nil {
				break
			}
			continue
		}

		if err := h.processMessage(ctx, conn, userID, channel, msg); err != nil {
			log.Warn("websocket write failed", zap.Error(err))
			break
		}
	}

	log.Info("websocket disconnected")
}

// processMessage answers one message. Only write errors are returned; a
// message the engine rejects is reported to the client as an error frame.
func (h *ChatHandler) processMessage(ctx context.Context, conn *websocket.Conn, userID string, channel assistant.Channel, msg IncomingMessage) error {
	reply, err := h.engine.ProcessMessage(ctx, assistant.Request{
		UserID:   userID,
		Channel:  channel,
		Message:  msg.Content,
		Document: msg.Document,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			return h.sendError(conn, err.Error())
		}
		h.logger.Error("chat processing failed", zap.String("user_id", userID), zap.Error(err))
		return h.sendError(conn, "Failed to process message")
	}

	if err := h.send(conn, OutgoingMessage{Type: TypeMessage, Content: reply.Content, Data: reply}); err != nil {
		return err
	}

	if reply.Assessment != nil {
		if h.recorder != nil {
			h.recorder.Record(ctx, userID, audit.OriginChat, *reply.Assessment)
		}
		if err := h.send(conn, OutgoingMessage{Type: TypeAssessment, Data: reply.Assessment}); err != nil {
			return err
		}
	}

	if reply.Action != "" {
		if err := h.send(conn, OutgoingMessage{Type: TypeAlert, Content: reply.Action, Data: reply.Signs}); err != nil {
			return err
		}
	}

	if reply.Reminder != nil {
		if err := h.send(conn, OutgoingMessage{Type: TypeReminder, Content: reply.Reminder.Name, Data: reply.Reminder}); err != nil {
			return err
		}
	}

	return h.send(conn, OutgoingMessage{Type: TypeDone})
}

func (h *ChatHandler) send(conn *websocket.Conn, msg OutgoingMessage) error {
	return conn.WriteJSON(msg)
}

// sendError sends an error message to the client
func (h *ChatHandler) sendError(conn *websocket.Conn, message string) error {
	return h.send(conn, OutgoingMessage{Type: TypeError, Content: message})
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(set) == 0 || origin == "" {
			return true
		}
		return set[origin]
	}
}
