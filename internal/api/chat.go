package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/api/middleware"
	"github.com/themobileprof/momvitals-be/internal/assistant"
	"github.com/themobileprof/momvitals-be/internal/audit"
)

// ChatHandler serves the request/response chat endpoint
type ChatHandler struct {
	engine   *assistant.Engine
	assessor *Assessor
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler. assessor is used only to audit
// assessments made from chat and may be nil.
func NewChatHandler(engine *assistant.Engine, assessor *Assessor, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{engine: engine, assessor: assessor, logger: logger}
}

// ChatRequest is one posted chat message
type ChatRequest struct {
	Message  string `json:"message"`
	Document string `json:"document"`
}

// Greeting returns the channel's opening line
func (h *ChatHandler) Greeting(c *gin.Context) {
	ch, ok := assistant.ParseChannel(c.Param("channel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown channel"})
		return
	}
	c.JSON(http.StatusOK, assistant.Greeting(ch))
}

// Send answers one message on a channel
func (h *ChatHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)

	ch, ok := assistant.ParseChannel(c.Param("channel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown channel"})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.engine.ProcessMessage(c.Request.Context(), assistant.Request{
		UserID:   userID,
		Channel:  ch,
		Message:  req.Message,
		Document: req.Document,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("chat processing failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		return
	}

	if reply.Assessment != nil && h.assessor != nil {
		h.assessor.Record(c.Request.Context(), userID, audit.OriginChat, *reply.Assessment)
	}

	c.JSON(http.StatusOK, reply)
}

// History returns the caller's recent messages on a channel
func (h *ChatHandler) History(c *gin.Context) {
	ch, ok := assistant.ParseChannel(c.Param("channel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown channel"})
		return
	}

	messages := h.engine.History(middleware.GetUserID(c), ch)
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

// ClearHistory forgets the caller's conversation on a channel
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	ch, ok := assistant.ParseChannel(c.Param("channel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown channel"})
		return
	}

	h.engine.ClearHistory(middleware.GetUserID(c), ch)
	c.Status(http.StatusNoContent)
}
