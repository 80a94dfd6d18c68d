package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is one chat turn kept in short-term memory
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or the replying channel
	Content   string    `json:"content"`
	Kind      string    `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// History keeps the last N messages of every user's conversation on each
// channel. It is safe for concurrent use.
type History struct {
	size          int
	conversations map[string]*conversation
	mu            sync.RWMutex
}

// NewHistory creates a history keeping size messages per conversation
func NewHistory(size int) *History {
	if size <= 0 {
		size = 20
	}
	return &History{
		size:          size,
		conversations: make(map[string]*conversation),
	}
}

func key(userID, channel string) string {
	return userID + "\x00" + channel
}

// Add appends a message, dropping the oldest beyond the size limit.
// Messages without an ID get a fresh one.
func (h *History) Add(userID, channel string, msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	h.mu.Lock()
	conv, exists := h.conversations[key(userID, channel)]
	if !exists {
		conv = &conversation{messages: make([]Message, 0, h.size)}
		h.conversations[key(userID, channel)] = conv
	}
	h.mu.Unlock()

	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.messages = append(conv.messages, msg)
	if len(conv.messages) > h.size {
		conv.messages = conv.messages[len(conv.messages)-h.size:]
	}
}

// Recent returns a copy of the conversation, oldest first
func (h *History) Recent(userID, channel string) []Message {
	h.mu.RLock()
	conv, exists := h.conversations[key(userID, channel)]
	h.mu.RUnlock()
	if !exists {
		return []Message{}
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()

	out := make([]Message, len(conv.messages))
	copy(out, conv.messages)
	return out
}

// Clear forgets one conversation
func (h *History) Clear(userID, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conversations, key(userID, channel))
}
