package models

import "time"

// Message roles. Only user and assistant messages are stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation's append-only log.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an append-only message log keyed by (user id,
// conversation id). Messages are never edited or reordered.
type Conversation struct {
	UserID         string    `json:"userId"`
	ConversationID string    `json:"conversationId"`
	Title          string    `json:"title"`
	AgentType      string    `json:"agentType"`
	Messages       []Message `json:"messages"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ConversationSummary is the list view of a conversation: metadata and
// message count without message bodies.
type ConversationSummary struct {
	ConversationID string    `json:"conversationId"`
	Title          string    `json:"title"`
	AgentType      string    `json:"agentType"`
	MessageCount   int       `json:"messageCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Summary returns the list view of the conversation.
func (c *Conversation) Summary() ConversationSummary {
	return ConversationSummary{
		ConversationID: c.ConversationID,
		Title:          c.Title,
		AgentType:      c.AgentType,
		MessageCount:   len(c.Messages),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
