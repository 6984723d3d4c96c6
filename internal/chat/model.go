// File: internal/chat/model.go
package chat

import (
	"time"
)

// CollectionName is the document collection holding chat sessions.
const CollectionName = "chatSessions"

// MaxMessages caps the messages kept on one session document.
const MaxMessages = 500

// DefaultTitle names sessions created without a title.
const DefaultTitle = "New conversation"

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// Message is one entry in a chat session.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// Session is a conversation between a user and the travel assistant.
type Session struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	ItineraryID   string     `json:"itinerary_id"`
	Messages      []Message  `json:"messages"`
	MessageCount  int        `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (m Message) toValue() map[string]interface{} {
	return map[string]interface{}{
		"id":         m.ID,
		"role":       string(m.Role),
		"content":    m.Content,
		"created_at": m.CreatedAt,
	}
}

func messagesToValue(msgs []Message) []interface{} {
	out := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.toValue())
	}
	return out
}

func (s *Session) toFields() map[string]interface{} {
	fields := map[string]interface{}{
		"user_id":       s.UserID,
		"title":         s.Title,
		"itinerary_id":  s.ItineraryID,
		"messages":      messagesToValue(s.Messages),
		"message_count": int64(len(s.Messages)),
		"created_at":    s.CreatedAt,
		"updated_at":    s.UpdatedAt,
	}
	if s.LastMessageAt != nil {
		fields["last_message_at"] = *s.LastMessageAt
	}
	return fields
}

// --- DTOs ---

// CreateSessionRequest is the body of POST /chat/sessions.
type CreateSessionRequest struct {
	Title       string `json:"title" binding:"omitempty,max=200"`
	ItineraryID string `json:"itinerary_id" binding:"omitempty,max=64"`
	// Message optionally opens the session with a first user message.
	Message string `json:"message" binding:"omitempty,max=8000"`
}

// AddMessageRequest is the body of POST /chat/sessions/:id/messages.
type AddMessageRequest struct {
	Role    MessageRole `json:"role" binding:"omitempty,oneof=user assistant system"`
	Content string      `json:"content" binding:"required,min=1,max=8000"`
}

// ListQuery filters session listings.
type ListQuery struct {
	ItineraryID string `form:"itinerary_id"`
	// UserID lists another user's sessions; requires chat:read:any.
	UserID string `form:"user_id"`
	All    bool   `form:"all"`
}

// SessionResponse is the API representation of a session.
type SessionResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	ItineraryID   string     `json:"itinerary_id,omitempty"`
	Messages      []Message  `json:"messages,omitempty"`
	MessageCount  int        `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToSessionResponse converts a Session. Listings leave out the messages.
func ToSessionResponse(s *Session, withMessages bool) SessionResponse {
	resp := SessionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Title:         s.Title,
		ItineraryID:   s.ItineraryID,
		MessageCount:  s.MessageCount,
		LastMessageAt: s.LastMessageAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if withMessages {
		resp.Messages = s.Messages
		if resp.Messages == nil {
			resp.Messages = []Message{}
		}
	}
	return resp
}

// ToSessionResponses converts a listing.
func ToSessionResponses(sessions []*Session) []SessionResponse {
	out := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = ToSessionResponse(s, false)
	}
	return out
}
