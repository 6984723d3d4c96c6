// File: internal/chat/service.go
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/itinerary"
	"travel_agent_backend/internal/rbac"
)

const titleFromMessageLen = 60

// ItineraryLookup resolves an itinerary on behalf of an actor, enforcing its access rules.
type ItineraryLookup interface {
	GetItinerary(ctx context.Context, actor rbac.Actor, id string) (*itinerary.Itinerary, error)
}

// Service defines the interface for chat session business logic.
type Service interface {
	CreateSession(ctx context.Context, actor rbac.Actor, req CreateSessionRequest) (*Session, error)
	GetSession(ctx context.Context, actor rbac.Actor, id string) (*Session, error)
	ListSessions(ctx context.Context, actor rbac.Actor, q ListQuery, page common.PaginationQuery) ([]*Session, int64, error)
	DeleteSession(ctx context.Context, actor rbac.Actor, id string) error
	AddMessage(ctx context.Context, actor rbac.Actor, id string, req AddMessageRequest) (*Session, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo        Repository
	itineraries ItineraryLookup
	logger      *zap.Logger
	now         func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new chat service.
func NewService(repo Repository, itineraries ItineraryLookup, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:        repo,
		itineraries: itineraries,
		logger:      logger.Named("ChatService"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// titleFrom derives a session title from its opening message.
func titleFrom(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= titleFromMessageLen {
		return content
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:titleFromMessageLen])) + "..."
}

func (s *ServiceImplementation) CreateSession(ctx context.Context, actor rbac.Actor, req CreateSessionRequest) (*Session, error) {
	if !actor.Can(rbac.ChatCreate) {
		return nil, common.ErrForbidden.WithDetails("You cannot start chat sessions.")
	}
	if req.ItineraryID != "" && s.itineraries != nil {
		if _, err := s.itineraries.GetItinerary(ctx, actor, req.ItineraryID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	session := &Session{
		ID:          uuid.NewString(),
		UserID:      actor.ID,
		Title:       strings.TrimSpace(req.Title),
		ItineraryID: req.ItineraryID,
		Messages:    []Message{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if content := strings.TrimSpace(req.Message); content != "" {
		session.Messages = append(session.Messages, Message{
			ID:        uuid.NewString(),
			Role:      MessageRoleUser,
			Content:   content,
			CreatedAt: now,
		})
		session.LastMessageAt = &now
		if session.Title == "" {
			session.Title = titleFrom(content)
		}
	}
	if session.Title == "" {
		session.Title = DefaultTitle
	}
	session.MessageCount = len(session.Messages)

	if err := s.repo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create chat session", zap.String("userID", actor.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Chat session created", zap.String("sessionID", session.ID), zap.String("userID", actor.ID))
	return session, nil
}

func (s *ServiceImplementation) GetSession(ctx context.Context, actor rbac.Actor, id string) (*Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(session.UserID, rbac.ChatReadOwn, rbac.ChatReadAny) {
		return nil, common.ErrForbidden.WithDetails("You do not have access to this chat session.")
	}
	return session, nil
}

func (s *ServiceImplementation) ListSessions(ctx context.Context, actor rbac.Actor, q ListQuery, page common.PaginationQuery) ([]*Session, int64, error) {
	filter := Filter{UserID: actor.ID, ItineraryID: q.ItineraryID}
	if q.All || (q.UserID != "" && q.UserID != actor.ID) {
		if !actor.Can(rbac.ChatReadAny) {
			return nil, 0, common.ErrForbidden.WithDetails("You can only list your own chat sessions.")
		}
		filter.UserID = q.UserID
	}
	if filter.UserID == actor.ID && !actor.Can(rbac.ChatReadOwn) {
		return nil, 0, common.ErrForbidden.WithDetails("You cannot list chat sessions.")
	}
	return s.repo.List(ctx, filter, page)
}

// DeleteSession removes a session. Only its owner may delete it.
func (s *ServiceImplementation) DeleteSession(ctx context.Context, actor rbac.Actor, id string) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if session.UserID != actor.ID || !actor.Can(rbac.ChatDeleteOwn) {
		return common.ErrForbidden.WithDetails("You cannot delete this chat session.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting chat session %s: %w", id, err)
	}
	s.logger.Info("Chat session deleted", zap.String("sessionID", id), zap.String("userID", actor.ID))
	return nil
}

// AddMessage appends a message to a session owned by the caller.
// The append runs as one read-modify-write transaction so concurrent posts are all kept.
func (s *ServiceImplementation) AddMessage(ctx context.Context, actor rbac.Actor, id string, req AddMessageRequest) (*Session, error) {
	role := req.Role
	if role == "" {
		role = MessageRoleUser
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, common.ErrBadRequest.WithDetails("Message content is empty.")
	}
	msgID := uuid.NewString()

	err := s.repo.Mutate(ctx, id, func(session *Session) (map[string]interface{}, error) {
		if session.UserID != actor.ID || !actor.Can(rbac.ChatCreate) {
			return nil, common.ErrForbidden.WithDetails("You cannot post to this chat session.")
		}
		if len(session.Messages) >= MaxMessages {
			return nil, common.ErrUnprocessableEntity.WithDetails(fmt.Sprintf("A chat session holds at most %d messages.", MaxMessages))
		}

		now := s.now()
		msg := Message{ID: msgID, Role: role, Content: content, CreatedAt: now}
		messages := append(session.Messages, msg)

		fields := map[string]interface{}{
			"messages":        messagesToValue(messages),
			"message_count":   int64(len(messages)),
			"last_message_at": now,
			"updated_at":      now,
		}
		if session.Title == DefaultTitle && role == MessageRoleUser {
			fields["title"] = titleFrom(content)
		}
		return fields, nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}
