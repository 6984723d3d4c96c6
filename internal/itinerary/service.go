// File: internal/itinerary/service.go
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/rbac"
)

const (
	defaultCurrency  = "USD"
	defaultTravelers = 1
)

// Service defines the interface for itinerary business logic.
type Service interface {
	CreateItinerary(ctx context.Context, actor rbac.Actor, req CreateItineraryRequest) (*Itinerary, error)
	GetItinerary(ctx context.Context, actor rbac.Actor, id string) (*Itinerary, error)
	UpdateItinerary(ctx context.Context, actor rbac.Actor, id string, req UpdateItineraryRequest) (*Itinerary, error)
	DeleteItinerary(ctx context.Context, actor rbac.Actor, id string) error
	ListItineraries(ctx context.Context, actor rbac.Actor, q ListQuery, page common.PaginationQuery) ([]*Itinerary, int64, error)
	SearchItineraries(ctx context.Context, actor rbac.Actor, q SearchQuery, page common.PaginationQuery) ([]*Itinerary, int64, error)
	// SyncIndex re-indexes every stored itinerary.
	SyncIndex(ctx context.Context) (*ReindexStats, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo    Repository
	indexer Indexer
	logger  *zap.Logger
	now     func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new itinerary service.
func NewService(repo Repository, indexer Indexer, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:    repo,
		indexer: indexer,
		logger:  logger.Named("ItineraryService"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// MakeSlug builds the URL slug for an itinerary. The id suffix keeps slugs unique.
func MakeSlug(title, id string) string {
	base := slug.Make(title)
	if base == "" {
		base = "itinerary"
	}
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}

func validateDates(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return common.ErrBadRequest.WithDetails("start_date must be YYYY-MM-DD.")
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return common.ErrBadRequest.WithDetails("end_date must be YYYY-MM-DD.")
	}
	if e.Before(s) {
		return common.ErrUnprocessableEntity.WithDetails("end_date must not be before start_date.")
	}
	return nil
}

// normalizeDays orders days by number and rejects duplicates.
func normalizeDays(days []Day) ([]Day, error) {
	out := make([]Day, len(days))
	copy(out, days)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	for i := 1; i < len(out); i++ {
		if out[i].Day == out[i-1].Day {
			return nil, common.ErrUnprocessableEntity.WithDetails(fmt.Sprintf("Day %d appears more than once.", out[i].Day))
		}
	}
	for i := range out {
		if out[i].Items == nil {
			out[i].Items = []Item{}
		}
	}
	return out, nil
}

// syncIndex pushes it to the search index. Failures are logged; the store stays authoritative.
func (s *ServiceImplementation) syncIndex(ctx context.Context, it *Itinerary) {
	if err := s.indexer.Index(ctx, it); err != nil {
		s.logger.Warn("Failed to index itinerary", zap.String("itineraryID", it.ID), zap.Error(err))
	}
}

func (s *ServiceImplementation) CreateItinerary(ctx context.Context, actor rbac.Actor, req CreateItineraryRequest) (*Itinerary, error) {
	if !actor.Can(rbac.ItinerariesCreate) {
		return nil, common.ErrForbidden.WithDetails("You cannot create itineraries.")
	}
	if err := validateDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	days, err := normalizeDays(req.Days)
	if err != nil {
		return nil, err
	}

	now := s.now()
	id := uuid.NewString()
	it := &Itinerary{
		ID:          id,
		UserID:      actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Slug:        MakeSlug(req.Title, id),
		Destination: strings.TrimSpace(req.Destination),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Travelers:   req.Travelers,
		Budget:      req.Budget,
		Currency:    strings.ToUpper(req.Currency),
		Status:      req.Status,
		Days:        days,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if it.Travelers == 0 {
		it.Travelers = defaultTravelers
	}
	if it.Currency == "" {
		it.Currency = defaultCurrency
	}
	if it.Status == "" {
		it.Status = StatusDraft
	}

	if err := s.repo.Create(ctx, it); err != nil {
		s.logger.Error("Failed to create itinerary", zap.String("userID", actor.ID), zap.Error(err))
		return nil, err
	}
	s.syncIndex(ctx, it)
	s.logger.Info("Itinerary created", zap.String("itineraryID", it.ID), zap.String("userID", actor.ID))
	return it, nil
}

func (s *ServiceImplementation) GetItinerary(ctx context.Context, actor rbac.Actor, id string) (*Itinerary, error) {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(it.UserID, rbac.ItinerariesReadOwn, rbac.ItinerariesReadAny) {
		return nil, common.ErrForbidden.WithDetails("You do not have access to this itinerary.")
	}
	return it, nil
}

func (s *ServiceImplementation) UpdateItinerary(ctx context.Context, actor rbac.Actor, id string, req UpdateItineraryRequest) (*Itinerary, error) {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(it.UserID, rbac.ItinerariesUpdateOwn, rbac.ItinerariesUpdateAny) {
		return nil, common.ErrForbidden.WithDetails("You cannot modify this itinerary.")
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		fields["title"] = title
		fields["slug"] = MakeSlug(title, it.ID)
	}
	if req.Destination != nil {
		fields["destination"] = strings.TrimSpace(*req.Destination)
	}
	start, end := it.StartDate, it.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
		fields["start_date"] = start
	}
	if req.EndDate != nil {
		end = *req.EndDate
		fields["end_date"] = end
	}
	if err := validateDates(start, end); err != nil {
		return nil, err
	}
	if req.Travelers != nil {
		fields["travelers"] = int64(*req.Travelers)
	}
	if req.Budget != nil {
		fields["budget"] = *req.Budget
	}
	if req.Currency != nil {
		fields["currency"] = strings.ToUpper(*req.Currency)
	}
	if req.Status != nil {
		fields["status"] = string(*req.Status)
	}
	if req.Days != nil {
		days, err := normalizeDays(*req.Days)
		if err != nil {
			return nil, err
		}
		fields["days"] = daysToValue(days)
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if len(fields) == 0 {
		return nil, common.ErrBadRequest.WithDetails("No fields to update.")
	}
	fields["updated_at"] = s.now()

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.syncIndex(ctx, updated)
	return updated, nil
}

func (s *ServiceImplementation) DeleteItinerary(ctx context.Context, actor rbac.Actor, id string) error {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(it.UserID, rbac.ItinerariesDeleteOwn, rbac.ItinerariesDeleteAny) {
		return common.ErrForbidden.WithDetails("You cannot delete this itinerary.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting itinerary %s: %w", id, err)
	}
	if err := s.indexer.Remove(ctx, id); err != nil {
		s.logger.Warn("Failed to remove itinerary from index", zap.String("itineraryID", id), zap.Error(err))
	}
	s.logger.Info("Itinerary deleted", zap.String("itineraryID", id), zap.String("actorID", actor.ID))
	return nil
}

// ListItineraries lists the caller's itineraries, or another user's (or everyone's) with read:any.
func (s *ServiceImplementation) ListItineraries(ctx context.Context, actor rbac.Actor, q ListQuery, page common.PaginationQuery) ([]*Itinerary, int64, error) {
	filter := Filter{UserID: actor.ID, Status: q.Status}
	if q.All || (q.UserID != "" && q.UserID != actor.ID) {
		if !actor.Can(rbac.ItinerariesReadAny) {
			return nil, 0, common.ErrForbidden.WithDetails("You can only list your own itineraries.")
		}
		filter.UserID = q.UserID
	}
	if filter.UserID == actor.ID && !actor.Can(rbac.ItinerariesReadOwn) {
		return nil, 0, common.ErrForbidden.WithDetails("You cannot list itineraries.")
	}
	return s.repo.List(ctx, filter, page)
}

// SearchItineraries runs a full-text search. Callers without read:any only see their own itineraries.
func (s *ServiceImplementation) SearchItineraries(ctx context.Context, actor rbac.Actor, q SearchQuery, page common.PaginationQuery) ([]*Itinerary, int64, error) {
	req := SearchRequest{
		Query:  q.Q,
		Status: q.Status,
		From:   page.Offset(),
		Size:   page.Limit(),
	}
	if !actor.Can(rbac.ItinerariesReadAny) {
		if !actor.Can(rbac.ItinerariesReadOwn) {
			return nil, 0, common.ErrForbidden.WithDetails("You cannot search itineraries.")
		}
		req.UserID = actor.ID
	}

	result, err := s.indexer.Search(ctx, req)
	if err != nil {
		if errors.Is(err, ErrSearchUnavailable) {
			return nil, 0, common.ErrServiceUnavailable.WithDetails("Itinerary search is currently unavailable.")
		}
		return nil, 0, err
	}

	items := make([]*Itinerary, 0, len(result.IDs))
	for _, id := range result.IDs {
		it, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				s.logger.Debug("Search hit no longer exists", zap.String("itineraryID", id))
				continue
			}
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, result.Total, nil
}

func (s *ServiceImplementation) SyncIndex(ctx context.Context) (*ReindexStats, error) {
	stats, err := s.indexer.Reindex(ctx, func(fn func(*Itinerary) error) error {
		return s.repo.Each(ctx, 0, fn)
	})
	if err != nil {
		return nil, fmt.Errorf("re-indexing itineraries: %w", err)
	}
	s.logger.Info("Itinerary index synchronized", zap.Uint64("indexed", stats.Indexed), zap.Uint64("failed", stats.Failed))
	return stats, nil
}
