// File: internal/itinerary/model.go
package itinerary

import (
	"time"
)

// CollectionName is the document collection holding itineraries.
const CollectionName = "itineraries"

// DateLayout is the layout for itinerary dates.
const DateLayout = "2006-01-02"

// Status is the lifecycle state of an itinerary.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPlanned   Status = "planned"
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPlanned, StatusBooked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Item is one scheduled activity within a day.
type Item struct {
	Time     string `json:"time" binding:"omitempty,datetime=15:04"`
	Title    string `json:"title" binding:"required,max=200"`
	Kind     string `json:"kind" binding:"omitempty,oneof=activity transport lodging meal flight other"`
	Location string `json:"location" binding:"omitempty,max=200"`
	Notes    string `json:"notes" binding:"omitempty,max=2000"`
}

// Day groups the items planned for one day of the trip.
type Day struct {
	Day   int    `json:"day" binding:"required,gte=1"`
	Date  string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Items []Item `json:"items" binding:"omitempty,dive"`
}

// Itinerary is a planned trip owned by one user.
type Itinerary struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Travelers   int       `json:"travelers"`
	Budget      float64   `json:"budget"`
	Currency    string    `json:"currency"`
	Status      Status    `json:"status"`
	Days        []Day     `json:"days"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func daysToValue(days []Day) []interface{} {
	out := make([]interface{}, 0, len(days))
	for _, d := range days {
		items := make([]interface{}, 0, len(d.Items))
		for _, it := range d.Items {
			items = append(items, map[string]interface{}{
				"time":     it.Time,
				"title":    it.Title,
				"kind":     it.Kind,
				"location": it.Location,
				"notes":    it.Notes,
			})
		}
		out = append(out, map[string]interface{}{
			"day":   int64(d.Day),
			"date":  d.Date,
			"items": items,
		})
	}
	return out
}

// toFields builds the full document for it.
func (it *Itinerary) toFields() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     it.UserID,
		"title":       it.Title,
		"slug":        it.Slug,
		"destination": it.Destination,
		"start_date":  it.StartDate,
		"end_date":    it.EndDate,
		"travelers":   int64(it.Travelers),
		"budget":      it.Budget,
		"currency":    it.Currency,
		"status":      string(it.Status),
		"days":        daysToValue(it.Days),
		"notes":       it.Notes,
		"created_at":  it.CreatedAt,
		"updated_at":  it.UpdatedAt,
	}
}

// --- DTOs ---

// CreateItineraryRequest is the body of POST /itineraries.
type CreateItineraryRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Destination string  `json:"destination" binding:"required,max=200"`
	StartDate   string  `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Travelers   int     `json:"travelers" binding:"omitempty,gte=1,max=100"`
	Budget      float64 `json:"budget" binding:"omitempty,gte=0"`
	Currency    string  `json:"currency" binding:"omitempty,len=3"`
	Status      Status  `json:"status" binding:"omitempty,oneof=draft planned booked completed cancelled"`
	Days        []Day   `json:"days" binding:"omitempty,dive"`
	Notes       string  `json:"notes" binding:"omitempty,max=5000"`
}

// UpdateItineraryRequest is the body of PATCH /itineraries/:id. Nil fields are left unchanged.
type UpdateItineraryRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Destination *string  `json:"destination" binding:"omitempty,max=200"`
	StartDate   *string  `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string  `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Travelers   *int     `json:"travelers" binding:"omitempty,gte=1,max=100"`
	Budget      *float64 `json:"budget" binding:"omitempty,gte=0"`
	Currency    *string  `json:"currency" binding:"omitempty,len=3"`
	Status      *Status  `json:"status" binding:"omitempty,oneof=draft planned booked completed cancelled"`
	Days        *[]Day   `json:"days" binding:"omitempty,dive"`
	Notes       *string  `json:"notes" binding:"omitempty,max=5000"`
}

// ListQuery filters itinerary listings.
type ListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=draft planned booked completed cancelled"`
	// UserID lists another user's itineraries; requires itineraries:read:any.
	UserID string `form:"user_id"`
	// All lists every user's itineraries; requires itineraries:read:any.
	All bool `form:"all"`
}

// SearchQuery is the full-text search request.
type SearchQuery struct {
	Q      string `form:"q" binding:"required,min=1,max=200"`
	Status string `form:"status" binding:"omitempty,oneof=draft planned booked completed cancelled"`
}

// ItineraryResponse is the API representation of an itinerary.
type ItineraryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	Travelers   int       `json:"travelers"`
	Budget      float64   `json:"budget"`
	Currency    string    `json:"currency"`
	Status      Status    `json:"status"`
	Days        []Day     `json:"days"`
	Notes       string    `json:"notes,omitempty"`
	DayCount    int       `json:"day_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToItineraryResponse converts an Itinerary for the API.
func ToItineraryResponse(it *Itinerary) ItineraryResponse {
	days := it.Days
	if days == nil {
		days = []Day{}
	}
	return ItineraryResponse{
		ID:          it.ID,
		UserID:      it.UserID,
		Title:       it.Title,
		Slug:        it.Slug,
		Destination: it.Destination,
		StartDate:   it.StartDate,
		EndDate:     it.EndDate,
		Travelers:   it.Travelers,
		Budget:      it.Budget,
		Currency:    it.Currency,
		Status:      it.Status,
		Days:        days,
		Notes:       it.Notes,
		DayCount:    len(days),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// ToItineraryResponses converts a slice of itineraries.
func ToItineraryResponses(items []*Itinerary) []ItineraryResponse {
	out := make([]ItineraryResponse, len(items))
	for i, it := range items {
		out[i] = ToItineraryResponse(it)
	}
	return out
}
