package models

import "time"

// PendingLink is a raw listing URL waiting in the intake inbox.
// Duplicate URLs are allowed.
type PendingLink struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	FolderID  string    `json:"folderId"`
	UserID    string    `json:"userId"`
}

// SharedItinerary is a read-only list of visits shared with a client
// through an unguessable token.
type SharedItinerary struct {
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	ID         string     `json:"id"`
	FolderID   string     `json:"folderId"`
	Token      string     `json:"token"`
	ClientName string     `json:"clientName"`
	VisitIDs   []string   `json:"visitIds"`
}

// Expired reports whether the itinerary is past its expiry at now.
func (s *SharedItinerary) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// ItineraryStop is a visit resolved for a shared itinerary.
// Property is nil when the visit references a deleted property.
type ItineraryStop struct {
	Visit    Visit     `json:"visit"`
	Property *Property `json:"property"`
}
