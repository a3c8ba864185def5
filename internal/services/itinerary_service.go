package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/repository"
)

// ResolvedItinerary is a shared itinerary with its visits and properties.
type ResolvedItinerary struct {
	Itinerary models.SharedItinerary `json:"itinerary"`
	Stops     []models.ItineraryStop `json:"stops"`
}

// ItineraryService shares visit plans with clients.
type ItineraryService interface {
	// Create shares the given visits of one folder under a fresh token.
	// A zero ttl never expires.
	Create(ctx context.Context, userID, folderID string, visitIDs []string, clientName string, ttl time.Duration) (*models.SharedItinerary, error)

	// Resolve is public: anyone holding the token may read it. Visits
	// whose property is gone are returned with a nil property.
	Resolve(ctx context.Context, token string) (*ResolvedItinerary, error)
}

type itineraryService struct {
	store  *repository.Store
	access access
	log    *logger.Logger
	now    func() time.Time
}

// NewItineraryService creates a new instance of ItineraryService.
func NewItineraryService(store *repository.Store, log *logger.Logger) ItineraryService {
	return &itineraryService{
		store:  store,
		access: access{folders: store.Folders},
		log:    log.WithComponent("itineraries"),
		now:    time.Now,
	}
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *itineraryService) Create(ctx context.Context, userID, folderID string, visitIDs []string, clientName string, ttl time.Duration) (*models.SharedItinerary, error) {
	if len(visitIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one visit is required", ErrInvalidInput)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("%w: ttl cannot be negative", ErrInvalidInput)
	}
	if err := s.access.canWrite(ctx, folderID, userID); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(visitIDs))
	ids := make([]string, 0, len(visitIDs))
	for _, id := range visitIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		v, err := s.store.Visits.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load visit: %w", err)
		}
		if v == nil || v.FolderID != folderID {
			return nil, fmt.Errorf("%w: visit %s", ErrVisitNotFound, id)
		}
		ids = append(ids, id)
	}

	now := s.now().UTC()
	it := &models.SharedItinerary{
		ID:         newID(),
		FolderID:   folderID,
		Token:      newToken(),
		ClientName: strings.TrimSpace(clientName),
		VisitIDs:   ids,
		CreatedAt:  now,
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		it.ExpiresAt = &expires
	}

	if err := s.store.Itineraries.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}
	s.log.Info("Itinerary shared", logger.Fields{"folder_id": folderID, "visits": len(ids)})
	return it, nil
}

func (s *itineraryService) Resolve(ctx context.Context, token string) (*ResolvedItinerary, error) {
	it, err := s.store.Itineraries.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load itinerary: %w", err)
	}
	if it == nil {
		return nil, ErrItineraryNotFound
	}
	if it.Expired(s.now()) {
		return nil, ErrItineraryExpired
	}

	stops := make([]models.ItineraryStop, 0, len(it.VisitIDs))
	for _, id := range it.VisitIDs {
		v, err := s.store.Visits.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load visit: %w", err)
		}
		if v == nil {
			continue
		}
		p, err := s.store.Properties.Get(ctx, v.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("failed to load property: %w", err)
		}
		stops = append(stops, models.ItineraryStop{Visit: *v, Property: p})
	}

	return &ResolvedItinerary{Itinerary: *it, Stops: stops}, nil
}
