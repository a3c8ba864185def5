package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/stwalsh4118/acquire/internal/filter"
	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/repository"
)

// PropertyService defines property operations.
type PropertyService interface {
	// List returns the user's properties shaped by q.
	List(ctx context.Context, userID string, q filter.Query) ([]models.Property, error)

	// ListFolder returns every property of one readable folder.
	ListFolder(ctx context.Context, userID, folderID string) ([]models.Property, error)

	Get(ctx context.Context, userID, propertyID string) (*models.Property, error)

	// Create stores p in folderID, or in the user's first writable folder
	// when folderID is empty. It returns ErrNoFolder when the user has no
	// folder at all.
	Create(ctx context.Context, userID string, p *models.Property, folderID string) (*models.Property, error)

	// Update overwrites every editable field and replaces renovations.
	Update(ctx context.Context, userID string, p *models.Property) (*models.Property, error)

	UpdateStatus(ctx context.Context, userID, propertyID string, status models.PropertyStatus) (*models.Property, error)

	// UpdateRenovations replaces the whole renovation list.
	UpdateRenovations(ctx context.Context, userID, propertyID string, items []models.RenovationItem) (*models.Property, error)

	// Delete removes the property and its renovations. Visits and
	// documents pointing at it are kept.
	Delete(ctx context.Context, userID, propertyID string) error
}

type propertyService struct {
	store  *repository.Store
	access access
	log    *logger.Logger
	now    func() time.Time
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(store *repository.Store, log *logger.Logger) PropertyService {
	return &propertyService{
		store:  store,
		access: access{folders: store.Folders},
		log:    log.WithComponent("properties"),
		now:    time.Now,
	}
}

func (s *propertyService) List(ctx context.Context, userID string, q filter.Query) ([]models.Property, error) {
	ids, err := s.access.folderIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	props, err := s.store.Properties.ListByFolders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return filter.Apply(props, q), nil
}

func (s *propertyService) ListFolder(ctx context.Context, userID, folderID string) ([]models.Property, error) {
	if err := s.access.canRead(ctx, folderID, userID); err != nil {
		return nil, err
	}
	props, err := s.store.Properties.ListByFolders(ctx, []string{folderID})
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

func (s *propertyService) Get(ctx context.Context, userID, propertyID string) (*models.Property, error) {
	p, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := s.access.canRead(ctx, p.FolderID, userID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *propertyService) load(ctx context.Context, propertyID string) (*models.Property, error) {
	p, err := s.store.Properties.Get(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	return p, nil
}

func (s *propertyService) Create(ctx context.Context, userID string, p *models.Property, folderID string) (*models.Property, error) {
	target, err := s.access.resolveFolder(ctx, userID, folderID)
	if err != nil {
		if errors.Is(err, ErrNoFolder) {
			s.log.Warn("Property rejected, user has no folder", logger.Fields{"user_id": userID})
		}
		return nil, err
	}

	created := *p
	created.ID = newID()
	created.FolderID = target
	created.CreatedAt = s.now().UTC()
	if created.Status == "" {
		created.Status = models.PropertyWishlist
	}
	if err := normalizeProperty(&created); err != nil {
		return nil, err
	}

	if err := s.store.Properties.Create(ctx, &created); err != nil {
		s.log.Error("Failed to create property", err, logger.Fields{"folder_id": target})
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.log.Info("Property created", logger.Fields{
		"property_id": created.ID,
		"folder_id":   target,
		"defaulted":   folderID == "",
	})
	return &created, nil
}

func (s *propertyService) Update(ctx context.Context, userID string, p *models.Property) (*models.Property, error) {
	existing, err := s.load(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := s.access.canWrite(ctx, existing.FolderID, userID); err != nil {
		return nil, err
	}

	updated := *p
	updated.CreatedAt = existing.CreatedAt
	if updated.FolderID == "" {
		updated.FolderID = existing.FolderID
	}
	if updated.FolderID != existing.FolderID {
		if err := s.access.canWrite(ctx, updated.FolderID, userID); err != nil {
			return nil, err
		}
	}
	if updated.Status == "" {
		updated.Status = existing.Status
	}
	if err := normalizeProperty(&updated); err != nil {
		return nil, err
	}

	if err := s.store.Properties.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", notFound(err, ErrPropertyNotFound))
	}
	return &updated, nil
}

func (s *propertyService) UpdateStatus(ctx context.Context, userID, propertyID string, status models.PropertyStatus) (*models.Property, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown property status %q", ErrInvalidInput, status)
	}
	p, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := s.access.canWrite(ctx, p.FolderID, userID); err != nil {
		return nil, err
	}
	if err := s.store.Properties.UpdateStatus(ctx, propertyID, status); err != nil {
		return nil, fmt.Errorf("failed to update property status: %w", notFound(err, ErrPropertyNotFound))
	}
	p.Status = status
	return p, nil
}

func (s *propertyService) UpdateRenovations(ctx context.Context, userID, propertyID string, items []models.RenovationItem) (*models.Property, error) {
	p, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := s.access.canWrite(ctx, p.FolderID, userID); err != nil {
		return nil, err
	}

	replacement, err := normalizeRenovations(propertyID, items)
	if err != nil {
		return nil, err
	}
	if err := s.store.Properties.ReplaceRenovations(ctx, propertyID, replacement); err != nil {
		return nil, fmt.Errorf("failed to replace renovations: %w", notFound(err, ErrPropertyNotFound))
	}
	p.RenovationCosts = replacement
	return p, nil
}

func (s *propertyService) Delete(ctx context.Context, userID, propertyID string) error {
	p, err := s.load(ctx, propertyID)
	if err != nil {
		return err
	}
	if err := s.access.canWrite(ctx, p.FolderID, userID); err != nil {
		return err
	}
	if err := s.store.Properties.Delete(ctx, propertyID); err != nil {
		return fmt.Errorf("failed to delete property: %w", notFound(err, ErrPropertyNotFound))
	}
	s.log.Info("Property deleted", logger.Fields{"property_id": propertyID, "folder_id": p.FolderID})
	return nil
}

// normalizeProperty enforces the write-time rules shared by create and
// update.
func normalizeProperty(p *models.Property) error {
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown property status %q", ErrInvalidInput, p.Status)
	}
	if p.URL != "" {
		if err := checkHTTPURL(p.URL); err != nil {
			return err
		}
	}
	p.Title = strings.TrimSpace(p.Title)
	p.Rating = models.ClampRating(p.Rating)
	if p.ExactAddress != nil {
		trimmed := strings.TrimSpace(*p.ExactAddress)
		if trimmed == "" {
			p.ExactAddress = nil
		} else {
			p.ExactAddress = &trimmed
		}
	}
	if p.Location != nil && !p.Location.Valid() {
		return fmt.Errorf("%w: location out of range", ErrInvalidInput)
	}
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	p.Images = images

	items, err := normalizeRenovations(p.ID, p.RenovationCosts)
	if err != nil {
		return err
	}
	p.RenovationCosts = items
	return nil
}

func normalizeRenovations(propertyID string, items []models.RenovationItem) ([]models.RenovationItem, error) {
	out := make([]models.RenovationItem, 0, len(items))
	for _, item := range items {
		if item.EstimatedCost < 0 {
			return nil, fmt.Errorf("%w: renovation cost cannot be negative", ErrInvalidInput)
		}
		item.ID = newID()
		item.PropertyID = propertyID
		item.Category = strings.TrimSpace(item.Category)
		out = append(out, item)
	}
	return out, nil
}

// checkHTTPURL accepts absolute http and https URLs only.
func checkHTTPURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidInput, raw)
	}
	return nil
}
