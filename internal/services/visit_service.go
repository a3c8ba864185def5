package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/repository"
)

const (
	visitDateLayout = "2006-01-02"
	visitTimeLayout = "15:04"
)

// VisitInput holds the fields of a new visit.
type VisitInput struct {
	PropertyID   string
	Date         string
	Time         string
	ContactName  string
	ContactPhone string
	Notes        string
	Checklist    []models.ChecklistItem
}

// VisitPatch holds optional visit changes. Nil fields are left alone.
type VisitPatch struct {
	Date           *string
	Time           *string
	ContactName    *string
	ContactPhone   *string
	Notes          *string
	Status         *models.VisitStatus
	ClientFeedback *string
	Checklist      []models.ChecklistItem
	Photos         []string
}

// VisitService defines visit scheduling operations.
type VisitService interface {
	// List returns visits of one folder, or of every readable folder when
	// folderID is empty. Ordered by date and time.
	List(ctx context.Context, userID, folderID string) ([]models.Visit, error)

	Get(ctx context.Context, userID, visitID string) (*models.Visit, error)

	// Schedule creates a visit for an existing property, filed in the
	// property's folder.
	Schedule(ctx context.Context, userID string, in VisitInput) (*models.Visit, error)

	// Update applies a patch. It cannot move a visit to Completed; that
	// goes through Complete so the property follows.
	Update(ctx context.Context, userID, visitID string, patch VisitPatch) (*models.Visit, error)
	Delete(ctx context.Context, userID, visitID string) error

	// Complete marks the visit Completed and its property Visited. If the
	// property write fails the visit status is restored; if that also
	// fails ErrInconsistentPair is returned.
	Complete(ctx context.Context, userID, visitID, propertyID string) (*models.Visit, error)
}

type visitService struct {
	store  *repository.Store
	access access
	log    *logger.Logger
	now    func() time.Time
}

// NewVisitService creates a new instance of VisitService.
func NewVisitService(store *repository.Store, log *logger.Logger) VisitService {
	return &visitService{
		store:  store,
		access: access{folders: store.Folders},
		log:    log.WithComponent("visits"),
		now:    time.Now,
	}
}

func (s *visitService) List(ctx context.Context, userID, folderID string) ([]models.Visit, error) {
	ids, err := s.access.scope(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	visits, err := s.store.Visits.ListByFolders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

func (s *visitService) load(ctx context.Context, visitID string) (*models.Visit, error) {
	v, err := s.store.Visits.Get(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load visit: %w", err)
	}
	if v == nil {
		return nil, ErrVisitNotFound
	}
	return v, nil
}

func (s *visitService) Get(ctx context.Context, userID, visitID string) (*models.Visit, error) {
	v, err := s.load(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if err := s.access.canRead(ctx, v.FolderID, userID); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *visitService) Schedule(ctx context.Context, userID string, in VisitInput) (*models.Visit, error) {
	if err := validateVisitWhen(in.Date, in.Time); err != nil {
		return nil, err
	}

	p, err := s.store.Properties.Get(ctx, in.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	if err := s.access.canWrite(ctx, p.FolderID, userID); err != nil {
		return nil, err
	}

	v := &models.Visit{
		ID:           newID(),
		PropertyID:   p.ID,
		FolderID:     p.FolderID,
		UserID:       userID,
		Date:         in.Date,
		Time:         in.Time,
		ContactName:  strings.TrimSpace(in.ContactName),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Checklist:    cleanChecklist(in.Checklist),
		Notes:        in.Notes,
		Status:       models.VisitScheduled,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Visits.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}

	s.log.Info("Visit scheduled", logger.Fields{"visit_id": v.ID, "property_id": p.ID, "date": v.Date})
	return v, nil
}

func (s *visitService) Update(ctx context.Context, userID, visitID string, patch VisitPatch) (*models.Visit, error) {
	v, err := s.load(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if err := s.access.canWrite(ctx, v.FolderID, userID); err != nil {
		return nil, err
	}

	if patch.Date != nil {
		v.Date = *patch.Date
	}
	if patch.Time != nil {
		v.Time = *patch.Time
	}
	if err := validateVisitWhen(v.Date, v.Time); err != nil {
		return nil, err
	}
	if patch.ContactName != nil {
		v.ContactName = strings.TrimSpace(*patch.ContactName)
	}
	if patch.ContactPhone != nil {
		v.ContactPhone = strings.TrimSpace(*patch.ContactPhone)
	}
	if patch.Notes != nil {
		v.Notes = *patch.Notes
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown visit status %q", ErrInvalidInput, *patch.Status)
		}
		if *patch.Status == models.VisitCompleted && v.Status != models.VisitCompleted {
			return nil, fmt.Errorf("%w: visits are completed through the complete operation", ErrInvalidInput)
		}
		v.Status = *patch.Status
	}
	if patch.ClientFeedback != nil {
		feedback := strings.TrimSpace(*patch.ClientFeedback)
		v.ClientFeedback = &feedback
		if feedback == "" {
			v.ClientFeedback = nil
		}
	}
	if patch.Checklist != nil {
		v.Checklist = cleanChecklist(patch.Checklist)
	}
	if patch.Photos != nil {
		v.Photos = patch.Photos
	}

	if err := s.store.Visits.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to update visit: %w", notFound(err, ErrVisitNotFound))
	}
	return v, nil
}

func (s *visitService) Delete(ctx context.Context, userID, visitID string) error {
	v, err := s.load(ctx, visitID)
	if err != nil {
		return err
	}
	if err := s.access.canWrite(ctx, v.FolderID, userID); err != nil {
		return err
	}
	if err := s.store.Visits.Delete(ctx, visitID); err != nil {
		return fmt.Errorf("failed to delete visit: %w", notFound(err, ErrVisitNotFound))
	}
	return nil
}

func (s *visitService) Complete(ctx context.Context, userID, visitID, propertyID string) (*models.Visit, error) {
	v, err := s.load(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if err := s.access.canWrite(ctx, v.FolderID, userID); err != nil {
		return nil, err
	}
	if propertyID == "" {
		propertyID = v.PropertyID
	}
	if propertyID != v.PropertyID {
		return nil, fmt.Errorf("%w: visit %s is not for property %s", ErrInvalidInput, visitID, propertyID)
	}

	p, err := s.store.Properties.Get(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}

	fields := logger.Fields{"visit_id": visitID, "property_id": propertyID}
	previous := v.Status

	if err := s.store.Visits.UpdateStatus(ctx, visitID, models.VisitCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete visit: %w", notFound(err, ErrVisitNotFound))
	}

	if err := s.store.Properties.UpdateStatus(ctx, propertyID, models.PropertyVisited); err != nil {
		if revertErr := s.store.Visits.UpdateStatus(ctx, visitID, previous); revertErr != nil {
			s.log.Error("Visit completed but property not marked visited; manual reconciliation needed", err, logger.Fields{
				"visit_id":        visitID,
				"property_id":     propertyID,
				"previous_status": previous,
				"revert_error":    revertErr.Error(),
			})
			return nil, fmt.Errorf("%w: visit %s is Completed but property %s is not Visited: %v",
				ErrInconsistentPair, visitID, propertyID, err)
		}
		s.log.Warn("Property status write failed, visit completion reverted", fields)
		return nil, fmt.Errorf("failed to mark property visited: %w", notFound(err, ErrPropertyNotFound))
	}

	s.log.Info("Visit completed", fields)
	v.Status = models.VisitCompleted
	return v, nil
}

func validateVisitWhen(date, clock string) error {
	if _, err := time.Parse(visitDateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if clock != "" {
		if _, err := time.Parse(visitTimeLayout, clock); err != nil {
			return fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
		}
	}
	return nil
}

func cleanChecklist(items []models.ChecklistItem) []models.ChecklistItem {
	out := make([]models.ChecklistItem, 0, len(items))
	for _, item := range items {
		if item.Task = strings.TrimSpace(item.Task); item.Task != "" {
			out = append(out, item)
		}
	}
	return out
}
