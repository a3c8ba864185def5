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

// FolderInput holds the fields of a new folder.
type FolderInput struct {
	StartDate       time.Time
	Name            string
	Description     string
	Status          models.FolderStatus
	TransactionType models.TransactionType
	Color           string
	Budget          float64
}

// FolderPatch holds optional folder changes. Nil fields are left alone.
type FolderPatch struct {
	StartDate       *time.Time
	Name            *string
	Description     *string
	Status          *models.FolderStatus
	TransactionType *models.TransactionType
	Color           *string
	Budget          *float64
}

// FolderService defines folder aggregation and lifecycle operations.
type FolderService interface {
	// ListSummaries returns the user's folders with derived metrics.
	ListSummaries(ctx context.Context, userID string) ([]models.FolderSummary, error)

	Get(ctx context.Context, userID, folderID string) (*models.SearchFolder, error)
	Create(ctx context.Context, userID string, in FolderInput) (*models.SearchFolder, error)

	// Update applies the patch. StatusUpdatedAt moves only when the status
	// value actually changes.
	Update(ctx context.Context, userID, folderID string, patch FolderPatch) (*models.SearchFolder, error)

	// Delete removes the folder and everything filed under it. Without
	// confirmation nothing is deleted and a *ConfirmationError describing
	// the impact is returned.
	Delete(ctx context.Context, userID, folderID string, confirmed bool) (models.CascadeImpact, error)

	// Share grants another user a role on a folder the caller owns.
	Share(ctx context.Context, userID, folderID, targetUserID string, role models.ShareRole) error
}

type folderService struct {
	store  *repository.Store
	access access
	log    *logger.Logger
	now    func() time.Time
}

// NewFolderService creates a new instance of FolderService.
func NewFolderService(store *repository.Store, log *logger.Logger) FolderService {
	return &folderService{
		store:  store,
		access: access{folders: store.Folders},
		log:    log.WithComponent("folders"),
		now:    time.Now,
	}
}

func (s *folderService) ListSummaries(ctx context.Context, userID string) ([]models.FolderSummary, error) {
	folders, err := s.store.Folders.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	ids := make([]string, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}

	props, err := s.store.Properties.ListByFolders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	visits, err := s.store.Visits.ListByFolders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}

	return Summarize(folders, props, visits, s.now()), nil
}

// Summarize derives per-folder metrics. Active assets are properties that
// are not discarded.
func Summarize(folders []models.SearchFolder, props []models.Property, visits []models.Visit, now time.Time) []models.FolderSummary {
	type counts struct{ props, active, visits int }
	byFolder := make(map[string]*counts, len(folders))
	for _, f := range folders {
		byFolder[f.ID] = &counts{}
	}
	for _, p := range props {
		if c, ok := byFolder[p.FolderID]; ok {
			c.props++
			if p.Status != models.PropertyDiscarded {
				c.active++
			}
		}
	}
	for _, v := range visits {
		if c, ok := byFolder[v.FolderID]; ok {
			c.visits++
		}
	}

	out := make([]models.FolderSummary, 0, len(folders))
	for _, f := range folders {
		c := byFolder[f.ID]
		out = append(out, models.FolderSummary{
			SearchFolder:  f,
			DaysElapsed:   daysBetween(f.StartDate, now),
			PropertyCount: c.props,
			ActiveAssets:  c.active,
			VisitCount:    c.visits,
		})
	}
	return out
}

func (s *folderService) Get(ctx context.Context, userID, folderID string) (*models.SearchFolder, error) {
	if err := s.access.canRead(ctx, folderID, userID); err != nil {
		return nil, err
	}
	folder, err := s.store.Folders.Get(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return nil, ErrFolderNotFound
	}
	return folder, nil
}

func (s *folderService) Create(ctx context.Context, userID string, in FolderInput) (*models.SearchFolder, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = models.FolderOpen
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown folder status %q", ErrInvalidInput, in.Status)
	}
	if in.TransactionType == "" {
		in.TransactionType = models.TransactionPurchase
	}
	if !in.TransactionType.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, in.TransactionType)
	}

	now := s.now().UTC()
	if in.StartDate.IsZero() {
		in.StartDate = now
	}

	folder := &models.SearchFolder{
		ID:              newID(),
		UserID:          userID,
		Name:            name,
		Description:     in.Description,
		Status:          in.Status,
		TransactionType: in.TransactionType,
		Budget:          in.Budget,
		StartDate:       in.StartDate,
		StatusUpdatedAt: now,
		Color:           in.Color,
		CreatedAt:       now,
	}
	if err := s.store.Folders.Create(ctx, folder); err != nil {
		s.log.Error("Failed to create folder", err, logger.Fields{"user_id": userID})
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	s.log.Info("Folder created", logger.Fields{"folder_id": folder.ID, "user_id": userID})
	return folder, nil
}

func (s *folderService) Update(ctx context.Context, userID, folderID string, patch FolderPatch) (*models.SearchFolder, error) {
	if err := s.access.canWrite(ctx, folderID, userID); err != nil {
		return nil, err
	}
	folder, err := s.store.Folders.Get(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return nil, ErrFolderNotFound
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: folder name is required", ErrInvalidInput)
		}
		folder.Name = name
	}
	if patch.Description != nil {
		folder.Description = *patch.Description
	}
	if patch.TransactionType != nil {
		if !patch.TransactionType.Valid() {
			return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, *patch.TransactionType)
		}
		folder.TransactionType = *patch.TransactionType
	}
	if patch.Budget != nil {
		folder.Budget = *patch.Budget
	}
	if patch.StartDate != nil {
		folder.StartDate = *patch.StartDate
	}
	if patch.Color != nil {
		folder.Color = *patch.Color
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown folder status %q", ErrInvalidInput, *patch.Status)
		}
		if *patch.Status != folder.Status {
			folder.Status = *patch.Status
			folder.StatusUpdatedAt = s.now().UTC()
		}
	}

	if err := s.store.Folders.Update(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to update folder: %w", notFound(err, ErrFolderNotFound))
	}
	return folder, nil
}

func (s *folderService) Delete(ctx context.Context, userID, folderID string, confirmed bool) (models.CascadeImpact, error) {
	role, err := s.access.role(ctx, folderID, userID)
	if err != nil {
		return models.CascadeImpact{}, err
	}
	if role != models.RoleOwner {
		return models.CascadeImpact{}, ErrReadOnly
	}

	impact, err := s.store.Folders.CascadeImpact(ctx, folderID)
	if err != nil {
		return models.CascadeImpact{}, fmt.Errorf("failed to count folder contents: %w", err)
	}
	if !confirmed {
		return impact, &ConfirmationError{Impact: impact}
	}

	if err := s.store.Folders.DeleteCascade(ctx, folderID); err != nil {
		s.log.Error("Folder cascade delete failed", err, logger.Fields{"folder_id": folderID})
		return impact, fmt.Errorf("failed to delete folder: %w", notFound(err, ErrFolderNotFound))
	}

	s.log.Warn("Folder deleted with cascade", logger.Fields{
		"folder_id":     folderID,
		"user_id":       userID,
		"properties":    impact.Properties,
		"visits":        impact.Visits,
		"documents":     impact.Documents,
		"pending_links": impact.PendingLinks,
	})
	return impact, nil
}

func (s *folderService) Share(ctx context.Context, userID, folderID, targetUserID string, role models.ShareRole) error {
	current, err := s.access.role(ctx, folderID, userID)
	if err != nil {
		return err
	}
	if current != models.RoleOwner {
		return ErrReadOnly
	}
	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" || targetUserID == userID {
		return fmt.Errorf("%w: share target must be another user", ErrInvalidInput)
	}
	if role == models.RoleOwner {
		return fmt.Errorf("%w: ownership cannot be shared", ErrInvalidInput)
	}

	share := &models.FolderShare{
		FolderID:  folderID,
		UserID:    targetUserID,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Folders.Share(ctx, share); err != nil {
		return fmt.Errorf("failed to share folder: %w", notFound(err, ErrFolderNotFound))
	}
	return nil
}
