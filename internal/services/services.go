// Package services holds the business rules over the repositories:
// folder ownership, default-folder selection, cascade deletes and the
// coupled visit completion.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/repository"
)

// Service-level errors
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNoFolder             = errors.New("create a folder first")
	ErrFolderNotFound       = errors.New("folder not found")
	ErrFolderAccess         = errors.New("folder not accessible")
	ErrReadOnly             = errors.New("folder is read-only for this user")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrVisitNotFound        = errors.New("visit not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrLinkNotFound         = errors.New("pending link not found")
	ErrItineraryNotFound    = errors.New("itinerary not found")
	ErrItineraryExpired     = errors.New("itinerary expired")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrInconsistentPair     = errors.New("visit and property left inconsistent")
)

// ConfirmationError carries what a destructive operation would remove.
// It matches ErrConfirmationRequired with errors.Is.
type ConfirmationError struct {
	Impact models.CascadeImpact
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: would delete %d properties, %d visits, %d documents and %d pending links",
		ErrConfirmationRequired, e.Impact.Properties, e.Impact.Visits, e.Impact.Documents, e.Impact.PendingLinks)
}

func (e *ConfirmationError) Is(target error) bool {
	return target == ErrConfirmationRequired
}

func newID() string {
	return uuid.NewString()
}

// access resolves a user's rights on folders.
type access struct {
	folders repository.FolderRepository
}

// role returns the user's role, ErrFolderNotFound or ErrFolderAccess.
func (a access) role(ctx context.Context, folderID, userID string) (models.ShareRole, error) {
	role, ok, err := a.folders.Role(ctx, folderID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve folder role: %w", err)
	}
	if ok {
		return role, nil
	}

	folder, err := a.folders.Get(ctx, folderID)
	if err != nil {
		return "", fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return "", ErrFolderNotFound
	}
	return "", ErrFolderAccess
}

func (a access) canRead(ctx context.Context, folderID, userID string) error {
	_, err := a.role(ctx, folderID, userID)
	return err
}

func (a access) canWrite(ctx context.Context, folderID, userID string) error {
	role, err := a.role(ctx, folderID, userID)
	if err != nil {
		return err
	}
	if !role.CanWrite() {
		return ErrReadOnly
	}
	return nil
}

// folderIDs lists every folder the user can read, oldest first.
func (a access) folderIDs(ctx context.Context, userID string) ([]string, error) {
	folders, err := a.folders.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	ids := make([]string, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

// scope returns folderID alone after a read check, or every readable
// folder when folderID is empty.
func (a access) scope(ctx context.Context, userID, folderID string) ([]string, error) {
	if folderID == "" {
		return a.folderIDs(ctx, userID)
	}
	if err := a.canRead(ctx, folderID, userID); err != nil {
		return nil, err
	}
	return []string{folderID}, nil
}

// resolveFolder picks the folder a new record lands in: the requested one,
// otherwise the user's oldest writable folder. With no folder at all it
// returns ErrNoFolder.
func (a access) resolveFolder(ctx context.Context, userID, folderID string) (string, error) {
	if folderID != "" {
		if err := a.canWrite(ctx, folderID, userID); err != nil {
			return "", err
		}
		return folderID, nil
	}

	folders, err := a.folders.ListForUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to list folders: %w", err)
	}
	if len(folders) == 0 {
		return "", ErrNoFolder
	}
	for _, f := range folders {
		role, ok, err := a.folders.Role(ctx, f.ID, userID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve folder role: %w", err)
		}
		if ok && role.CanWrite() {
			return f.ID, nil
		}
	}
	return "", ErrReadOnly
}

func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

// daysBetween counts whole days from start to now, never negative.
func daysBetween(start, now time.Time) int {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	return int(now.Sub(start).Hours() / 24)
}
