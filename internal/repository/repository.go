package repository

import (
	"context"
	"errors"

	"github.com/stwalsh4118/acquire/internal/models"
)

// ErrNotFound is returned by writes that target a row that does not exist.
// Reads return nil, nil instead.
var ErrNotFound = errors.New("record not found")

// FolderRepository defines data access for search folders and their shares.
type FolderRepository interface {
	// ListForUser returns folders owned by or shared with the user,
	// oldest first.
	ListForUser(ctx context.Context, userID string) ([]models.SearchFolder, error)

	// Get returns nil, nil if the folder does not exist.
	Get(ctx context.Context, id string) (*models.SearchFolder, error)

	Create(ctx context.Context, folder *models.SearchFolder) error
	Update(ctx context.Context, folder *models.SearchFolder) error

	// Role reports the user's role on the folder. ok is false when the user
	// has no access at all.
	Role(ctx context.Context, folderID, userID string) (role models.ShareRole, ok bool, err error)

	Share(ctx context.Context, share *models.FolderShare) error

	// CascadeImpact counts the rows DeleteCascade would remove.
	CascadeImpact(ctx context.Context, folderID string) (models.CascadeImpact, error)

	// DeleteCascade removes the folder and every property, renovation, visit,
	// document, pending link, share and itinerary referencing it.
	DeleteCascade(ctx context.Context, folderID string) error
}

// PropertyRepository defines data access for properties and their owned
// renovation items.
type PropertyRepository interface {
	// ListByFolders returns properties of the given folders with their
	// renovations, newest first.
	ListByFolders(ctx context.Context, folderIDs []string) ([]models.Property, error)

	// Get returns nil, nil if the property does not exist.
	Get(ctx context.Context, id string) (*models.Property, error)

	// Create inserts the property together with its renovation items.
	Create(ctx context.Context, property *models.Property) error

	// Update overwrites every editable column and replaces the renovation
	// items with property.RenovationCosts as one write.
	Update(ctx context.Context, property *models.Property) error

	UpdateStatus(ctx context.Context, id string, status models.PropertyStatus) error

	// ReplaceRenovations deletes every renovation of the property and
	// inserts items in their place.
	ReplaceRenovations(ctx context.Context, propertyID string, items []models.RenovationItem) error

	// Delete removes the property and its renovations. Visits and documents
	// that reference it are left in place.
	Delete(ctx context.Context, id string) error
}

// VisitRepository defines data access for visits.
type VisitRepository interface {
	ListByFolders(ctx context.Context, folderIDs []string) ([]models.Visit, error)
	Get(ctx context.Context, id string) (*models.Visit, error)
	Create(ctx context.Context, visit *models.Visit) error
	Update(ctx context.Context, visit *models.Visit) error
	UpdateStatus(ctx context.Context, id string, status models.VisitStatus) error
	Delete(ctx context.Context, id string) error
}

// DocumentRepository defines data access for stored documents.
type DocumentRepository interface {
	ListByFolders(ctx context.Context, folderIDs []string) ([]models.PropertyDocument, error)
	Get(ctx context.Context, id string) (*models.PropertyDocument, error)
	Create(ctx context.Context, doc *models.PropertyDocument) error
	Delete(ctx context.Context, id string) error
}

// LinkRepository defines data access for the pending link inbox.
type LinkRepository interface {
	// ListForUser returns the user's pending links, optionally restricted to
	// one folder when folderID is non-empty. Oldest first.
	ListForUser(ctx context.Context, userID, folderID string) ([]models.PendingLink, error)
	Get(ctx context.Context, id string) (*models.PendingLink, error)
	Create(ctx context.Context, link *models.PendingLink) error
	Delete(ctx context.Context, id string) error
}

// ItineraryRepository defines data access for shared client itineraries.
type ItineraryRepository interface {
	Create(ctx context.Context, it *models.SharedItinerary) error
	// GetByToken returns nil, nil if no itinerary has the token.
	GetByToken(ctx context.Context, token string) (*models.SharedItinerary, error)
}

// Store bundles every repository over one backend.
type Store struct {
	Folders     FolderRepository
	Properties  PropertyRepository
	Visits      VisitRepository
	Documents   DocumentRepository
	Links       LinkRepository
	Itineraries ItineraryRepository
}
