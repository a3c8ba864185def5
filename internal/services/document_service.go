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

// DocumentInput describes an uploaded file. FileURL is whatever the upload
// returned; storage itself happens elsewhere.
type DocumentInput struct {
	FolderID   string
	PropertyID *string
	Name       string
	Category   models.DocumentCategory
	FileURL    string
	FileType   string
}

// DocumentService defines document vault operations.
type DocumentService interface {
	// List returns documents of one folder, or of every readable folder
	// when folderID is empty. A non-empty propertyID narrows to that
	// property's documents.
	List(ctx context.Context, userID, folderID, propertyID string) ([]models.PropertyDocument, error)

	Create(ctx context.Context, userID string, in DocumentInput) (*models.PropertyDocument, error)
	Delete(ctx context.Context, userID, documentID string) error
}

type documentService struct {
	store  *repository.Store
	access access
	log    *logger.Logger
	now    func() time.Time
}

// NewDocumentService creates a new instance of DocumentService.
func NewDocumentService(store *repository.Store, log *logger.Logger) DocumentService {
	return &documentService{
		store:  store,
		access: access{folders: store.Folders},
		log:    log.WithComponent("documents"),
		now:    time.Now,
	}
}

func (s *documentService) List(ctx context.Context, userID, folderID, propertyID string) ([]models.PropertyDocument, error) {
	ids, err := s.access.scope(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.Documents.ListByFolders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if propertyID == "" {
		return docs, nil
	}

	out := make([]models.PropertyDocument, 0, len(docs))
	for _, d := range docs {
		if d.PropertyID != nil && *d.PropertyID == propertyID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *documentService) Create(ctx context.Context, userID string, in DocumentInput) (*models.PropertyDocument, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", ErrInvalidInput)
	}
	if err := checkHTTPURL(in.FileURL); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = models.DocumentOther
	}
	if !in.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown document category %q", ErrInvalidInput, in.Category)
	}

	folderID := in.FolderID
	if in.PropertyID != nil && *in.PropertyID != "" {
		p, err := s.store.Properties.Get(ctx, *in.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("failed to load property: %w", err)
		}
		if p == nil {
			return nil, ErrPropertyNotFound
		}
		if folderID != "" && folderID != p.FolderID {
			return nil, fmt.Errorf("%w: property is not in folder %s", ErrInvalidInput, folderID)
		}
		folderID = p.FolderID
	} else {
		in.PropertyID = nil
	}
	if folderID == "" {
		return nil, fmt.Errorf("%w: folderId or propertyId is required", ErrInvalidInput)
	}
	if err := s.access.canWrite(ctx, folderID, userID); err != nil {
		return nil, err
	}

	doc := &models.PropertyDocument{
		ID:         newID(),
		FolderID:   folderID,
		PropertyID: in.PropertyID,
		Name:       name,
		Category:   in.Category,
		FileURL:    strings.TrimSpace(in.FileURL),
		FileType:   in.FileType,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.Documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.store.Documents.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.access.canWrite(ctx, doc.FolderID, userID); err != nil {
		return err
	}
	if err := s.store.Documents.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", notFound(err, ErrDocumentNotFound))
	}
	return nil
}
