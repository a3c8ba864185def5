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

// LinkService manages the pending link inbox.
type LinkService interface {
	// Submit queues every non-blank URL into folderID (or the first
	// writable folder). Duplicates are accepted; any non-http(s) URL
	// rejects the whole batch.
	Submit(ctx context.Context, userID, folderID string, urls []string) ([]models.PendingLink, error)

	// List returns the user's pending links, optionally for one folder.
	List(ctx context.Context, userID, folderID string) ([]models.PendingLink, error)

	// Get returns one of the user's pending links.
	Get(ctx context.Context, userID, linkID string) (*models.PendingLink, error)

	// Discard removes a pending link without creating a property.
	Discard(ctx context.Context, userID, linkID string) error
}

type linkService struct {
	store  *repository.Store
	access access
	log    *logger.Logger
	now    func() time.Time
}

// NewLinkService creates a new instance of LinkService.
func NewLinkService(store *repository.Store, log *logger.Logger) LinkService {
	return &linkService{
		store:  store,
		access: access{folders: store.Folders},
		log:    log.WithComponent("links"),
		now:    time.Now,
	}
}

func (s *linkService) Submit(ctx context.Context, userID, folderID string, urls []string) ([]models.PendingLink, error) {
	cleaned := make([]string, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if err := checkHTTPURL(raw); err != nil {
			return nil, err
		}
		cleaned = append(cleaned, raw)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: at least one URL is required", ErrInvalidInput)
	}

	target, err := s.access.resolveFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	links := make([]models.PendingLink, 0, len(cleaned))
	for i, u := range cleaned {
		link := models.PendingLink{
			ID:        newID(),
			URL:       u,
			FolderID:  target,
			UserID:    userID,
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
		if err := s.store.Links.Create(ctx, &link); err != nil {
			return links, fmt.Errorf("failed to queue link: %w", err)
		}
		links = append(links, link)
	}

	s.log.Info("Links queued", logger.Fields{"folder_id": target, "count": len(links)})
	return links, nil
}

func (s *linkService) List(ctx context.Context, userID, folderID string) ([]models.PendingLink, error) {
	if folderID != "" {
		if err := s.access.canRead(ctx, folderID, userID); err != nil {
			return nil, err
		}
	}
	links, err := s.store.Links.ListForUser(ctx, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending links: %w", err)
	}
	return links, nil
}

func (s *linkService) Get(ctx context.Context, userID, linkID string) (*models.PendingLink, error) {
	link, err := s.store.Links.Get(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending link: %w", err)
	}
	if link == nil || link.UserID != userID {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (s *linkService) Discard(ctx context.Context, userID, linkID string) error {
	if _, err := s.Get(ctx, userID, linkID); err != nil {
		return err
	}
	if err := s.store.Links.Delete(ctx, linkID); err != nil {
		return fmt.Errorf("failed to discard pending link: %w", notFound(err, ErrLinkNotFound))
	}
	return nil
}
