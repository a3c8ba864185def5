package services

import (
	"context"
	"time"

	"github.com/stwalsh4118/acquire/internal/filter"
	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/repository"
)

// Dashboard is everything the main view renders in one read.
type Dashboard struct {
	Folders       []models.FolderSummary    `json:"folders"`
	Properties    []models.Property         `json:"properties"`
	Visits        []models.Visit            `json:"visits"`
	Documents     []models.PropertyDocument `json:"documents"`
	PendingLinks  []models.PendingLink      `json:"pendingLinks"`
	ActiveFilters int                       `json:"activeFilters"`
	Total         int                       `json:"total"`
	Degraded      bool                      `json:"degraded"`
}

// DashboardService assembles the dashboard view.
type DashboardService interface {
	// Load never fails: a collection that cannot be read is returned empty
	// and Degraded is set.
	Load(ctx context.Context, userID string, q filter.Query) Dashboard
}

type dashboardService struct {
	store *repository.Store
	log   *logger.Logger
	now   func() time.Time
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(store *repository.Store, log *logger.Logger) DashboardService {
	return &dashboardService{store: store, log: log.WithComponent("dashboard"), now: time.Now}
}

func (s *dashboardService) Load(ctx context.Context, userID string, q filter.Query) Dashboard {
	d := Dashboard{
		Folders:       []models.FolderSummary{},
		Properties:    []models.Property{},
		Visits:        []models.Visit{},
		Documents:     []models.PropertyDocument{},
		PendingLinks:  []models.PendingLink{},
		ActiveFilters: filter.ActiveCount(q.Filters),
	}

	degrade := func(what string, err error) {
		d.Degraded = true
		s.log.Error("Dashboard read failed, showing empty "+what, err, logger.Fields{"user_id": userID})
	}

	folders, err := s.store.Folders.ListForUser(ctx, userID)
	if err != nil {
		degrade("folders", err)
		return d
	}
	ids := make([]string, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}

	props, err := s.store.Properties.ListByFolders(ctx, ids)
	if err != nil {
		degrade("properties", err)
		props = []models.Property{}
	}
	visits, err := s.store.Visits.ListByFolders(ctx, ids)
	if err != nil {
		degrade("visits", err)
		visits = []models.Visit{}
	}
	docs, err := s.store.Documents.ListByFolders(ctx, ids)
	if err != nil {
		degrade("documents", err)
		docs = []models.PropertyDocument{}
	}
	links, err := s.store.Links.ListForUser(ctx, userID, "")
	if err != nil {
		degrade("pending links", err)
		links = []models.PendingLink{}
	}

	d.Folders = Summarize(folders, props, visits, s.now())
	d.Total = len(props)
	d.Properties = filter.Apply(props, q)
	d.Visits = visits
	d.Documents = docs
	d.PendingLinks = links
	return d
}
