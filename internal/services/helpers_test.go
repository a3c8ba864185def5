package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/repository"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fixture wires every service over one in-memory store with a fixed clock.
type fixture struct {
	store       *repository.Store
	folders     *folderService
	properties  *propertyService
	visits      *visitService
	documents   *documentService
	links       *linkService
	itineraries *itineraryService
	dashboard   *dashboardService
}

func newFixture() *fixture {
	store := repository.NewMemoryStore()
	return newFixtureWithStore(store)
}

func newFixtureWithStore(store *repository.Store) *fixture {
	log := logger.Nop()
	f := &fixture{
		store:       store,
		folders:     NewFolderService(store, log).(*folderService),
		properties:  NewPropertyService(store, log).(*propertyService),
		visits:      NewVisitService(store, log).(*visitService),
		documents:   NewDocumentService(store, log).(*documentService),
		links:       NewLinkService(store, log).(*linkService),
		itineraries: NewItineraryService(store, log).(*itineraryService),
		dashboard:   NewDashboardService(store, log).(*dashboardService),
	}
	f.setNow(fixedNow)
	return f
}

func (f *fixture) setNow(t time.Time) {
	now := clockAt(t)
	f.folders.now = now
	f.properties.now = now
	f.visits.now = now
	f.documents.now = now
	f.links.now = now
	f.itineraries.now = now
	f.dashboard.now = now
}

func (f *fixture) folder(t *testing.T, userID, name string) *models.SearchFolder {
	t.Helper()
	folder, err := f.folders.Create(context.Background(), userID, FolderInput{
		Name:      name,
		StartDate: fixedNow.AddDate(0, 0, -10),
	})
	require.NoError(t, err)
	return folder
}

func (f *fixture) property(t *testing.T, userID, folderID, title string) *models.Property {
	t.Helper()
	p, err := f.properties.Create(context.Background(), userID, &models.Property{
		Title:  title,
		URL:    "https://listings.example/" + title,
		Status: models.PropertyWishlist,
		Rating: 3,
	}, folderID)
	require.NoError(t, err)
	return p
}

func (f *fixture) visit(t *testing.T, userID, propertyID string) *models.Visit {
	t.Helper()
	v, err := f.visits.Schedule(context.Background(), userID, VisitInput{
		PropertyID: propertyID,
		Date:       "2026-03-12",
		Time:       "10:30",
	})
	require.NoError(t, err)
	return v
}

// flakyProperties fails UpdateStatus as scripted and delegates everything
// else to the wrapped repository.
type flakyProperties struct {
	repository.PropertyRepository
	mock.Mock
}

func (f *flakyProperties) UpdateStatus(ctx context.Context, id string, status models.PropertyStatus) error {
	args := f.Called(id, status)
	if err := args.Error(0); err != nil {
		return err
	}
	return f.PropertyRepository.UpdateStatus(ctx, id, status)
}

// flakyVisits fails UpdateStatus as scripted and delegates everything
// else to the wrapped repository.
type flakyVisits struct {
	repository.VisitRepository
	mock.Mock
}

func (f *flakyVisits) UpdateStatus(ctx context.Context, id string, status models.VisitStatus) error {
	args := f.Called(id, status)
	if err := args.Error(0); err != nil {
		return err
	}
	return f.VisitRepository.UpdateStatus(ctx, id, status)
}
