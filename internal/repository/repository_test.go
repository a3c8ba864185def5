package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/acquire/internal/config"
	"github.com/stwalsh4118/acquire/internal/database"
	"github.com/stwalsh4118/acquire/internal/models"
)

// backends returns every Store implementation available to the test run.
// PostgreSQL is included only when a database answers.
func backends(t *testing.T) map[string]func(t *testing.T) *Store {
	return map[string]func(t *testing.T) *Store{
		"memory":   func(t *testing.T) *Store { return NewMemoryStore() },
		"postgres": postgresStoreOrSkip,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func postgresStoreOrSkip(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "acquire_test"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  1,
		PoolMax:  5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := database.NewPostgresPool(ctx, cfg)
	if err != nil {
		t.Skipf("Skipping integration test, database unavailable: %v", err)
	}
	t.Cleanup(db.Close)

	mg, err := database.NewMigrator(cfg)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	_, err = db.Pool.Exec(context.Background(), `TRUNCATE
		shared_itineraries, link_inbox, documents, visits, renovations,
		properties, folder_shares, folders`)
	require.NoError(t, err)

	return NewPostgresStore(db)
}

// base is a fixed instant with microsecond precision so PostgreSQL
// round-trips compare equal.
var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFolder(userID, name string, offset time.Duration) *models.SearchFolder {
	return &models.SearchFolder{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		Status:          models.FolderOpen,
		TransactionType: models.TransactionPurchase,
		Budget:          150000,
		StartDate:       base,
		StatusUpdatedAt: base,
		CreatedAt:       base.Add(offset),
	}
}

func newProperty(folderID, title string, offset time.Duration) *models.Property {
	return &models.Property{
		ID:        uuid.NewString(),
		FolderID:  folderID,
		Title:     title,
		URL:       "https://listings.example/" + title,
		Address:   "Palermo",
		Status:    models.PropertyWishlist,
		Rating:    3,
		Images:    []string{"https://img.example/" + title + ".jpg"},
		CreatedAt: base.Add(offset),
	}
}

func newVisit(folderID, propertyID, date string) *models.Visit {
	return &models.Visit{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		FolderID:   folderID,
		UserID:     "u-1",
		Date:       date,
		Time:       "10:00",
		Status:     models.VisitScheduled,
		Checklist:  []models.ChecklistItem{{Task: "Check humidity"}},
		CreatedAt:  base,
	}
}

func TestFolders_ListForUserIncludesShared(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			own := newFolder("u-1", "Own", 0)
			shared := newFolder("u-2", "Shared", time.Hour)
			other := newFolder("u-2", "Other", 2*time.Hour)
			for _, f := range []*models.SearchFolder{shared, own, other} {
				require.NoError(t, store.Folders.Create(ctx, f))
			}
			require.NoError(t, store.Folders.Share(ctx, &models.FolderShare{
				FolderID: shared.ID, UserID: "u-1", Role: models.RoleEditor, CreatedAt: base,
			}))

			folders, err := store.Folders.ListForUser(ctx, "u-1")
			require.NoError(t, err)
			require.Len(t, folders, 2)
			assert.Equal(t, own.ID, folders[0].ID)
			assert.Equal(t, shared.ID, folders[1].ID)

			role, ok, err := store.Folders.Role(ctx, shared.ID, "u-1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, models.RoleEditor, role)

			role, ok, err = store.Folders.Role(ctx, own.ID, "u-1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, models.RoleOwner, role)

			_, ok, err = store.Folders.Role(ctx, other.ID, "u-1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFolders_GetMissingReturnsNil(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			folder, err := store.Folders.Get(context.Background(), "missing")
			require.NoError(t, err)
			assert.Nil(t, folder)
		})
	}
}

func TestFolders_UpdateMissingIsNotFound(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			err := store.Folders.Update(context.Background(), newFolder("u-1", "ghost", 0))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFolders_DeleteCascade(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			a := newFolder("u-1", "A", 0)
			b := newFolder("u-1", "B", time.Minute)
			require.NoError(t, store.Folders.Create(ctx, a))
			require.NoError(t, store.Folders.Create(ctx, b))

			p1 := newProperty(a.ID, "p1", 0)
			p1.RenovationCosts = []models.RenovationItem{{ID: uuid.NewString(), Category: "Kitchen", EstimatedCost: 5000}}
			p2 := newProperty(a.ID, "p2", time.Second)
			p3 := newProperty(b.ID, "p3", 0)
			for _, p := range []*models.Property{p1, p2, p3} {
				require.NoError(t, store.Properties.Create(ctx, p))
			}
			require.NoError(t, store.Visits.Create(ctx, newVisit(a.ID, p1.ID, "2026-03-10")))
			require.NoError(t, store.Visits.Create(ctx, newVisit(b.ID, p3.ID, "2026-03-11")))
			require.NoError(t, store.Documents.Create(ctx, &models.PropertyDocument{
				ID: uuid.NewString(), FolderID: a.ID, Name: "deed.pdf", Category: models.DocumentLegal, CreatedAt: base,
			}))
			require.NoError(t, store.Links.Create(ctx, &models.PendingLink{
				ID: uuid.NewString(), URL: "https://x.example/1", FolderID: a.ID, UserID: "u-1", CreatedAt: base,
			}))

			impact, err := store.Folders.CascadeImpact(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, models.CascadeImpact{Properties: 2, Visits: 1, Documents: 1, PendingLinks: 1}, impact)

			require.NoError(t, store.Folders.DeleteCascade(ctx, a.ID))

			folders, err := store.Folders.ListForUser(ctx, "u-1")
			require.NoError(t, err)
			require.Len(t, folders, 1)
			assert.Equal(t, b.ID, folders[0].ID)

			props, err := store.Properties.ListByFolders(ctx, []string{a.ID, b.ID})
			require.NoError(t, err)
			require.Len(t, props, 1)
			assert.Equal(t, p3.ID, props[0].ID)

			visits, err := store.Visits.ListByFolders(ctx, []string{a.ID, b.ID})
			require.NoError(t, err)
			require.Len(t, visits, 1)
			assert.Equal(t, b.ID, visits[0].FolderID)

			docs, err := store.Documents.ListByFolders(ctx, []string{a.ID})
			require.NoError(t, err)
			assert.Empty(t, docs)

			links, err := store.Links.ListForUser(ctx, "u-1", "")
			require.NoError(t, err)
			assert.Empty(t, links)

			assert.ErrorIs(t, store.Folders.DeleteCascade(ctx, a.ID), ErrNotFound)
		})
	}
}

func TestProperties_NewestFirstWithRenovations(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			f := newFolder("u-1", "A", 0)
			require.NoError(t, store.Folders.Create(ctx, f))

			older := newProperty(f.ID, "older", 0)
			newer := newProperty(f.ID, "newer", time.Hour)
			newer.RenovationCosts = []models.RenovationItem{
				{ID: uuid.NewString(), Category: "Bath", EstimatedCost: 1200},
				{ID: uuid.NewString(), Category: "Paint", EstimatedCost: 800},
			}
			require.NoError(t, store.Properties.Create(ctx, older))
			require.NoError(t, store.Properties.Create(ctx, newer))

			props, err := store.Properties.ListByFolders(ctx, []string{f.ID})
			require.NoError(t, err)
			require.Len(t, props, 2)
			assert.Equal(t, "newer", props[0].Title)
			assert.Len(t, props[0].RenovationCosts, 2)
			assert.Equal(t, 2000.0, props[0].RenovationTotal())
			assert.Empty(t, props[1].RenovationCosts)

			none, err := store.Properties.ListByFolders(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestProperties_ReplaceRenovationsIsFullReplace(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			f := newFolder("u-1", "A", 0)
			require.NoError(t, store.Folders.Create(ctx, f))
			p := newProperty(f.ID, "p", 0)
			p.RenovationCosts = []models.RenovationItem{
				{ID: uuid.NewString(), Category: "Roof", EstimatedCost: 9000},
				{ID: uuid.NewString(), Category: "Floor", EstimatedCost: 3000},
			}
			require.NoError(t, store.Properties.Create(ctx, p))

			replacement := []models.RenovationItem{{ID: uuid.NewString(), Category: "Windows", EstimatedCost: 400}}
			require.NoError(t, store.Properties.ReplaceRenovations(ctx, p.ID, replacement))

			got, err := store.Properties.Get(ctx, p.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Len(t, got.RenovationCosts, 1)
			assert.Equal(t, "Windows", got.RenovationCosts[0].Category)
			assert.Equal(t, p.ID, got.RenovationCosts[0].PropertyID)

			require.NoError(t, store.Properties.ReplaceRenovations(ctx, p.ID, nil))
			got, err = store.Properties.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Empty(t, got.RenovationCosts)

			assert.ErrorIs(t, store.Properties.ReplaceRenovations(ctx, "missing", replacement), ErrNotFound)
		})
	}
}

func TestProperties_UpdateAndStatus(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			f := newFolder("u-1", "A", 0)
			require.NoError(t, store.Folders.Create(ctx, f))
			p := newProperty(f.ID, "p", 0)
			require.NoError(t, store.Properties.Create(ctx, p))

			exact := "Av. Santa Fe 1234, Palermo, Buenos Aires"
			p.ExactAddress = &exact
			p.Location = &models.GeoPoint{Lng: -58.41, Lat: -34.59}
			p.Price = 120000
			require.NoError(t, store.Properties.Update(ctx, p))
			require.NoError(t, store.Properties.UpdateStatus(ctx, p.ID, models.PropertyVisited))

			got, err := store.Properties.Get(ctx, p.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.HasExactAddress())
			assert.Equal(t, exact, *got.ExactAddress)
			require.NotNil(t, got.Location)
			assert.InDelta(t, -34.59, got.Location.Lat, 1e-9)
			assert.Equal(t, 120000.0, got.Price)
			assert.Equal(t, models.PropertyVisited, got.Status)

			assert.ErrorIs(t, store.Properties.UpdateStatus(ctx, "missing", models.PropertyVisited), ErrNotFound)
		})
	}
}

func TestProperties_UpdateReplacesRenovations(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			f := newFolder("u-1", "A", 0)
			require.NoError(t, store.Folders.Create(ctx, f))
			p := newProperty(f.ID, "p", 0)
			p.RenovationCosts = []models.RenovationItem{{ID: uuid.NewString(), Category: "Roof", EstimatedCost: 9000}}
			require.NoError(t, store.Properties.Create(ctx, p))

			p.Price = 99000
			p.RenovationCosts = []models.RenovationItem{{ID: uuid.NewString(), Category: "Kitchen", EstimatedCost: 4500}}
			require.NoError(t, store.Properties.Update(ctx, p))

			got, err := store.Properties.Get(ctx, p.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, 99000.0, got.Price)
			require.Len(t, got.RenovationCosts, 1)
			assert.Equal(t, "Kitchen", got.RenovationCosts[0].Category)
		})
	}
}

func TestProperties_FailedRenovationWriteKeepsFields(t *testing.T) {
	store := postgresStoreOrSkip(t)
	ctx := context.Background()

	f := newFolder("u-1", "A", 0)
	require.NoError(t, store.Folders.Create(ctx, f))
	p := newProperty(f.ID, "p", 0)
	p.Price = 100000
	require.NoError(t, store.Properties.Create(ctx, p))

	dup := uuid.NewString()
	changed := *p
	changed.Price = 50000
	changed.RenovationCosts = []models.RenovationItem{
		{ID: dup, Category: "Roof", EstimatedCost: 1},
		{ID: dup, Category: "Floor", EstimatedCost: 2},
	}
	require.Error(t, store.Properties.Update(ctx, &changed))

	got, err := store.Properties.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 100000.0, got.Price)
	assert.Empty(t, got.RenovationCosts)
}

func TestProperties_DeleteLeavesVisits(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			f := newFolder("u-1", "A", 0)
			require.NoError(t, store.Folders.Create(ctx, f))
			p := newProperty(f.ID, "p", 0)
			require.NoError(t, store.Properties.Create(ctx, p))
			v := newVisit(f.ID, p.ID, "2026-04-01")
			require.NoError(t, store.Visits.Create(ctx, v))

			require.NoError(t, store.Properties.Delete(ctx, p.ID))
			assert.ErrorIs(t, store.Properties.Delete(ctx, p.ID), ErrNotFound)

			got, err := store.Visits.Get(ctx, v.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, p.ID, got.PropertyID)
		})
	}
}

func TestVisits_OrderedByDateAndTime(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			for i, date := range []string{"2026-05-03", "2026-05-01", "2026-05-02"} {
				v := newVisit("f-1", fmt.Sprintf("p-%d", i), date)
				require.NoError(t, store.Visits.Create(ctx, v))
			}

			visits, err := store.Visits.ListByFolders(ctx, []string{"f-1"})
			require.NoError(t, err)
			require.Len(t, visits, 3)
			assert.Equal(t, "2026-05-01", visits[0].Date)
			assert.Equal(t, "2026-05-03", visits[2].Date)
			assert.Len(t, visits[0].Checklist, 1)
		})
	}
}

func TestVisits_UpdateStatus(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			v := newVisit("f-1", "p-1", "2026-05-01")
			require.NoError(t, store.Visits.Create(ctx, v))
			require.NoError(t, store.Visits.UpdateStatus(ctx, v.ID, models.VisitCompleted))

			got, err := store.Visits.Get(ctx, v.ID)
			require.NoError(t, err)
			assert.Equal(t, models.VisitCompleted, got.Status)

			assert.ErrorIs(t, store.Visits.UpdateStatus(ctx, "missing", models.VisitCompleted), ErrNotFound)
		})
	}
}

func TestLinks_FilterByFolder(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			for i, folderID := range []string{"f-1", "f-2", "f-1"} {
				require.NoError(t, store.Links.Create(ctx, &models.PendingLink{
					ID:        uuid.NewString(),
					URL:       "https://same.example/listing",
					FolderID:  folderID,
					UserID:    "u-1",
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}))
			}

			all, err := store.Links.ListForUser(ctx, "u-1", "")
			require.NoError(t, err)
			assert.Len(t, all, 3)

			scoped, err := store.Links.ListForUser(ctx, "u-1", "f-1")
			require.NoError(t, err)
			assert.Len(t, scoped, 2)

			require.NoError(t, store.Links.Delete(ctx, all[0].ID))
			assert.ErrorIs(t, store.Links.Delete(ctx, all[0].ID), ErrNotFound)
		})
	}
}

func TestItineraries_GetByToken(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			ctx := context.Background()

			it := &models.SharedItinerary{
				ID:         uuid.NewString(),
				FolderID:   "f-1",
				Token:      "tok-123",
				ClientName: "Ana",
				VisitIDs:   []string{"v-1", "v-2"},
				CreatedAt:  base,
			}
			require.NoError(t, store.Itineraries.Create(ctx, it))

			got, err := store.Itineraries.GetByToken(ctx, "tok-123")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, []string{"v-1", "v-2"}, got.VisitIDs)
			assert.Nil(t, got.ExpiresAt)

			missing, err := store.Itineraries.GetByToken(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p := newProperty("f-1", "p", 0)
	require.NoError(t, store.Properties.Create(ctx, p))

	got, err := store.Properties.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Images[0] = "mutated"

	again, err := store.Properties.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Images[0])
}
