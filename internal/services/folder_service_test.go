package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/acquire/internal/models"
)

func TestCreateFolder_Defaults(t *testing.T) {
	f := newFixture()

	folder, err := f.folders.Create(context.Background(), "u-1", FolderInput{Name: "  Palermo PH  "})

	require.NoError(t, err)
	assert.Equal(t, "Palermo PH", folder.Name)
	assert.Equal(t, models.FolderOpen, folder.Status)
	assert.Equal(t, models.TransactionPurchase, folder.TransactionType)
	assert.Equal(t, fixedNow, folder.StartDate)
	assert.Equal(t, fixedNow, folder.StatusUpdatedAt)
	assert.Equal(t, "u-1", folder.UserID)
}

func TestCreateFolder_Rejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.folders.Create(ctx, "u-1", FolderInput{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.folders.Create(ctx, "u-1", FolderInput{Name: "x", Status: "Vendida"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.folders.Create(ctx, "u-1", FolderInput{Name: "x", TransactionType: "Permuta"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateFolder_StatusTouchOnlyOnChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	folder := f.folder(t, "u-1", "A")
	created := folder.StatusUpdatedAt

	later := fixedNow.Add(48 * time.Hour)
	f.setNow(later)

	same := models.FolderOpen
	budget := 200000.0
	updated, err := f.folders.Update(ctx, "u-1", folder.ID, FolderPatch{Status: &same, Budget: &budget})
	require.NoError(t, err)
	assert.Equal(t, created, updated.StatusUpdatedAt)
	assert.Equal(t, 200000.0, updated.Budget)

	stored, err := f.store.Folders.Get(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored.StatusUpdatedAt)

	closed := models.FolderClosed
	updated, err = f.folders.Update(ctx, "u-1", folder.ID, FolderPatch{Status: &closed})
	require.NoError(t, err)
	assert.Equal(t, later.UTC(), updated.StatusUpdatedAt)
	assert.Equal(t, models.FolderClosed, updated.Status)

	stored, err = f.store.Folders.Get(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, later.UTC(), stored.StatusUpdatedAt)
}

func TestUpdateFolder_NameOnlyLeavesStatusTimestamp(t *testing.T) {
	f := newFixture()
	folder := f.folder(t, "u-1", "A")
	f.setNow(fixedNow.Add(time.Hour))

	name := "Renamed"
	updated, err := f.folders.Update(context.Background(), "u-1", folder.ID, FolderPatch{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, folder.StatusUpdatedAt, updated.StatusUpdatedAt)
}

func TestDeleteFolder_RequiresConfirmation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.folder(t, "u-1", "A")
	p := f.property(t, "u-1", a.ID, "p1")
	f.visit(t, "u-1", p.ID)

	impact, err := f.folders.Delete(ctx, "u-1", a.ID, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	var confirm *ConfirmationError
	require.True(t, errors.As(err, &confirm))
	assert.Equal(t, 1, confirm.Impact.Properties)
	assert.Equal(t, 1, impact.Visits)

	stillThere, err := f.store.Folders.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(t, stillThere)
}

func TestDeleteFolder_CascadeLeavesOtherFolders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.folder(t, "u-1", "A")
	b := f.folder(t, "u-1", "B")
	p1 := f.property(t, "u-1", a.ID, "p1")
	f.property(t, "u-1", a.ID, "p2")
	p3 := f.property(t, "u-1", b.ID, "p3")
	f.visit(t, "u-1", p1.ID)
	f.visit(t, "u-1", p3.ID)
	_, err := f.links.Submit(ctx, "u-1", a.ID, []string{"https://portal.example/1"})
	require.NoError(t, err)
	_, err = f.documents.Create(ctx, "u-1", DocumentInput{FolderID: a.ID, Name: "deed", FileURL: "https://files.example/deed.pdf"})
	require.NoError(t, err)

	impact, err := f.folders.Delete(ctx, "u-1", a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.CascadeImpact{Properties: 2, Visits: 1, Documents: 1, PendingLinks: 1}, impact)

	props, err := f.properties.List(ctx, "u-1", filterAll)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, p3.ID, props[0].ID)

	visits, err := f.visits.List(ctx, "u-1", "")
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, p3.ID, visits[0].PropertyID)

	links, err := f.links.List(ctx, "u-1", "")
	require.NoError(t, err)
	assert.Empty(t, links)

	docs, err := f.documents.List(ctx, "u-1", "", "")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDeleteFolder_OnlyOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.folder(t, "owner", "A")
	require.NoError(t, f.folders.Share(ctx, "owner", a.ID, "editor", models.RoleEditor))

	_, err := f.folders.Delete(ctx, "editor", a.ID, true)
	assert.ErrorIs(t, err, ErrReadOnly)

	_, err = f.folders.Delete(ctx, "stranger", a.ID, true)
	assert.ErrorIs(t, err, ErrFolderAccess)

	_, err = f.folders.Delete(ctx, "owner", "missing", true)
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestListSummaries_Metrics(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.folder(t, "u-1", "A")
	f.folder(t, "u-1", "Empty")
	p1 := f.property(t, "u-1", a.ID, "p1")
	p2 := f.property(t, "u-1", a.ID, "p2")
	_, err := f.properties.UpdateStatus(ctx, "u-1", p2.ID, models.PropertyDiscarded)
	require.NoError(t, err)
	f.visit(t, "u-1", p1.ID)
	f.visit(t, "u-1", p1.ID)

	summaries, err := f.folders.ListSummaries(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "A", summaries[0].Name)
	assert.Equal(t, 10, summaries[0].DaysElapsed)
	assert.Equal(t, 2, summaries[0].PropertyCount)
	assert.Equal(t, 1, summaries[0].ActiveAssets)
	assert.Equal(t, 2, summaries[0].VisitCount)

	assert.Equal(t, 0, summaries[1].PropertyCount)
}

func TestShare_ViewerCannotWrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.folder(t, "owner", "A")
	require.NoError(t, f.folders.Share(ctx, "owner", a.ID, "viewer", models.RoleViewer))

	got, err := f.folders.Get(ctx, "viewer", a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	name := "hijack"
	_, err = f.folders.Update(ctx, "viewer", a.ID, FolderPatch{Name: &name})
	assert.ErrorIs(t, err, ErrReadOnly)

	err = f.folders.Share(ctx, "viewer", a.ID, "other", models.RoleEditor)
	assert.ErrorIs(t, err, ErrReadOnly)

	err = f.folders.Share(ctx, "owner", a.ID, "owner", models.RoleEditor)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
