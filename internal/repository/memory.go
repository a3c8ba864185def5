package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/stwalsh4118/acquire/internal/models"
)

// memoryBackend holds every table of the in-memory store behind one lock.
// Rows are copied on the way in and out so callers never share state with it.
type memoryBackend struct {
	mu          sync.RWMutex
	folders     map[string]models.SearchFolder
	shares      map[string]map[string]models.ShareRole
	properties  map[string]models.Property
	renovations map[string][]models.RenovationItem
	visits      map[string]models.Visit
	documents   map[string]models.PropertyDocument
	links       map[string]models.PendingLink
	itineraries map[string]models.SharedItinerary
	seq         map[string]int
	next        int
}

// NewMemoryStore returns a Store kept entirely in process memory. It is
// used for local runs without PostgreSQL and in tests.
func NewMemoryStore() *Store {
	b := &memoryBackend{
		folders:     map[string]models.SearchFolder{},
		shares:      map[string]map[string]models.ShareRole{},
		properties:  map[string]models.Property{},
		renovations: map[string][]models.RenovationItem{},
		visits:      map[string]models.Visit{},
		documents:   map[string]models.PropertyDocument{},
		links:       map[string]models.PendingLink{},
		itineraries: map[string]models.SharedItinerary{},
		seq:         map[string]int{},
	}
	return &Store{
		Folders:     &memFolders{b},
		Properties:  &memProperties{b},
		Visits:      &memVisits{b},
		Documents:   &memDocuments{b},
		Links:       &memLinks{b},
		Itineraries: &memItineraries{b},
	}
}

// stamp records insertion order, used to break CreatedAt ties.
func (b *memoryBackend) stamp(id string) {
	if _, ok := b.seq[id]; !ok {
		b.next++
		b.seq[id] = b.next
	}
}

func inSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

// Folders

type memFolders struct{ b *memoryBackend }

func (r *memFolders) ListForUser(_ context.Context, userID string) ([]models.SearchFolder, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	out := []models.SearchFolder{}
	for _, f := range r.b.folders {
		if _, shared := r.b.shares[f.ID][userID]; f.UserID == userID || shared {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return r.b.seq[out[i].ID] < r.b.seq[out[j].ID]
	})
	return out, nil
}

func (r *memFolders) Get(_ context.Context, id string) (*models.SearchFolder, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	f, ok := r.b.folders[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *memFolders) Create(_ context.Context, f *models.SearchFolder) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	r.b.folders[f.ID] = *f
	r.b.stamp(f.ID)
	return nil
}

func (r *memFolders) Update(_ context.Context, f *models.SearchFolder) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	existing, ok := r.b.folders[f.ID]
	if !ok {
		return ErrNotFound
	}
	updated := *f
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	r.b.folders[f.ID] = updated
	return nil
}

func (r *memFolders) Role(_ context.Context, folderID, userID string) (models.ShareRole, bool, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	f, ok := r.b.folders[folderID]
	if !ok {
		return "", false, nil
	}
	if f.UserID == userID {
		return models.RoleOwner, true, nil
	}
	role, ok := r.b.shares[folderID][userID]
	return role, ok, nil
}

func (r *memFolders) Share(_ context.Context, s *models.FolderShare) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if _, ok := r.b.folders[s.FolderID]; !ok {
		return ErrNotFound
	}
	if r.b.shares[s.FolderID] == nil {
		r.b.shares[s.FolderID] = map[string]models.ShareRole{}
	}
	r.b.shares[s.FolderID][s.UserID] = s.Role
	return nil
}

func (r *memFolders) CascadeImpact(_ context.Context, folderID string) (models.CascadeImpact, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	var impact models.CascadeImpact
	for _, p := range r.b.properties {
		if p.FolderID == folderID {
			impact.Properties++
		}
	}
	for _, v := range r.b.visits {
		if v.FolderID == folderID {
			impact.Visits++
		}
	}
	for _, d := range r.b.documents {
		if d.FolderID == folderID {
			impact.Documents++
		}
	}
	for _, l := range r.b.links {
		if l.FolderID == folderID {
			impact.PendingLinks++
		}
	}
	return impact, nil
}

func (r *memFolders) DeleteCascade(_ context.Context, folderID string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if _, ok := r.b.folders[folderID]; !ok {
		return ErrNotFound
	}

	for id, p := range r.b.properties {
		if p.FolderID == folderID {
			delete(r.b.properties, id)
			delete(r.b.renovations, id)
		}
	}
	for id, v := range r.b.visits {
		if v.FolderID == folderID {
			delete(r.b.visits, id)
		}
	}
	for id, d := range r.b.documents {
		if d.FolderID == folderID {
			delete(r.b.documents, id)
		}
	}
	for id, l := range r.b.links {
		if l.FolderID == folderID {
			delete(r.b.links, id)
		}
	}
	for token, it := range r.b.itineraries {
		if it.FolderID == folderID {
			delete(r.b.itineraries, token)
		}
	}
	delete(r.b.shares, folderID)
	delete(r.b.folders, folderID)
	return nil
}

// Properties

type memProperties struct{ b *memoryBackend }

func (r *memProperties) materialize(p models.Property) models.Property {
	p.Images = cloneStrings(p.Images)
	p.RenovationCosts = append([]models.RenovationItem{}, r.b.renovations[p.ID]...)
	return p
}

func (r *memProperties) ListByFolders(_ context.Context, folderIDs []string) ([]models.Property, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	set := inSet(folderIDs)
	out := []models.Property{}
	for _, p := range r.b.properties {
		if set[p.FolderID] {
			out = append(out, r.materialize(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.b.seq[out[i].ID] > r.b.seq[out[j].ID]
	})
	return out, nil
}

func (r *memProperties) Get(_ context.Context, id string) (*models.Property, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	p, ok := r.b.properties[id]
	if !ok {
		return nil, nil
	}
	out := r.materialize(p)
	return &out, nil
}

func (r *memProperties) Create(_ context.Context, p *models.Property) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	stored := *p
	stored.Images = cloneStrings(p.Images)
	stored.RenovationCosts = nil
	r.b.properties[p.ID] = stored
	r.b.renovations[p.ID] = ownedItems(p.ID, p.RenovationCosts)
	r.b.stamp(p.ID)
	return nil
}

func (r *memProperties) Update(_ context.Context, p *models.Property) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	existing, ok := r.b.properties[p.ID]
	if !ok {
		return ErrNotFound
	}
	stored := *p
	stored.Images = cloneStrings(p.Images)
	stored.RenovationCosts = nil
	stored.CreatedAt = existing.CreatedAt
	r.b.properties[p.ID] = stored
	r.b.renovations[p.ID] = ownedItems(p.ID, p.RenovationCosts)
	return nil
}

func (r *memProperties) UpdateStatus(_ context.Context, id string, status models.PropertyStatus) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	p, ok := r.b.properties[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	r.b.properties[id] = p
	return nil
}

func (r *memProperties) ReplaceRenovations(_ context.Context, propertyID string, items []models.RenovationItem) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if _, ok := r.b.properties[propertyID]; !ok {
		return ErrNotFound
	}
	r.b.renovations[propertyID] = ownedItems(propertyID, items)
	return nil
}

func ownedItems(propertyID string, items []models.RenovationItem) []models.RenovationItem {
	out := make([]models.RenovationItem, 0, len(items))
	for _, item := range items {
		item.PropertyID = propertyID
		out = append(out, item)
	}
	return out
}

func (r *memProperties) Delete(_ context.Context, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if _, ok := r.b.properties[id]; !ok {
		return ErrNotFound
	}
	delete(r.b.properties, id)
	delete(r.b.renovations, id)
	return nil
}

// Visits

type memVisits struct{ b *memoryBackend }

func cloneVisit(v models.Visit) models.Visit {
	v.Checklist = append([]models.ChecklistItem{}, v.Checklist...)
	v.Photos = cloneStrings(v.Photos)
	return v
}

func (r *memVisits) ListByFolders(_ context.Context, folderIDs []string) ([]models.Visit, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	set := inSet(folderIDs)
	out := []models.Visit{}
	for _, v := range r.b.visits {
		if set[v.FolderID] {
			out = append(out, cloneVisit(v))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return r.b.seq[out[i].ID] < r.b.seq[out[j].ID]
	})
	return out, nil
}

func (r *memVisits) Get(_ context.Context, id string) (*models.Visit, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	v, ok := r.b.visits[id]
	if !ok {
		return nil, nil
	}
	out := cloneVisit(v)
	return &out, nil
}

func (r *memVisits) Create(_ context.Context, v *models.Visit) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	r.b.visits[v.ID] = cloneVisit(*v)
	r.b.stamp(v.ID)
	return nil
}

func (r *memVisits) Update(_ context.Context, v *models.Visit) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	existing, ok := r.b.visits[v.ID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneVisit(*v)
	updated.FolderID = existing.FolderID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	r.b.visits[v.ID] = updated
	return nil
}

func (r *memVisits) UpdateStatus(_ context.Context, id string, status models.VisitStatus) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	v, ok := r.b.visits[id]
	if !ok {
		return ErrNotFound
	}
	v.Status = status
	r.b.visits[id] = v
	return nil
}

func (r *memVisits) Delete(_ context.Context, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if _, ok := r.b.visits[id]; !ok {
		return ErrNotFound
	}
	delete(r.b.visits, id)
	return nil
}

// Documents

type memDocuments struct{ b *memoryBackend }

func (r *memDocuments) ListByFolders(_ context.Context, folderIDs []string) ([]models.PropertyDocument, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	set := inSet(folderIDs)
	out := []models.PropertyDocument{}
	for _, d := range r.b.documents {
		if set[d.FolderID] {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.b.seq[out[i].ID] > r.b.seq[out[j].ID]
	})
	return out, nil
}

func (r *memDocuments) Get(_ context.Context, id string) (*models.PropertyDocument, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	d, ok := r.b.documents[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memDocuments) Create(_ context.Context, d *models.PropertyDocument) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	r.b.documents[d.ID] = *d
	r.b.stamp(d.ID)
	return nil
}

func (r *memDocuments) Delete(_ context.Context, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if _, ok := r.b.documents[id]; !ok {
		return ErrNotFound
	}
	delete(r.b.documents, id)
	return nil
}

// Pending links

type memLinks struct{ b *memoryBackend }

func (r *memLinks) ListForUser(_ context.Context, userID, folderID string) ([]models.PendingLink, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	out := []models.PendingLink{}
	for _, l := range r.b.links {
		if l.UserID == userID && (folderID == "" || l.FolderID == folderID) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return r.b.seq[out[i].ID] < r.b.seq[out[j].ID]
	})
	return out, nil
}

func (r *memLinks) Get(_ context.Context, id string) (*models.PendingLink, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	l, ok := r.b.links[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *memLinks) Create(_ context.Context, l *models.PendingLink) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	r.b.links[l.ID] = *l
	r.b.stamp(l.ID)
	return nil
}

func (r *memLinks) Delete(_ context.Context, id string) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	if _, ok := r.b.links[id]; !ok {
		return ErrNotFound
	}
	delete(r.b.links, id)
	return nil
}

// Itineraries

type memItineraries struct{ b *memoryBackend }

func (r *memItineraries) Create(_ context.Context, it *models.SharedItinerary) error {
	r.b.mu.Lock()
	defer r.b.mu.Unlock()

	stored := *it
	stored.VisitIDs = cloneStrings(it.VisitIDs)
	r.b.itineraries[it.Token] = stored
	return nil
}

func (r *memItineraries) GetByToken(_ context.Context, token string) (*models.SharedItinerary, error) {
	r.b.mu.RLock()
	defer r.b.mu.RUnlock()

	it, ok := r.b.itineraries[token]
	if !ok {
		return nil, nil
	}
	it.VisitIDs = cloneStrings(it.VisitIDs)
	return &it, nil
}
