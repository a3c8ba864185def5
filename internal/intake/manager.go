// Package intake turns pending links into properties through an editable,
// validated draft.
package intake

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stwalsh4118/acquire/internal/extraction"
	"github.com/stwalsh4118/acquire/internal/geocoding"
	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/metadata"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/services"
)

// ListingExtractor reads structured fields out of a listing URL.
type ListingExtractor interface {
	Extract(ctx context.Context, url, description string) (*extraction.Listing, error)
}

// MetadataSource returns a title and screenshot for a URL. Fetch never
// fails; FallbackScreenshot is computed without any request.
type MetadataSource interface {
	Fetch(ctx context.Context, url string) metadata.Metadata
	FallbackScreenshot(url string) string
}

// Deps are the collaborators a Manager drives.
type Deps struct {
	Properties services.PropertyService
	Links      services.LinkService
	Extractor  ListingExtractor
	Metadata   MetadataSource
	Checker    geocoding.Checker
}

// Options tune a Manager. Zero values fall back to defaults.
type Options struct {
	Debounce   time.Duration
	SessionTTL time.Duration
	Clock      geocoding.Clock
}

const (
	defaultDebounce   = time.Second
	defaultSessionTTL = 2 * time.Hour
)

// Manager owns the live intake sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	deps Deps
	opts Options
	log  *logger.Logger
	now  func() time.Time
}

// NewManager creates a Manager.
func NewManager(deps Deps, opts Options, log *logger.Logger) *Manager {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.Clock == nil {
		opts.Clock = geocoding.RealClock()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
		opts:     opts,
		log:      log.WithComponent("intake"),
		now:      time.Now,
	}
}

// newSession builds an unregistered session; register it once its fields
// are set.
func (m *Manager) newSession(userID string) *Session {
	id := uuid.NewString()
	s := &Session{
		id:         id,
		userID:     userID,
		draft:      newDraft(),
		updatedAt:  m.now(),
		properties: m.deps.Properties,
		links:      m.deps.Links,
		log:        m.log.With(logger.Fields{"session_id": id, "user_id": userID}),
		now:        m.now,
	}
	s.debouncer = geocoding.NewDebouncer(m.deps.Checker, m.opts.Debounce, m.opts.Clock, s.onValidated)
	return s
}

func (m *Manager) register(s *Session) {
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
}

// Start opens a session for one of the user's pending links. In ai mode
// the extractor runs first; an extraction failure falls back to manual mode
// and marks the draft degraded. The returned session is always in verify.
// Its image starts as the generated screenshot and the page preview is
// filled in by a background fetch.
func (m *Manager) Start(ctx context.Context, userID, linkID string, mode Mode) (*Session, error) {
	if mode != ModeAI && mode != ModeManual {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	link, err := m.deps.Links.Get(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}

	previewCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := m.newSession(userID)
	s.linkID = link.ID
	s.state = StateProcessing
	s.mode = mode
	s.cancelPreview = cancel
	s.previewDone = make(chan struct{})
	m.register(s)

	var (
		listing    *extraction.Listing
		extractErr error
	)
	if mode == ModeAI {
		if m.deps.Extractor == nil {
			extractErr = extraction.ErrExtractionDisabled
		} else {
			listing, extractErr = m.deps.Extractor.Extract(ctx, link.URL, "")
		}
	}

	d := newDraft()
	d.Property = models.Property{
		FolderID: link.FolderID,
		URL:      link.URL,
		Status:   models.PropertyWishlist,
		Rating:   models.MinRating,
		Images:   []string{m.deps.Metadata.FallbackScreenshot(link.URL)},
	}
	d.mark(fieldURL, ProvenanceStored)
	d.mark(fieldFolder, ProvenanceStored)
	d.mark(fieldImages, ProvenanceMetadata)
	d.ImageLoading = true

	effective := mode
	if mode == ModeAI {
		if extractErr != nil {
			effective = ModeManual
			d.Degraded = true
			s.log.Warn("Listing extraction failed, continuing manually", logger.Fields{
				"link_id": link.ID,
				"error":   extractErr.Error(),
			})
		} else if listing != nil {
			applyListing(&d, listing)
		}
	}
	if d.Property.Title == "" {
		d.Property.Title = placeholderTitle(link.URL)
	}

	if existing, err := m.deps.Properties.ListFolder(ctx, userID, link.FolderID); err != nil {
		s.log.Warn("Duplicate check skipped", logger.Fields{"error": err.Error()})
	} else {
		d.Duplicates = FindDuplicates(d.Property, existing)
	}

	if err := s.enterVerify(d, effective); err != nil {
		cancel()
		return nil, err
	}
	go s.loadPreview(previewCtx, link.URL, link.FolderID, m.deps.Metadata)

	s.log.Info("Intake started", logger.Fields{
		"link_id":    link.ID,
		"mode":       effective,
		"degraded":   d.Degraded,
		"duplicates": len(d.Duplicates),
	})
	return s, nil
}

// StartEdit opens a verify session on a stored property. Committing it
// updates the property and never touches the link inbox.
func (m *Manager) StartEdit(ctx context.Context, userID, propertyID string) (*Session, error) {
	p, err := m.deps.Properties.Get(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}

	s := m.newSession(userID)
	s.propertyID = p.ID
	s.mode = ModeManual
	s.state = StateProcessing
	m.register(s)

	d := draftFromProperty(*p)
	if existing, err := m.deps.Properties.ListFolder(ctx, userID, p.FolderID); err == nil {
		d.Duplicates = FindDuplicates(d.Property, existing)
	}
	if err := s.enterVerify(d, ModeManual); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the user's session.
func (m *Manager) Get(userID, sessionID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok || s.userID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Edit applies a patch to the user's session.
func (m *Manager) Edit(userID, sessionID string, p Patch) (View, error) {
	s, err := m.Get(userID, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.Edit(p)
}

// Commit commits the user's session and forgets it on success.
func (m *Manager) Commit(ctx context.Context, userID, sessionID string, opts CommitOptions) (*models.Property, error) {
	s, err := m.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := s.Commit(ctx, opts)
	if err != nil {
		return nil, err
	}
	m.forget(sessionID)
	return p, nil
}

// Abandon abandons the user's session and forgets it.
func (m *Manager) Abandon(userID, sessionID string) error {
	s, err := m.Get(userID, sessionID)
	if err != nil {
		return err
	}
	if err := s.Abandon(); err != nil {
		return err
	}
	m.forget(sessionID)
	return nil
}

func (m *Manager) forget(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap abandons sessions idle for longer than the session TTL, drops
// terminal ones, and returns how many were removed.
func (m *Manager) Reap() int {
	cutoff := m.now().Add(-m.opts.SessionTTL)

	m.mu.Lock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.mu.Unlock()

	removed := 0
	for _, s := range candidates {
		if !s.State().Terminal() {
			if !s.lastActive().Before(cutoff) {
				continue
			}
			if err := s.Abandon(); err != nil && !errors.Is(err, ErrInvalidTransition) {
				continue
			}
			s.log.Info("Intake session expired", nil)
		}
		m.forget(s.id)
		removed++
	}
	return removed
}

// Run reaps expired sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := m.opts.SessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Reap(); n > 0 {
				m.log.Debug("Reaped intake sessions", logger.Fields{"count": n})
			}
		}
	}
}

// Close abandons every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		_ = s.Abandon()
	}
}

func applyListing(d *Draft, l *extraction.Listing) {
	p := &d.Property
	if l.Title = strings.TrimSpace(l.Title); l.Title != "" {
		p.Title = l.Title
		d.mark(fieldTitle, ProvenanceAI)
	}
	if l.Location = strings.TrimSpace(l.Location); l.Location != "" {
		p.Address = l.Location
		d.mark(fieldAddress, ProvenanceAI)
	}
	if l.Price > 0 {
		p.Price = float64(l.Price)
		d.mark(fieldPrice, ProvenanceAI)
	}
	if l.Rooms > 0 {
		p.Rooms = int(l.Rooms)
		d.mark(fieldRooms, ProvenanceAI)
	}
	if l.Bathrooms > 0 {
		p.Bathrooms = int(l.Bathrooms)
		d.mark(fieldBathrooms, ProvenanceAI)
	}
	if l.Sqft > 0 {
		p.Sqft = float64(l.Sqft)
		d.mark(fieldSqft, ProvenanceAI)
	}
	d.Analysis = &Analysis{
		DealScore: float64(l.DealScore),
		Pros:      l.Analysis.Pros,
		Cons:      l.Analysis.Cons,
		Strategy:  l.Analysis.Strategy,
	}
}

// applyMetadata fills preview fields the user has not set.
func applyMetadata(d *Draft, meta metadata.Metadata) {
	p := &d.Property
	if title := strings.TrimSpace(meta.Title); title != "" && d.ProvenanceOf(fieldTitle) == ProvenanceEmpty {
		p.Title = title
		d.mark(fieldTitle, ProvenanceMetadata)
	}
	if meta.Screenshot != "" && d.ProvenanceOf(fieldImages) != ProvenanceUser {
		p.Images = []string{meta.Screenshot}
		d.mark(fieldImages, ProvenanceMetadata)
	}
	if p.Notes == "" && meta.Description != "" && d.ProvenanceOf(fieldNotes) == ProvenanceEmpty {
		p.Notes = meta.Description
		d.mark(fieldNotes, ProvenanceMetadata)
	}
}

// placeholderTitle names a listing after its host when nothing better is
// known.
func placeholderTitle(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "Untitled listing"
	}
	return "Listing on " + strings.TrimPrefix(u.Hostname(), "www.")
}
