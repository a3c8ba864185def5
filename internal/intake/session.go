package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/acquire/internal/geocoding"
	"github.com/stwalsh4118/acquire/internal/logger"
	"github.com/stwalsh4118/acquire/internal/metadata"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/services"
)

// Intake errors
var (
	ErrSessionNotFound   = errors.New("intake session not found")
	ErrInvalidTransition = errors.New("invalid intake transition")
	ErrInvalidMode       = errors.New("intake mode must be ai or manual")
	ErrAddressRequired   = errors.New("exact address is required")
	ErrValidationPending = errors.New("address validation still running")

	// ErrAddressUnconfirmed matches services.ErrConfirmationRequired.
	ErrAddressUnconfirmed = fmt.Errorf("%w: address could not be verified", services.ErrConfirmationRequired)
)

// State is where a session sits in the intake flow.
type State string

const (
	StateProcessing State = "processing"
	StateVerify     State = "verify"
	StateCommitted  State = "committed"
	StateAbandoned  State = "abandoned"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateAbandoned
}

// Mode selects how a pending link is turned into a draft.
type Mode string

const (
	ModeAI     Mode = "ai"
	ModeManual Mode = "manual"
)

// ParseMode accepts "ai" and "manual"; empty means manual.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAI:
		return ModeAI, nil
	case ModeManual, "":
		return ModeManual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// CommitOptions carries the user's answers to commit prompts.
type CommitOptions struct {
	// ConfirmInvalidAddress accepts an address the validator rejected.
	ConfirmInvalidAddress bool `json:"confirmInvalidAddress"`
}

// View is a point-in-time copy of a session.
type View struct {
	ID         string    `json:"id"`
	State      State     `json:"state"`
	Mode       Mode      `json:"mode"`
	LinkID     string    `json:"linkId,omitempty"`
	PropertyID string    `json:"propertyId,omitempty"`
	Draft      Draft     `json:"draft"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Session is one pass of a listing through intake. A session created from
// a pending link commits by creating a property and consuming the link; a
// session opened on a stored property commits by updating it.
type Session struct {
	mu sync.Mutex

	id         string
	userID     string
	linkID     string
	propertyID string
	mode       Mode
	state      State
	draft      Draft
	updatedAt  time.Time

	// addressGen is the debouncer generation the draft verdict waits for.
	addressGen uint64
	debouncer  *geocoding.Debouncer

	// cancelPreview stops the background preview fetch; previewDone is
	// closed once that fetch has been applied or dropped. Both are nil for
	// sessions without a preview.
	cancelPreview context.CancelFunc
	previewDone   chan struct{}

	properties services.PropertyService
	links      services.LinkService
	log        *logger.Logger
	now        func() time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// UserID returns the session owner.
func (s *Session) UserID() string {
	return s.userID
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns a copy of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	return View{
		ID:         s.id,
		State:      s.state,
		Mode:       s.mode,
		LinkID:     s.linkID,
		PropertyID: s.propertyID,
		Draft:      s.draft.clone(),
		UpdatedAt:  s.updatedAt,
	}
}

func (s *Session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// enterVerify installs the populated draft. It fails when the session was
// abandoned while processing.
func (s *Session) enterVerify(d Draft, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateProcessing {
		return fmt.Errorf("%w: session is %s", ErrInvalidTransition, s.state)
	}
	s.draft = d
	s.mode = mode
	s.state = StateVerify
	s.updatedAt = s.now()
	return nil
}

// Edit applies user changes to the draft. Changing the exact address
// restarts address validation; the verdict is validating until the
// debounced lookup for this edit reports back.
func (s *Session) Edit(p Patch) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateVerify {
		return View{}, fmt.Errorf("%w: cannot edit a %s session", ErrInvalidTransition, s.state)
	}

	p.apply(&s.draft)
	if p.ExactAddress != nil {
		s.setExactAddressLocked(*p.ExactAddress)
	}
	s.updatedAt = s.now()
	return s.viewLocked(), nil
}

func (s *Session) setExactAddressLocked(raw string) {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		s.draft.Property.ExactAddress = nil
	} else {
		s.draft.Property.ExactAddress = &addr
	}
	s.draft.mark(fieldExactAddress, ProvenanceUser)

	if geocoding.IsIdle(addr) {
		s.addressGen = s.debouncer.Cancel()
		s.draft.Address = geocoding.Result{Status: geocoding.StatusIdle}
		return
	}
	s.addressGen = s.debouncer.Submit(addr)
	s.draft.Address = geocoding.Result{Status: geocoding.StatusValidating}
}

// onValidated receives debounced verdicts. Results for anything but the
// latest edit are dropped.
func (s *Session) onValidated(gen uint64, address string, result geocoding.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.addressGen || s.state != StateVerify {
		s.log.Debug("Dropping stale address verdict", logger.Fields{"generation": gen, "current": s.addressGen})
		return
	}

	s.draft.Address = result
	if result.Status == geocoding.StatusValid && result.Location != nil &&
		s.draft.ProvenanceOf(fieldLocation) != ProvenanceUser {
		loc := *result.Location
		s.draft.Property.Location = &loc
		s.draft.mark(fieldLocation, ProvenanceMetadata)
	}
	s.log.Debug("Address validated", logger.Fields{"address": address, "status": result.Status})
}

// Commit persists the draft. The session must be in verify, the exact
// address must be set, validation must have settled and an invalid verdict
// needs opts.ConfirmInvalidAddress. On success the property is returned and
// the session is committed.
func (s *Session) Commit(ctx context.Context, opts CommitOptions) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateVerify {
		return nil, fmt.Errorf("%w: cannot commit a %s session", ErrInvalidTransition, s.state)
	}
	if s.draft.exactAddress() == "" {
		return nil, ErrAddressRequired
	}
	switch s.draft.Address.Status {
	case geocoding.StatusValidating:
		return nil, ErrValidationPending
	case geocoding.StatusInvalid:
		if !opts.ConfirmInvalidAddress {
			return nil, ErrAddressUnconfirmed
		}
		s.log.Warn("Committing unverified address", logger.Fields{"address": s.draft.exactAddress()})
	}

	draft := s.draft.Property
	var (
		saved *models.Property
		err   error
	)
	if s.propertyID != "" {
		draft.ID = s.propertyID
		saved, err = s.properties.Update(ctx, s.userID, &draft)
	} else {
		folderID := draft.FolderID
		draft.FolderID = ""
		saved, err = s.properties.Create(ctx, s.userID, &draft, folderID)
	}
	if err != nil {
		return nil, err
	}

	if s.linkID != "" {
		s.consumeLink(ctx)
	}

	s.stopLocked()
	s.state = StateCommitted
	s.updatedAt = s.now()
	s.log.Info("Intake committed", logger.Fields{"property_id": saved.ID, "updated": s.propertyID != ""})
	return saved, nil
}

// consumeLink removes the pending link after a successful create. The
// property already exists, so failures are logged and not returned.
func (s *Session) consumeLink(ctx context.Context) {
	err := s.links.Discard(ctx, s.userID, s.linkID)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrLinkNotFound):
		s.log.Warn("Pending link already gone at commit", logger.Fields{"link_id": s.linkID})
	default:
		s.log.Error("Failed to remove consumed pending link", err, logger.Fields{"link_id": s.linkID})
	}
}

// Abandon discards the draft and stops validation. The pending link stays
// in the inbox. Abandoning twice is a no-op.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAbandoned:
		return nil
	case StateCommitted:
		return fmt.Errorf("%w: session already committed", ErrInvalidTransition)
	}
	s.stopLocked()
	s.state = StateAbandoned
	s.updatedAt = s.now()
	s.log.Info("Intake abandoned", nil)
	return nil
}

func (s *Session) stopLocked() {
	s.debouncer.Stop()
	if s.cancelPreview != nil {
		s.cancelPreview()
	}
}

// loadPreview fetches the page preview and folder contents together, then
// fills the draft fields the user has not touched and refreshes duplicate
// hints. Results arriving after the session left verify are dropped.
func (s *Session) loadPreview(ctx context.Context, pageURL, folderID string, src MetadataSource) {
	defer close(s.previewDone)
	defer s.cancelPreview()

	var (
		meta     metadata.Metadata
		existing []models.Property
		listErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta = src.Fetch(gctx, pageURL)
		return nil
	})
	g.Go(func() error {
		existing, listErr = s.properties.ListFolder(gctx, s.userID, folderID)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateVerify {
		s.log.Debug("Dropping preview for closed session", logger.Fields{"state": s.state})
		return
	}
	s.draft.ImageLoading = false
	applyMetadata(&s.draft, meta)
	if listErr != nil {
		s.log.Warn("Duplicate refresh skipped", logger.Fields{"error": listErr.Error()})
		return
	}
	s.draft.Duplicates = FindDuplicates(s.draft.Property, existing)
}
