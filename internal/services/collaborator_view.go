package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/collabhub/backend/internal/models"
)

var (
	ErrNotSignedIn        = errors.New("viewer not signed in")
	ErrRequestFailed      = errors.New("failed to send session request")
	ErrRequestAlreadySent = errors.New("session request already sent")
	ErrRequestInFlight    = errors.New("session request in flight")
	ErrLoadSuperseded     = errors.New("load superseded by a newer load")
)

const (
	labelRequestSession = "Request Session"
	labelSending        = "Sending..."
	labelRequestSent    = "Request Sent"
)

// Subject sources reported by Load.
const (
	SourcePrefetched = "prefetched"
	SourceStore      = "store"
)

// CollaboratorView drives one collaborator profile page: it resolves the
// subject, loads the related collections, checks for an existing request and
// submits new ones. A view is safe for concurrent use.
type CollaboratorView struct {
	store  ProfileStore
	viewer *models.Viewer
	logger *zap.Logger

	mu             sync.Mutex
	generation     uint64
	subjectID      string
	subject        *models.Collaborator
	certifications []models.Certification
	endorsements   []models.Endorsement
	feedbacks      []models.Feedback
	requestSent    bool
	requesting     bool
}

// NewCollaboratorView returns a view for viewer, which may be nil when nobody
// is signed in.
func NewCollaboratorView(store ProfileStore, viewer *models.Viewer, logger *zap.Logger) *CollaboratorView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollaboratorView{store: store, viewer: viewer, logger: logger}
}

// Load resolves subjectID and loads everything the page shows, in order.
// A prefetched collaborator skips the subject read. When the subject does not
// exist the view stays loading and Load returns nil. The returned source says
// where the subject came from. If another Load starts before this one
// finishes, this one returns ErrLoadSuperseded and its results are dropped.
func (v *CollaboratorView) Load(ctx context.Context, subjectID string, prefetched *models.Collaborator) (string, error) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.subjectID = subjectID
	v.subject = nil
	v.certifications = nil
	v.endorsements = nil
	v.feedbacks = nil
	v.requestSent = false
	v.mu.Unlock()

	subject, source, err := v.resolveSubject(ctx, subjectID, prefetched)
	if err != nil {
		return source, err
	}
	if subject == nil {
		return source, nil
	}
	if err := v.apply(gen, func() { v.subject = subject }); err != nil {
		return source, err
	}

	if err := v.loadCollections(ctx, gen, subjectID); err != nil {
		return source, err
	}

	if v.viewer != nil {
		if err := v.checkExistingRequest(ctx, gen, subjectID); err != nil {
			return source, err
		}
	}
	return source, nil
}

func (v *CollaboratorView) resolveSubject(ctx context.Context, subjectID string, prefetched *models.Collaborator) (*models.Collaborator, string, error) {
	if prefetched != nil {
		c := *prefetched
		return &c, SourcePrefetched, nil
	}

	c, err := v.store.GetCollaborator(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrCollaboratorNotFound) {
			v.logger.Warn("[CollaboratorView] no collaborator found", zap.String("id", subjectID))
			return nil, SourceStore, nil
		}
		return nil, SourceStore, fmt.Errorf("get collaborator %s: %w", subjectID, err)
	}
	return c, SourceStore, nil
}

// loadCollections fetches the three sub-collections concurrently and applies
// them together, or not at all.
func (v *CollaboratorView) loadCollections(ctx context.Context, gen uint64, subjectID string) error {
	var (
		certs []models.Certification
		ends  []models.Endorsement
		feeds []models.Feedback
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		certs, err = v.store.ListCertifications(gctx, subjectID)
		if err != nil {
			return fmt.Errorf("list certifications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ends, err = v.store.ListEndorsements(gctx, subjectID)
		if err != nil {
			return fmt.Errorf("list endorsements: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		feeds, err = v.store.ListFeedbacks(gctx, subjectID)
		if err != nil {
			return fmt.Errorf("list feedbacks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return v.apply(gen, func() {
		v.certifications = certs
		v.endorsements = ends
		v.feedbacks = feeds
	})
}

func (v *CollaboratorView) checkExistingRequest(ctx context.Context, gen uint64, subjectID string) error {
	pending, err := v.store.HasPendingRequest(ctx, v.viewer.ID, subjectID)
	if err != nil {
		return fmt.Errorf("check pending request: %w", err)
	}
	return v.apply(gen, func() {
		if pending {
			v.requestSent = true
		}
	})
}

// apply runs fn under the lock if gen is still the current load.
func (v *CollaboratorView) apply(gen uint64, fn func()) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return ErrLoadSuperseded
	}
	fn()
	return nil
}

// RequestSession creates a pending session request from the viewer to the
// subject. The action is disabled while a submission is in flight and after
// one succeeds.
func (v *CollaboratorView) RequestSession(ctx context.Context) (*models.SessionRequest, error) {
	v.mu.Lock()
	if v.viewer == nil || v.subject == nil {
		v.mu.Unlock()
		return nil, ErrNotSignedIn
	}
	if v.requestSent {
		v.mu.Unlock()
		return nil, ErrRequestAlreadySent
	}
	if v.requesting {
		v.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	v.requesting = true
	gen := v.generation

	requesterName := v.viewer.DisplayName
	if requesterName == "" {
		requesterName = models.AnonymousName
	}
	req := &models.SessionRequest{
		RequesterID:   v.viewer.ID,
		RequesterName: requesterName,
		RecipientID:   v.subjectID,
		RecipientName: v.subject.Name,
		Status:        models.SessionRequestPending,
	}
	v.mu.Unlock()

	created, err := v.store.CreateSessionRequest(ctx, req)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.requesting = false
	current := gen == v.generation

	if err != nil {
		if errors.Is(err, ErrRequestAlreadyPending) {
			if current {
				v.requestSent = true
			}
			return nil, ErrRequestAlreadySent
		}
		v.logger.Error("[RequestSession] error sending session request",
			zap.String("requester", req.RequesterID),
			zap.String("recipient", req.RecipientID),
			zap.Error(err))
		return nil, ErrRequestFailed
	}

	if current {
		v.requestSent = true
	}
	v.logger.Info("[RequestSession] session request created",
		zap.String("id", created.ID),
		zap.String("requester", created.RequesterID),
		zap.String("recipient", created.RecipientID))
	return created, nil
}

// Page returns the render model for the current state.
func (v *CollaboratorView) Page() models.CollaboratorPage {
	v.mu.Lock()
	defer v.mu.Unlock()

	page := models.CollaboratorPage{
		Loading:        v.subject == nil,
		Certifications: append(make([]models.Certification, 0, len(v.certifications)), v.certifications...),
		Endorsements:   append(make([]models.Endorsement, 0, len(v.endorsements)), v.endorsements...),
		Feedbacks:      make([]models.FeedbackItem, 0, len(v.feedbacks)),
		SessionAction:  SessionActionFor(v.requesting, v.requestSent),
	}
	if v.subject != nil {
		card := &models.CollaboratorCard{
			Collaborator: *v.subject,
			Initial:      initial(v.subject.Name),
		}
		card.SkillsKnown = orEmpty(card.SkillsKnown)
		card.SkillsToLearn = orEmpty(card.SkillsToLearn)
		card.Languages = orEmpty(card.Languages)
		page.Collaborator = card
	}
	for _, f := range v.feedbacks {
		page.Feedbacks = append(page.Feedbacks, models.FeedbackItem{Feedback: f, Stars: stars(f.Rating)})
	}
	return page
}

// RequestSent reports whether the action is in its sent state.
func (v *CollaboratorView) RequestSent() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.requestSent
}

// SessionActionFor renders the request-session button.
func SessionActionFor(requesting, sent bool) models.SessionAction {
	switch {
	case sent:
		return models.SessionAction{Label: labelRequestSent, Disabled: true, Sent: true}
	case requesting:
		return models.SessionAction{Label: labelSending, Disabled: true}
	default:
		return models.SessionAction{Label: labelRequestSession}
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// stars is the number of filled stars out of five.
func stars(rating float64) int {
	if math.IsNaN(rating) {
		return 0
	}
	n := int(math.Floor(math.Min(rating, 5)))
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}
