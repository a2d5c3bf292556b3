package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/storage"
)

type fileProfileData struct {
	Users           map[string]*models.Collaborator   `json:"users"`
	Certifications  map[string][]models.Certification `json:"certifications"`
	Endorsements    map[string][]models.Endorsement   `json:"endorsements"`
	Feedbacks       map[string][]models.Feedback      `json:"feedbacks"`
	SessionRequests []models.SessionRequest           `json:"sessionRequests"`
}

func (d *fileProfileData) init() {
	if d.Users == nil {
		d.Users = make(map[string]*models.Collaborator)
	}
	if d.Certifications == nil {
		d.Certifications = make(map[string][]models.Certification)
	}
	if d.Endorsements == nil {
		d.Endorsements = make(map[string][]models.Endorsement)
	}
	if d.Feedbacks == nil {
		d.Feedbacks = make(map[string][]models.Feedback)
	}
}

// FileProfileStore keeps everything in one JSON file. It is meant for local
// development; the process clock stands in for the server timestamp.
type FileProfileStore struct {
	store *storage.JSONStore
	now   func() time.Time
}

func NewFileProfileStore(dataDir string) (*FileProfileStore, error) {
	store, err := storage.NewJSONStore(dataDir, "profiles.json")
	if err != nil {
		return nil, err
	}
	return &FileProfileStore{store: store, now: time.Now}, nil
}

func (s *FileProfileStore) Close(ctx context.Context) error {
	return nil
}

func (s *FileProfileStore) load() (*fileProfileData, error) {
	var d fileProfileData
	if err := s.store.Load(&d); err != nil {
		return nil, err
	}
	d.init()
	return &d, nil
}

func (s *FileProfileStore) GetCollaborator(ctx context.Context, id string) (*models.Collaborator, error) {
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	c, ok := d.Users[id]
	if !ok || c == nil {
		return nil, ErrCollaboratorNotFound
	}
	return c, nil
}

func (s *FileProfileStore) ListCertifications(ctx context.Context, userID string) ([]models.Certification, error) {
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return append(make([]models.Certification, 0), d.Certifications[userID]...), nil
}

func (s *FileProfileStore) ListEndorsements(ctx context.Context, userID string) ([]models.Endorsement, error) {
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return append(make([]models.Endorsement, 0), d.Endorsements[userID]...), nil
}

func (s *FileProfileStore) ListFeedbacks(ctx context.Context, userID string) ([]models.Feedback, error) {
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return append(make([]models.Feedback, 0), d.Feedbacks[userID]...), nil
}

func (s *FileProfileStore) HasPendingRequest(ctx context.Context, requesterID, recipientID string) (bool, error) {
	d, err := s.load()
	if err != nil {
		return false, err
	}
	return hasPending(d.SessionRequests, requesterID, recipientID), nil
}

func hasPending(reqs []models.SessionRequest, requesterID, recipientID string) bool {
	for _, r := range reqs {
		if r.RequesterID == requesterID && r.RecipientID == recipientID && r.Status == models.SessionRequestPending {
			return true
		}
	}
	return false
}

func (s *FileProfileStore) CreateSessionRequest(ctx context.Context, req *models.SessionRequest) (*models.SessionRequest, error) {
	if req == nil || req.RequesterID == "" || req.RecipientID == "" {
		return nil, ErrStoreBadInput
	}

	var d fileProfileData
	var created models.SessionRequest
	err := s.store.Update(&d, func() error {
		if req.Status == models.SessionRequestPending && hasPending(d.SessionRequests, req.RequesterID, req.RecipientID) {
			return ErrRequestAlreadyPending
		}
		created = *req
		created.ID = uuid.New().String()
		created.CreatedAt = s.now().UTC()
		d.SessionRequests = append(d.SessionRequests, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *FileProfileStore) PutCollaborator(ctx context.Context, c *models.Collaborator) error {
	if c == nil || c.ID == "" {
		return ErrStoreBadInput
	}
	var d fileProfileData
	return s.store.Update(&d, func() error {
		d.init()
		cp := *c
		d.Users[c.ID] = &cp
		return nil
	})
}

func (s *FileProfileStore) PutCertification(ctx context.Context, userID string, c *models.Certification) error {
	if userID == "" || c == nil {
		return ErrStoreBadInput
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	var d fileProfileData
	return s.store.Update(&d, func() error {
		d.init()
		d.Certifications[userID] = upsertByID(d.Certifications[userID], *c, func(x models.Certification) string { return x.ID })
		return nil
	})
}

func (s *FileProfileStore) PutEndorsement(ctx context.Context, userID string, e *models.Endorsement) error {
	if userID == "" || e == nil {
		return ErrStoreBadInput
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	var d fileProfileData
	return s.store.Update(&d, func() error {
		d.init()
		d.Endorsements[userID] = upsertByID(d.Endorsements[userID], *e, func(x models.Endorsement) string { return x.ID })
		return nil
	})
}

func (s *FileProfileStore) PutFeedback(ctx context.Context, userID string, f *models.Feedback) error {
	if userID == "" || f == nil {
		return ErrStoreBadInput
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	var d fileProfileData
	return s.store.Update(&d, func() error {
		d.init()
		d.Feedbacks[userID] = upsertByID(d.Feedbacks[userID], *f, func(x models.Feedback) string { return x.ID })
		return nil
	})
}

func upsertByID[T any](items []T, item T, idOf func(T) string) []T {
	for i := range items {
		if idOf(items[i]) == idOf(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}
