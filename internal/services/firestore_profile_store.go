package services

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/collabhub/backend/internal/models"
)

const (
	usersCollection           = "users"
	certificationsCollection  = "certifications"
	endorsementsCollection    = "endorsements"
	feedbacksCollection       = "feedbacks"
	sessionRequestsCollection = "sessionRequests"
)

// FirestoreProfileStore reads users/{id} and its sub-collections and appends
// to sessionRequests.
type FirestoreProfileStore struct {
	client *firestore.Client
}

func NewFirestoreProfileStore(ctx context.Context, app *firebase.App) (*FirestoreProfileStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, err
	}
	return &FirestoreProfileStore{client: client}, nil
}

func (s *FirestoreProfileStore) Close(ctx context.Context) error {
	return s.client.Close()
}

func (s *FirestoreProfileStore) userDoc(id string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(id)
}

func (s *FirestoreProfileStore) GetCollaborator(ctx context.Context, id string) (*models.Collaborator, error) {
	if id == "" {
		return nil, ErrCollaboratorNotFound
	}
	snap, err := s.userDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrCollaboratorNotFound
		}
		return nil, err
	}

	var c models.Collaborator
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode collaborator %s: %w", id, err)
	}
	if c.ID == "" {
		c.ID = snap.Ref.ID
	}
	return &c, nil
}

func (s *FirestoreProfileStore) ListCertifications(ctx context.Context, userID string) ([]models.Certification, error) {
	return readCollection(ctx, s.userDoc(userID).Collection(certificationsCollection).Query,
		func(c *models.Certification, id string) { c.ID = id })
}

func (s *FirestoreProfileStore) ListEndorsements(ctx context.Context, userID string) ([]models.Endorsement, error) {
	return readCollection(ctx, s.userDoc(userID).Collection(endorsementsCollection).Query,
		func(e *models.Endorsement, id string) { e.ID = id })
}

func (s *FirestoreProfileStore) ListFeedbacks(ctx context.Context, userID string) ([]models.Feedback, error) {
	return readCollection(ctx, s.userDoc(userID).Collection(feedbacksCollection).Query,
		func(f *models.Feedback, id string) { f.ID = id })
}

func (s *FirestoreProfileStore) pendingQuery(requesterID, recipientID string) firestore.Query {
	return s.client.Collection(sessionRequestsCollection).
		Where("requesterId", "==", requesterID).
		Where("recipientId", "==", recipientID).
		Where("status", "==", models.SessionRequestPending).
		Limit(1)
}

func (s *FirestoreProfileStore) HasPendingRequest(ctx context.Context, requesterID, recipientID string) (bool, error) {
	iter := s.pendingQuery(requesterID, recipientID).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateSessionRequest checks for a pending request and creates the new one
// inside a single transaction.
func (s *FirestoreProfileStore) CreateSessionRequest(ctx context.Context, req *models.SessionRequest) (*models.SessionRequest, error) {
	if req == nil || req.RequesterID == "" || req.RecipientID == "" {
		return nil, ErrStoreBadInput
	}

	ref := s.client.Collection(sessionRequestsCollection).NewDoc()
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(s.pendingQuery(req.RequesterID, req.RecipientID)).GetAll()
		if err != nil {
			return err
		}
		if req.Status == models.SessionRequestPending && len(existing) > 0 {
			return ErrRequestAlreadyPending
		}
		return tx.Create(ref, map[string]interface{}{
			"requesterId":   req.RequesterID,
			"requesterName": req.RequesterName,
			"recipientId":   req.RecipientID,
			"recipientName": req.RecipientName,
			"status":        req.Status,
			"createdAt":     firestore.ServerTimestamp,
		})
	})
	if err != nil {
		return nil, err
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	var out models.SessionRequest
	if err := snap.DataTo(&out); err != nil {
		return nil, err
	}
	out.ID = ref.ID
	return &out, nil
}

func (s *FirestoreProfileStore) PutCollaborator(ctx context.Context, c *models.Collaborator) error {
	if c == nil || c.ID == "" {
		return ErrStoreBadInput
	}
	_, err := s.userDoc(c.ID).Set(ctx, c)
	return err
}

func (s *FirestoreProfileStore) PutCertification(ctx context.Context, userID string, c *models.Certification) error {
	return putSubDoc(ctx, s.userDoc(userID).Collection(certificationsCollection), userID, &c.ID, c)
}

func (s *FirestoreProfileStore) PutEndorsement(ctx context.Context, userID string, e *models.Endorsement) error {
	return putSubDoc(ctx, s.userDoc(userID).Collection(endorsementsCollection), userID, &e.ID, e)
}

func (s *FirestoreProfileStore) PutFeedback(ctx context.Context, userID string, f *models.Feedback) error {
	return putSubDoc(ctx, s.userDoc(userID).Collection(feedbacksCollection), userID, &f.ID, f)
}

// putSubDoc writes data under col, allocating a document ID when *id is empty.
func putSubDoc(ctx context.Context, col *firestore.CollectionRef, userID string, id *string, data interface{}) error {
	if userID == "" {
		return ErrStoreBadInput
	}
	ref := col.NewDoc()
	if *id != "" {
		ref = col.Doc(*id)
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return err
	}
	*id = ref.ID
	return nil
}

// readCollection decodes every document returned by q, keeping document IDs.
func readCollection[T any](ctx context.Context, q firestore.Query, setID func(*T, string)) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := make([]T, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var item T
		if err := snap.DataTo(&item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
		}
		setID(&item, snap.Ref.ID)
		out = append(out, item)
	}
	return out, nil
}
