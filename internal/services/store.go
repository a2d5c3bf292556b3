package services

import (
	"context"
	"errors"

	"github.com/collabhub/backend/internal/models"
)

var (
	ErrCollaboratorNotFound  = errors.New("collaborator not found")
	ErrRequestAlreadyPending = errors.New("session request already pending")
	ErrStoreBadInput         = errors.New("invalid store input")
)

// ProfileStore is the document database behind a collaborator page.
type ProfileStore interface {
	GetCollaborator(ctx context.Context, id string) (*models.Collaborator, error)
	ListCertifications(ctx context.Context, userID string) ([]models.Certification, error)
	ListEndorsements(ctx context.Context, userID string) ([]models.Endorsement, error)
	ListFeedbacks(ctx context.Context, userID string) ([]models.Feedback, error)
	HasPendingRequest(ctx context.Context, requesterID, recipientID string) (bool, error)
	// CreateSessionRequest stores req with a server-assigned CreatedAt and
	// returns the stored record. It returns ErrRequestAlreadyPending when the
	// backend detects a pending request for the same pair.
	CreateSessionRequest(ctx context.Context, req *models.SessionRequest) (*models.SessionRequest, error)
}

// Seeder writes profile data. Profiles are owned elsewhere; this exists for
// fixtures and the seed command.
type Seeder interface {
	PutCollaborator(ctx context.Context, c *models.Collaborator) error
	PutCertification(ctx context.Context, userID string, c *models.Certification) error
	PutEndorsement(ctx context.Context, userID string, e *models.Endorsement) error
	PutFeedback(ctx context.Context, userID string, f *models.Feedback) error
}

// Backend is a store that can also be seeded and closed.
type Backend interface {
	ProfileStore
	Seeder
	Close(ctx context.Context) error
}
