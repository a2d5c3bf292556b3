package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/collabhub/backend/internal/models"
)

// mockProfileStore mocks ProfileStore
type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) GetCollaborator(ctx context.Context, id string) (*models.Collaborator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collaborator), args.Error(1)
}

func (m *mockProfileStore) ListCertifications(ctx context.Context, userID string) ([]models.Certification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Certification), args.Error(1)
}

func (m *mockProfileStore) ListEndorsements(ctx context.Context, userID string) ([]models.Endorsement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Endorsement), args.Error(1)
}

func (m *mockProfileStore) ListFeedbacks(ctx context.Context, userID string) ([]models.Feedback, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

func (m *mockProfileStore) HasPendingRequest(ctx context.Context, requesterID, recipientID string) (bool, error) {
	args := m.Called(ctx, requesterID, recipientID)
	return args.Bool(0), args.Error(1)
}

func (m *mockProfileStore) CreateSessionRequest(ctx context.Context, req *models.SessionRequest) (*models.SessionRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionRequest), args.Error(1)
}
