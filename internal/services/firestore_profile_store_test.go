package services

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabhub/backend/internal/models"
)

// newEmulatorFirestoreStore connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST and skips the test when it is not set.
func newEmulatorFirestoreStore(t *testing.T) *FirestoreProfileStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	if projectID == "" {
		projectID = "demo-collabhub"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := firestore.NewClient(ctx, projectID)
	require.NoError(t, err)

	store := &FirestoreProfileStore{client: client}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestFirestoreProfileStore_GetCollaborator_NotFound(t *testing.T) {
	store := newEmulatorFirestoreStore(t)

	_, err := store.GetCollaborator(context.Background(), "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, ErrCollaboratorNotFound)
}

func TestFirestoreProfileStore_ReadsKeepDocumentIDs(t *testing.T) {
	store := newEmulatorFirestoreStore(t)
	ctx := context.Background()
	id := "collab-" + uuid.NewString()

	require.NoError(t, store.PutCollaborator(ctx, &models.Collaborator{ID: id, Name: "Grace Hopper", Rating: 4.8}))
	require.NoError(t, store.PutCertification(ctx, id, &models.Certification{ID: "cert-1", Name: "Go Expert"}))
	require.NoError(t, store.PutEndorsement(ctx, id, &models.Endorsement{ID: "end-1", EndorsedBy: "Linus", Skill: "go"}))
	fb := &models.Feedback{Author: "Barbara", Rating: 4.2}
	require.NoError(t, store.PutFeedback(ctx, id, fb))
	require.NotEmpty(t, fb.ID)

	c, err := store.GetCollaborator(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "Grace Hopper", c.Name)

	certs, err := store.ListCertifications(ctx, id)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, "cert-1", certs[0].ID)

	ends, err := store.ListEndorsements(ctx, id)
	require.NoError(t, err)
	require.Len(t, ends, 1)
	assert.Equal(t, "end-1", ends[0].ID)

	feeds, err := store.ListFeedbacks(ctx, id)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, fb.ID, feeds[0].ID)
	assert.Equal(t, 4.2, feeds[0].Rating)
}

func TestFirestoreProfileStore_CreateSessionRequest(t *testing.T) {
	store := newEmulatorFirestoreStore(t)
	ctx := context.Background()
	requester := "viewer-" + uuid.NewString()
	recipient := "collab-" + uuid.NewString()

	pending, err := store.HasPendingRequest(ctx, requester, recipient)
	require.NoError(t, err)
	assert.False(t, pending)

	req := &models.SessionRequest{
		RequesterID:   requester,
		RequesterName: "Ada Lovelace",
		RecipientID:   recipient,
		RecipientName: "Grace Hopper",
		Status:        models.SessionRequestPending,
	}
	created, err := store.CreateSessionRequest(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, requester, created.RequesterID)
	assert.Equal(t, "Grace Hopper", created.RecipientName)
	assert.False(t, created.CreatedAt.IsZero())

	pending, err = store.HasPendingRequest(ctx, requester, recipient)
	require.NoError(t, err)
	assert.True(t, pending)

	_, err = store.CreateSessionRequest(ctx, req)
	assert.ErrorIs(t, err, ErrRequestAlreadyPending)
}
