package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/collabhub/backend/internal/metrics"
	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/internal/storage"
)

const testSecret = "test-secret-key"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupRouter(t *testing.T) (http.Handler, *services.FileProfileStore) {
	t.Helper()
	return setupRouterIn(t, t.TempDir())
}

func setupRouterIn(t *testing.T, dir string) (http.Handler, *services.FileProfileStore) {
	t.Helper()
	store, err := services.NewFileProfileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.PutCollaborator(ctx, &models.Collaborator{
		ID:           "collab-1",
		Name:         "Grace Hopper",
		Rating:       4.8,
		TotalReviews: 12,
	}))
	require.NoError(t, store.PutCertification(ctx, "collab-1", &models.Certification{ID: "cert-1", Name: "Go Expert"}))
	require.NoError(t, store.PutEndorsement(ctx, "collab-1", &models.Endorsement{ID: "end-1", EndorsedBy: "Linus", Skill: "go"}))
	require.NoError(t, store.PutFeedback(ctx, "collab-1", &models.Feedback{ID: "fb-1", Author: "Barbara", Rating: 4.2}))

	h := NewCollaboratorHandler(store, zap.NewNop(), metrics.New(prometheus.NewRegistry()), time.Second)
	return NewRouter(h, middleware.NewJWTVerifier(testSecret), nil), store
}

func bearer(t *testing.T, userID, name string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"name":    name,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func do(router http.Handler, method, path, auth string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestCollaboratorHandler_GetPage(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(router, http.MethodGet, "/api/collaborators/collab-1", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var page models.CollaboratorPage
	env := decode(t, rec, &page)
	assert.True(t, env.Success)
	assert.False(t, page.Loading)
	require.NotNil(t, page.Collaborator)
	assert.Equal(t, "Grace Hopper", page.Collaborator.Name)
	assert.Equal(t, "G", page.Collaborator.Initial)
	require.Len(t, page.Certifications, 1)
	assert.Equal(t, "cert-1", page.Certifications[0].ID)
	require.Len(t, page.Endorsements, 1)
	assert.Equal(t, "end-1", page.Endorsements[0].ID)
	require.Len(t, page.Feedbacks, 1)
	assert.Equal(t, 4, page.Feedbacks[0].Stars)
	assert.Equal(t, "Request Session", page.SessionAction.Label)
}

func TestCollaboratorHandler_GetPage_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(router, http.MethodGet, "/api/collaborators/nobody", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Collaborator not found", env.Error)
}

func TestCollaboratorHandler_PostPage_UsesNavigationState(t *testing.T) {
	router, _ := setupRouter(t)

	// "collab-2" is not in the store, so a 200 proves the profile read was skipped.
	body, err := json.Marshal(models.NavigationState{
		Collaborator: &models.Collaborator{ID: "collab-2", Name: "Katherine Johnson"},
	})
	require.NoError(t, err)

	rec := do(router, http.MethodPost, "/api/collaborators/collab-2/page", "", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	var page models.CollaboratorPage
	decode(t, rec, &page)
	require.NotNil(t, page.Collaborator)
	assert.Equal(t, "Katherine Johnson", page.Collaborator.Name)
	assert.Empty(t, page.Certifications)
}

func TestCollaboratorHandler_PostPage_EmptyBodyFallsBackToStore(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(router, http.MethodPost, "/api/collaborators/collab-1/page", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCollaboratorHandler_PostPage_InvalidBody(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(router, http.MethodPost, "/api/collaborators/collab-1/page", "", []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollaboratorHandler_RequestSession_Anonymous(t *testing.T) {
	router, store := setupRouter(t)

	rec := do(router, http.MethodPost, "/api/collaborators/collab-1/session-requests", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, "You must be logged in to request a session.", env.Error)

	pending, err := store.HasPendingRequest(context.Background(), "", "collab-1")
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestCollaboratorHandler_RequestSession_CreatesOnce(t *testing.T) {
	router, store := setupRouter(t)
	auth := bearer(t, "viewer-1", "Ada Lovelace")

	rec := do(router, http.MethodPost, "/api/collaborators/collab-1/session-requests", auth, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var result SessionRequestResult
	decode(t, rec, &result)
	require.NotNil(t, result.Request)
	assert.NotEmpty(t, result.Request.ID)
	assert.Equal(t, "viewer-1", result.Request.RequesterID)
	assert.Equal(t, "Ada Lovelace", result.Request.RequesterName)
	assert.Equal(t, "Grace Hopper", result.Request.RecipientName)
	assert.Equal(t, models.SessionRequestPending, result.Request.Status)
	assert.False(t, result.Request.CreatedAt.IsZero())
	assert.True(t, result.SessionAction.Disabled)

	pending, err := store.HasPendingRequest(context.Background(), "viewer-1", "collab-1")
	require.NoError(t, err)
	assert.True(t, pending)

	// Reloading the page shows the request as sent; submitting again conflicts.
	rec = do(router, http.MethodGet, "/api/collaborators/collab-1", auth, nil)
	var page models.CollaboratorPage
	decode(t, rec, &page)
	assert.True(t, page.SessionAction.Sent)

	rec = do(router, http.MethodPost, "/api/collaborators/collab-1/session-requests", auth, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// storedRequests reads the session requests persisted by the file store in dir.
func storedRequests(t *testing.T, dir string) []models.SessionRequest {
	t.Helper()
	js, err := storage.NewJSONStore(dir, "profiles.json")
	require.NoError(t, err)
	var data struct {
		SessionRequests []models.SessionRequest `json:"sessionRequests"`
	}
	require.NoError(t, js.Load(&data))
	return data.SessionRequests
}

func TestCollaboratorHandler_RequestSession_ConcurrentSubmitsCreateOne(t *testing.T) {
	dir := t.TempDir()
	router, _ := setupRouterIn(t, dir)
	auth := bearer(t, "viewer-1", "Ada Lovelace")

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			codes[i] = do(router, http.MethodPost, "/api/collaborators/collab-1/session-requests", auth, nil).Code
		}(i)
	}
	close(start)
	wg.Wait()

	created, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)

	reqs := storedRequests(t, dir)
	require.Len(t, reqs, 1)
	assert.Equal(t, "viewer-1", reqs[0].RequesterID)
	assert.Equal(t, models.SessionRequestPending, reqs[0].Status)
}

func TestCollaboratorHandler_RequestSession_ConflictShowsSentAction(t *testing.T) {
	router, _ := setupRouter(t)
	auth := bearer(t, "viewer-1", "Ada Lovelace")

	rec := do(router, http.MethodPost, "/api/collaborators/collab-1/session-requests", auth, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodPost, "/api/collaborators/collab-1/session-requests", auth, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	var page models.CollaboratorPage
	env := decode(t, rec, &page)
	assert.Equal(t, "Session request already sent", env.Error)
	assert.True(t, page.SessionAction.Sent)
	assert.Equal(t, "Request Sent", page.SessionAction.Label)
}

// ctxStore fails writes whose context is already done.
type ctxStore struct {
	*services.FileProfileStore
}

func (s ctxStore) CreateSessionRequest(ctx context.Context, req *models.SessionRequest) (*models.SessionRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.FileProfileStore.CreateSessionRequest(ctx, req)
}

func TestCollaboratorHandler_SubmitOnce_OutlivesCallerContext(t *testing.T) {
	dir := t.TempDir()
	_, fileStore := setupRouterIn(t, dir)
	store := ctxStore{fileStore}
	h := NewCollaboratorHandler(store, zap.NewNop(), nil, time.Second)

	view := services.NewCollaboratorView(store, &models.Viewer{ID: "viewer-1", DisplayName: "Ada"}, zap.NewNop())
	_, err := view.Load(context.Background(), "collab-1", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	created, err := h.submitOnce(ctx, "viewer-1\x00collab-1", view)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Len(t, storedRequests(t, dir), 1)
}

func TestCollaboratorHandler_RequestSession_UnknownCollaborator(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(router, http.MethodPost, "/api/collaborators/nobody/session-requests", bearer(t, "viewer-1", "Ada"), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollaboratorHandler_InvalidToken(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(router, http.MethodGet, "/api/collaborators/collab-1", "Bearer not-a-jwt", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
