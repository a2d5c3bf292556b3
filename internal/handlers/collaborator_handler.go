package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/collabhub/backend/internal/metrics"
	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/services"
)

const (
	msgNotSignedIn    = "You must be logged in to request a session."
	msgRequestFailed  = "Failed to send request. Please try again."
	msgAlreadySent    = "Session request already sent"
	msgInFlight       = "Session request already in progress"
	msgNotFound       = "Collaborator not found"
	msgLoadFailed     = "Failed to load collaborator"
	msgMissingID      = "Missing collaboratorId"
	msgInvalidRequest = "Invalid request body"
)

// SessionRequestResult is returned after a session request is created.
type SessionRequestResult struct {
	Request       *models.SessionRequest `json:"request"`
	SessionAction models.SessionAction   `json:"sessionAction"`
}

type CollaboratorHandler struct {
	store   services.ProfileStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	// submits collapses concurrent submissions for the same viewer and
	// collaborator into one store write.
	submits singleflight.Group
}

func NewCollaboratorHandler(store services.ProfileStore, logger *zap.Logger, m *metrics.Metrics, timeout time.Duration) *CollaboratorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CollaboratorHandler{store: store, logger: logger, metrics: m, timeout: timeout}
}

// GetPage loads a collaborator page from the store.
func (h *CollaboratorHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, ok := h.loadView(ctx, w, r, nil)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(view.Page()))
}

// PostPage loads a collaborator page using the collaborator handed over by
// the previous page, skipping the profile read.
func (h *CollaboratorHandler) PostPage(w http.ResponseWriter, r *http.Request) {
	var nav models.NavigationState
	if err := json.NewDecoder(r.Body).Decode(&nav); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(msgInvalidRequest))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, ok := h.loadView(ctx, w, r, nav.Collaborator)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(view.Page()))
}

// RequestSession submits a session request from the signed-in viewer.
func (h *CollaboratorHandler) RequestSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, ok := h.loadView(ctx, w, r, nil)
	if !ok {
		return
	}

	viewer := middleware.GetViewer(r.Context())
	var (
		created *models.SessionRequest
		err     error
	)
	if viewer == nil {
		created, err = view.RequestSession(ctx)
	} else {
		created, err = h.submitOnce(ctx, viewer.ID+"\x00"+chi.URLParam(r, "collaboratorId"), view)
	}

	switch {
	case err == nil:
		h.metrics.SessionRequest(metrics.OutcomeCreated)
		writeJSON(w, http.StatusCreated, models.NewSuccessResponse(SessionRequestResult{
			Request:       created,
			SessionAction: services.SessionActionFor(false, true),
		}))
	case errors.Is(err, services.ErrNotSignedIn):
		h.metrics.SessionRequest(metrics.OutcomeUnauthorized)
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse(msgNotSignedIn))
	case errors.Is(err, services.ErrRequestAlreadySent):
		h.metrics.SessionRequest(metrics.OutcomeAlreadySent)
		page := view.Page()
		page.SessionAction = services.SessionActionFor(false, true)
		writeJSON(w, http.StatusConflict, models.NewErrorResponseWithData(msgAlreadySent, page))
	case errors.Is(err, services.ErrRequestInFlight):
		h.metrics.SessionRequest(metrics.OutcomeInFlight)
		writeJSON(w, http.StatusConflict, models.NewErrorResponse(msgInFlight))
	default:
		h.metrics.SessionRequest(metrics.OutcomeFailed)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(msgRequestFailed))
	}
}

// submitOnce runs view.RequestSession for the first caller under key. The
// shared call runs on a context that no single client can cancel. Callers
// that joined another caller's submission get ErrRequestAlreadySent.
func (h *CollaboratorHandler) submitOnce(ctx context.Context, key string, view *services.CollaboratorView) (*models.SessionRequest, error) {
	ran := false
	v, err, _ := h.submits.Do(key, func() (interface{}, error) {
		ran = true
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()
		return view.RequestSession(sctx)
	})
	if !ran {
		if err != nil && !errors.Is(err, services.ErrRequestAlreadySent) {
			return nil, err
		}
		return nil, services.ErrRequestAlreadySent
	}
	created, _ := v.(*models.SessionRequest)
	return created, err
}

// loadView builds a view for the request's viewer and loads it. It writes an
// error response and returns false when the page cannot be shown.
func (h *CollaboratorHandler) loadView(ctx context.Context, w http.ResponseWriter, r *http.Request, prefetched *models.Collaborator) (*services.CollaboratorView, bool) {
	id := chi.URLParam(r, "collaboratorId")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(msgMissingID))
		return nil, false
	}

	view := services.NewCollaboratorView(h.store, middleware.GetViewer(r.Context()), h.logger)
	source, err := view.Load(ctx, id, prefetched)
	if err != nil {
		h.logger.Error("[LoadCollaborator] error loading page", zap.String("id", id), zap.Error(err))
		h.metrics.PageLoad(source, metrics.OutcomeError)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(msgLoadFailed))
		return nil, false
	}
	if view.Page().Loading {
		h.metrics.PageLoad(source, metrics.OutcomeNotFound)
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse(msgNotFound))
		return nil, false
	}

	h.metrics.PageLoad(source, metrics.OutcomeReady)
	return view, true
}
