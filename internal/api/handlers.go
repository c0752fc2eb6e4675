// Package api is the HTTP transport for the dashboard service.
package api

import (
	"errors"
	"net/http"

	respond "github.com/homeboard/homeboard/internal/api/respond"
	"github.com/homeboard/homeboard/internal/auth"
	"github.com/homeboard/homeboard/internal/feed"
	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/render"
	"github.com/homeboard/homeboard/internal/services"
)

// Handlers is the thin HTTP layer over the dashboard service. Every
// request authenticates via API key; mutations additionally present the
// session's mutation token.
type Handlers struct {
	svc        *services.DashboardService
	authorizer auth.Authorizer
	tokens     *auth.TokenManager
	capability string
	renderer   *render.Renderer
	feeds      *feed.Fetcher
}

func NewHandlers(svc *services.DashboardService, authorizer auth.Authorizer, tokens *auth.TokenManager, capability string, renderer *render.Renderer, feeds *feed.Fetcher) *Handlers {
	return &Handlers{
		svc:        svc,
		authorizer: authorizer,
		tokens:     tokens,
		capability: capability,
		renderer:   renderer,
		feeds:      feeds,
	}
}

// authorize resolves the request's API key to an actor. Writes the error
// response itself; callers bail out when the actor is nil.
func (h *Handlers) authorize(w http.ResponseWriter, r *http.Request) *auth.Actor {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return nil
	}
	actor, err := h.authorizer.Authorize(r.Context(), apiKey, h.capability)
	if err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			respond.WriteForbidden(w, err.Error())
			return nil
		}
		respond.WriteUnauthorized(w, err.Error())
		return nil
	}
	return actor
}

// authorizeMutation is authorize plus mutation token validation.
func (h *Handlers) authorizeMutation(w http.ResponseWriter, r *http.Request) *auth.Actor {
	actor := h.authorize(w, r)
	if actor == nil {
		return nil
	}
	if err := h.tokens.Validate(auth.ExtractMutationToken(r), actor.ActorID); err != nil {
		respond.WriteForbidden(w, "invalid or expired mutation token")
		return nil
	}
	return actor
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrUnknownWidgetType):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		respond.WriteUnauthorized(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

// CreateSession POST /api/session
// Issues the mutation token the client sends back on state changes.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	actor := h.authorize(w, r)
	if actor == nil {
		return
	}
	token, err := h.tokens.Issue(actor.ActorID)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":    true,
		"actor": actor,
		"token": token,
	})
}

// GetDashboard GET /api/dashboard
// Returns tabs, widgets, widget type descriptors, and preferences in one
// payload so the client renders without follow-up calls.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	actor := h.authorize(w, r)
	if actor == nil {
		return
	}
	view, err := h.svc.Dashboard(r.Context(), actor.ActorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "dashboard": view})
}

// PruneOrphans POST /api/integrity/prune
// Sweeps out widgets whose tab no longer exists.
func (h *Handlers) PruneOrphans(w http.ResponseWriter, r *http.Request) {
	actor := h.authorizeMutation(w, r)
	if actor == nil {
		return
	}
	removed, err := h.svc.PruneOrphanWidgets(r.Context(), actor.ActorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "removed": removed})
}
