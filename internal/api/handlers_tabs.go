package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/homeboard/homeboard/internal/api/respond"
	"github.com/homeboard/homeboard/internal/api/validate"
)

// AddTab POST /api/tabs
func (h *Handlers) AddTab(w http.ResponseWriter, r *http.Request) {
	actor := h.authorizeMutation(w, r)
	if actor == nil {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	name := validate.SanitizeText(req.Name)
	if err := validate.TabName(name); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	tabID, err := h.svc.AddTab(r.Context(), actor.ActorID, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "tabId": tabID, "name": name})
}

// RemoveTab DELETE /api/tabs/{tabId}
// Removing a tab also removes its widgets. Absent tabs are a no-op so the
// call is safe to retry.
func (h *Handlers) RemoveTab(w http.ResponseWriter, r *http.Request) {
	actor := h.authorizeMutation(w, r)
	if actor == nil {
		return
	}
	if err := h.svc.RemoveTab(r.Context(), actor.ActorID, mux.Vars(r)["tabId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
