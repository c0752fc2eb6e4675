package api

import (
	"encoding/json"
	"net/http"

	respond "github.com/homeboard/homeboard/internal/api/respond"
	"github.com/homeboard/homeboard/internal/model"
)

// GetPreferences GET /api/preferences
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	actor := h.authorize(w, r)
	if actor == nil {
		return
	}
	prefs, err := h.svc.Preferences(r.Context(), actor.ActorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "preferences": prefs})
}

// UpdatePreferences PUT /api/preferences
func (h *Handlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	actor := h.authorizeMutation(w, r)
	if actor == nil {
		return
	}
	var req model.Preferences
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.svc.UpdatePreferences(r.Context(), actor.ActorID, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "preferences": req})
}

// PreviewFeed POST /api/feed/preview
// Fetches an external feed for the widget editor. Fetch failures come back
// as ok:false with an empty feed rather than an HTTP error; a dead feed is
// a normal editor state.
func (h *Handlers) PreviewFeed(w http.ResponseWriter, r *http.Request) {
	actor := h.authorize(w, r)
	if actor == nil {
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	preview, err := h.feeds.Preview(r.Context(), req.URL)
	if err != nil {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      false,
			"message": err.Error(),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "feed": preview})
}
