package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/homeboard/homeboard/internal/api/respond"
	"github.com/homeboard/homeboard/internal/api/validate"
	"github.com/homeboard/homeboard/internal/model"
)

// AddWidget POST /api/tabs/{tabId}/widgets
func (h *Handlers) AddWidget(w http.ResponseWriter, r *http.Request) {
	actor := h.authorizeMutation(w, r)
	if actor == nil {
		return
	}
	tabID := mux.Vars(r)["tabId"]
	var req struct {
		Type string        `json:"type"`
		Args model.RawArgs `json:"args"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.NonEmpty("type", req.Type); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	widgetID, err := h.svc.AddWidget(r.Context(), actor.ActorID, tabID, req.Type, validate.SanitizeRawArgs(req.Args))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "widgetId": widgetID})
}

// RemoveWidget DELETE /api/tabs/{tabId}/widgets/{widgetId}
func (h *Handlers) RemoveWidget(w http.ResponseWriter, r *http.Request) {
	actor := h.authorizeMutation(w, r)
	if actor == nil {
		return
	}
	vars := mux.Vars(r)
	if err := h.svc.RemoveWidget(r.Context(), actor.ActorID, vars["tabId"], vars["widgetId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// ReorderWidgets PUT /api/tabs/{tabId}/widgets/order
// The body carries the tab's complete new ordering; widgets left out are
// removed from the tab.
func (h *Handlers) ReorderWidgets(w http.ResponseWriter, r *http.Request) {
	actor := h.authorizeMutation(w, r)
	if actor == nil {
		return
	}
	tabID := mux.Vars(r)["tabId"]
	var req struct {
		WidgetIDs []string `json:"widgetIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.svc.ReorderWidgets(r.Context(), actor.ActorID, tabID, req.WidgetIDs); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// UpdateVisibleFields PUT /api/tabs/{tabId}/widgets/{widgetId}/fields
func (h *Handlers) UpdateVisibleFields(w http.ResponseWriter, r *http.Request) {
	actor := h.authorizeMutation(w, r)
	if actor == nil {
		return
	}
	vars := mux.Vars(r)
	var req struct {
		VisibleFields []string `json:"visibleFields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	// An empty list would wipe the widget's columns; the editor always
	// submits at least one field.
	if len(req.VisibleFields) == 0 {
		respond.WriteBadRequest(w, "visibleFields is required")
		return
	}
	if err := h.svc.UpdateVisibleFields(r.Context(), actor.ActorID, vars["tabId"], vars["widgetId"], req.VisibleFields); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// FetchWidgetPage GET /api/tabs/{tabId}/widgets/{widgetId}/page?page=N&includePagination=1
// Returns the page data plus rendered HTML fragments for the item list
// and, when requested, the pagination controls.
func (h *Handlers) FetchWidgetPage(w http.ResponseWriter, r *http.Request) {
	actor := h.authorize(w, r)
	if actor == nil {
		return
	}
	vars := mux.Vars(r)
	pageNum, err := validate.Page(r.URL.Query().Get("page"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	widget, page, err := h.svc.FetchPage(r.Context(), actor.ActorID, vars["tabId"], vars["widgetId"], pageNum)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	html, err := h.renderer.ItemList(page, widget.Args.VisibleFields)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	resp := map[string]interface{}{
		"ok":   true,
		"page": page,
		"html": html,
	}
	if r.URL.Query().Get("includePagination") == "1" {
		pagination, err := h.renderer.Pagination(page)
		if err != nil {
			respond.WriteInternalError(w, err.Error())
			return
		}
		resp["paginationHtml"] = pagination
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}
