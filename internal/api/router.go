package api

import (
	"github.com/gorilla/mux"

	"github.com/homeboard/homeboard/internal/api/recovery"
)

// NewRouter wires every dashboard route onto a gorilla/mux router.
func NewRouter(h *Handlers, health *HealthHandler) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	// Health endpoints
	router.HandleFunc("/api/health", health.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health/db", health.CheckStoreHealth).Methods("GET")

	// Session
	router.HandleFunc("/api/session", h.CreateSession).Methods("POST")

	// Dashboard state
	router.HandleFunc("/api/dashboard", h.GetDashboard).Methods("GET")

	// Tabs
	router.HandleFunc("/api/tabs", h.AddTab).Methods("POST")
	router.HandleFunc("/api/tabs/{tabId}", h.RemoveTab).Methods("DELETE")

	// Widgets. The order route registers before the widgetId routes so
	// "order" never matches as an ID.
	router.HandleFunc("/api/tabs/{tabId}/widgets/order", h.ReorderWidgets).Methods("PUT")
	router.HandleFunc("/api/tabs/{tabId}/widgets", h.AddWidget).Methods("POST")
	router.HandleFunc("/api/tabs/{tabId}/widgets/{widgetId}", h.RemoveWidget).Methods("DELETE")
	router.HandleFunc("/api/tabs/{tabId}/widgets/{widgetId}/fields", h.UpdateVisibleFields).Methods("PUT")
	router.HandleFunc("/api/tabs/{tabId}/widgets/{widgetId}/page", h.FetchWidgetPage).Methods("GET")

	// Preferences
	router.HandleFunc("/api/preferences", h.GetPreferences).Methods("GET")
	router.HandleFunc("/api/preferences", h.UpdatePreferences).Methods("PUT")

	// Feed preview
	router.HandleFunc("/api/feed/preview", h.PreviewFeed).Methods("POST")

	// Maintenance
	router.HandleFunc("/api/integrity/prune", h.PruneOrphans).Methods("POST")

	return router
}
