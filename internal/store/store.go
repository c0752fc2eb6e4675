// Package store persists per-user dashboard configuration: tabs, the
// widgets under each tab, and user preferences. Implementations live under
// internal/store/<driver>/ (postgres, sqlite).
package store

import (
	"context"
	"encoding/json"

	"github.com/homeboard/homeboard/internal/model"
)

// Store exposes the persistence operations required by services. All
// operations are scoped to one user and atomic per call; concurrent
// mutations for the same user are last-write-wins.
type Store interface {
	Tabs() Tabs
	Widgets() Widgets
	Preferences() Preferences
}

type Tabs interface {
	// Add appends a tab and returns its generated ID.
	Add(ctx context.Context, userID, name string) (string, error)
	// Remove deletes a tab; with cascade it also deletes every widget
	// addressed to it. Removing an absent tab is not an error.
	Remove(ctx context.Context, userID, tabID string, cascade bool) error
	// List returns the user's tabs in insertion order.
	List(ctx context.Context, userID string) ([]model.Tab, error)
}

type Widgets interface {
	// Add appends a widget under w.TabID and returns its generated ID.
	// The tab is not required to exist; a widget added ahead of its tab
	// becomes visible once the tab does.
	Add(ctx context.Context, userID string, w *model.Widget) (string, error)
	// Remove deletes one widget; absent widgets are a no-op.
	Remove(ctx context.Context, userID, tabID, widgetID string) error
	// Reorder replaces the tab's widget ordering with exactly the given
	// sequence. IDs missing from the sequence are dropped from the tab;
	// the client always submits the complete current order.
	Reorder(ctx context.Context, userID, tabID string, orderedIDs []string) error
	// SetArgsField overwrites a single top-level field of a widget's
	// stored args without renormalizing the rest.
	SetArgsField(ctx context.Context, userID, tabID, widgetID, field string, value json.RawMessage) error
	Get(ctx context.Context, userID, tabID, widgetID string) (*model.Widget, error)
	// ListByTab returns every widget keyed by tab, each tab's slice in
	// stored order.
	ListByTab(ctx context.Context, userID string) (map[string][]model.Widget, error)
	// PruneOrphans deletes widgets whose tab no longer exists and
	// returns how many were removed.
	PruneOrphans(ctx context.Context, userID string) (int, error)
}

type Preferences interface {
	// Get returns the user's preferences, zero-valued when never set.
	Get(ctx context.Context, userID string) (*model.Preferences, error)
	Set(ctx context.Context, userID string, p *model.Preferences) error
}

// Schema holds the DDL shared by both SQL drivers.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS dashboard_tabs (
        user_id TEXT NOT NULL,
        tab_id TEXT NOT NULL,
        name TEXT NOT NULL DEFAULT '',
        position INTEGER NOT NULL,
        PRIMARY KEY (user_id, tab_id)
    )`,
	`CREATE TABLE IF NOT EXISTS dashboard_widgets (
        user_id TEXT NOT NULL,
        tab_id TEXT NOT NULL,
        widget_id TEXT NOT NULL,
        widget_type TEXT NOT NULL,
        args TEXT NOT NULL,
        position INTEGER NOT NULL,
        PRIMARY KEY (user_id, widget_id)
    )`,
	`CREATE TABLE IF NOT EXISTS dashboard_preferences (
        user_id TEXT PRIMARY KEY,
        redirect_dashboard BOOLEAN NOT NULL DEFAULT FALSE
    )`,
}
