// Package storetest holds a compliance suite every store driver must pass.
package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/store"
)

// Run exercises the store contract against a fresh, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	userID := "u-" + uuid.New().String()

	// Tabs keep insertion order.
	first, err := s.Tabs().Add(ctx, userID, "Marketing")
	require.NoError(t, err)
	second, err := s.Tabs().Add(ctx, userID, "Editorial")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	tabs, err := s.Tabs().List(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []model.Tab{{TabID: first, Name: "Marketing"}, {TabID: second, Name: "Editorial"}}, tabs)

	// Widgets append in order under their tab.
	wa, err := s.Widgets().Add(ctx, userID, &model.Widget{TabID: first, Type: "content-list", Args: model.WidgetArgs{Title: "A"}})
	require.NoError(t, err)
	wb, err := s.Widgets().Add(ctx, userID, &model.Widget{TabID: first, Type: "content-list", Args: model.WidgetArgs{Title: "B"}})
	require.NoError(t, err)

	byTab, err := s.Widgets().ListByTab(ctx, userID)
	require.NoError(t, err)
	require.Len(t, byTab[first], 2)
	require.Equal(t, wa, byTab[first][0].WidgetID)
	require.Equal(t, wb, byTab[first][1].WidgetID)

	// Reorder replaces the ordering and keeps stored args.
	require.NoError(t, s.Widgets().Reorder(ctx, userID, first, []string{wb, wa}))
	byTab, err = s.Widgets().ListByTab(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, wb, byTab[first][0].WidgetID)
	require.Equal(t, "B", byTab[first][0].Args.Title)
	require.Equal(t, wa, byTab[first][1].WidgetID)
	require.Equal(t, "A", byTab[first][1].Args.Title)

	// Omitting an ID from the reorder sequence drops the widget.
	require.NoError(t, s.Widgets().Reorder(ctx, userID, first, []string{wa}))
	byTab, err = s.Widgets().ListByTab(ctx, userID)
	require.NoError(t, err)
	require.Len(t, byTab[first], 1)
	require.Equal(t, wa, byTab[first][0].WidgetID)

	// Partial args update leaves the rest intact.
	fields, _ := json.Marshal([]string{"author", "status"})
	require.NoError(t, s.Widgets().SetArgsField(ctx, userID, first, wa, "visibleFields", fields))
	got, err := s.Widgets().Get(ctx, userID, first, wa)
	require.NoError(t, err)
	require.Equal(t, "A", got.Args.Title)
	require.Equal(t, []string{"author", "status"}, got.Args.VisibleFields)

	// Removing an absent widget is a no-op, not an error.
	require.NoError(t, s.Widgets().Remove(ctx, userID, first, "no-such-widget"))
	require.NoError(t, s.Widgets().Remove(ctx, userID, first, wa))
	require.NoError(t, s.Widgets().Remove(ctx, userID, first, wa))

	// Widget adds do not verify the tab; the orphan sweep cleans up.
	orphan, err := s.Widgets().Add(ctx, userID, &model.Widget{TabID: "ghost-tab", Type: "content-list"})
	require.NoError(t, err)
	_ = orphan
	pruned, err := s.Widgets().PruneOrphans(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, pruned)

	// Cascade tab removal deletes the tab's widgets.
	wc, err := s.Widgets().Add(ctx, userID, &model.Widget{TabID: second, Type: "external-feed"})
	require.NoError(t, err)
	require.NoError(t, s.Tabs().Remove(ctx, userID, second, true))
	byTab, err = s.Widgets().ListByTab(ctx, userID)
	require.NoError(t, err)
	require.NotContains(t, byTab, second)
	_, err = s.Widgets().Get(ctx, userID, second, wc)
	require.ErrorIs(t, err, model.ErrNotFound)

	// Preferences default to the zero value and round-trip.
	prefs, err := s.Preferences().Get(ctx, userID)
	require.NoError(t, err)
	require.False(t, prefs.RedirectDashboard)
	require.NoError(t, s.Preferences().Set(ctx, userID, &model.Preferences{RedirectDashboard: true}))
	prefs, err = s.Preferences().Get(ctx, userID)
	require.NoError(t, err)
	require.True(t, prefs.RedirectDashboard)
}
