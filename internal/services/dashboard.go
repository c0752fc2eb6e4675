// Package services holds the dashboard orchestration between the widget
// registry, the argument normalizer, the user configuration store, and the
// content repository.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/homeboard/homeboard/internal/content"
	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/registry"
	"github.com/homeboard/homeboard/internal/store"
	"github.com/homeboard/homeboard/internal/widget"
)

type DashboardService struct {
	store store.Store
	repo  content.Repository
	reg   *registry.Registry
}

func NewDashboardService(s store.Store, repo content.Repository, reg *registry.Registry) *DashboardService {
	return &DashboardService{store: s, repo: repo, reg: reg}
}

// Registry returns the widget type registry for callers that register
// additional types.
func (s *DashboardService) Registry() *registry.Registry { return s.reg }

// View is the full dashboard state sent to the client in one response.
type View struct {
	Tabs        []model.Tab                   `json:"tabs"`
	Widgets     map[string][]model.Widget     `json:"widgets"`
	WidgetTypes []registry.ResolvedDescriptor `json:"widgetTypes"`
	Preferences model.Preferences             `json:"preferences"`
}

func (s *DashboardService) Dashboard(ctx context.Context, userID string) (*View, error) {
	tabs, err := s.store.Tabs().List(ctx, userID)
	if err != nil {
		return nil, err
	}
	widgets, err := s.store.Widgets().ListByTab(ctx, userID)
	if err != nil {
		return nil, err
	}
	types, err := s.reg.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.store.Preferences().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tabs == nil {
		tabs = []model.Tab{}
	}
	if widgets == nil {
		widgets = map[string][]model.Widget{}
	}
	return &View{Tabs: tabs, Widgets: widgets, WidgetTypes: types, Preferences: *prefs}, nil
}

func (s *DashboardService) AddTab(ctx context.Context, userID, name string) (string, error) {
	tabID, err := s.store.Tabs().Add(ctx, userID, name)
	if err != nil {
		return "", err
	}
	log.Info().Str("userId", userID).Str("tabId", tabID).Msg("tab added")
	return tabID, nil
}

// RemoveTab deletes a tab and cascades to its widgets.
func (s *DashboardService) RemoveTab(ctx context.Context, userID, tabID string) error {
	if err := s.store.Tabs().Remove(ctx, userID, tabID, true); err != nil {
		return err
	}
	log.Info().Str("userId", userID).Str("tabId", tabID).Msg("tab removed")
	return nil
}

// AddWidget normalizes the raw submission for its declared type and
// persists the widget under tabID. The tab is not required to exist yet;
// the editor may add a tab and its first widget in one flow.
func (s *DashboardService) AddWidget(ctx context.Context, userID, tabID, typeID string, raw model.RawArgs) (string, error) {
	args, err := widget.Normalize(ctx, s.reg, typeID, raw)
	if err != nil {
		return "", err
	}
	widgetID, err := s.store.Widgets().Add(ctx, userID, &model.Widget{TabID: tabID, Type: typeID, Args: args})
	if err != nil {
		return "", err
	}
	log.Info().Str("userId", userID).Str("tabId", tabID).Str("widgetId", widgetID).Str("type", typeID).Msg("widget added")
	return widgetID, nil
}

func (s *DashboardService) RemoveWidget(ctx context.Context, userID, tabID, widgetID string) error {
	return s.store.Widgets().Remove(ctx, userID, tabID, widgetID)
}

func (s *DashboardService) ReorderWidgets(ctx context.Context, userID, tabID string, orderedIDs []string) error {
	return s.store.Widgets().Reorder(ctx, userID, tabID, orderedIDs)
}

// UpdateVisibleFields overwrites a content-list widget's display fields
// without re-running full normalization.
func (s *DashboardService) UpdateVisibleFields(ctx context.Context, userID, tabID, widgetID string, fields []string) error {
	value, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return s.store.Widgets().SetArgsField(ctx, userID, tabID, widgetID, "visibleFields", value)
}

// FetchPage re-runs a content-list widget's query for one page. The spec
// is re-derived from the stored original selection rather than trusted
// from the persisted copy, so repository-side drift (deleted terms,
// authors, statuses) is absorbed at view time. The widget's stored visible
// fields still apply; only the query is recomputed.
func (s *DashboardService) FetchPage(ctx context.Context, userID, tabID, widgetID string, page int) (*model.Widget, *model.Page, error) {
	w, err := s.store.Widgets().Get(ctx, userID, tabID, widgetID)
	if err != nil {
		return nil, nil, err
	}

	spec := w.Args.QuerySpec
	if len(w.Args.OriginalSelection) > 0 {
		fresh, err := widget.Normalize(ctx, s.reg, w.Type, w.Args.OriginalSelection)
		if err != nil {
			return nil, nil, err
		}
		if fresh.QuerySpec != nil {
			spec = fresh.QuerySpec
		}
	}
	if spec == nil {
		return nil, nil, fmt.Errorf("%w: widget %s has no query", model.ErrValidation, widgetID)
	}

	result, err := s.repo.Search(ctx, *spec, page)
	if err != nil {
		return nil, nil, err
	}
	return w, result, nil
}

func (s *DashboardService) Preferences(ctx context.Context, userID string) (*model.Preferences, error) {
	return s.store.Preferences().Get(ctx, userID)
}

func (s *DashboardService) UpdatePreferences(ctx context.Context, userID string, p *model.Preferences) error {
	return s.store.Preferences().Set(ctx, userID, p)
}

// PruneOrphanWidgets removes widgets whose tab no longer exists. Widget
// adds are deliberately lenient about their tab, so this sweep is the
// cleanup path for configurations that never converged.
func (s *DashboardService) PruneOrphanWidgets(ctx context.Context, userID string) (int, error) {
	n, err := s.store.Widgets().PruneOrphans(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Str("userId", userID).Int("removed", n).Msg("orphan widgets pruned")
	}
	return n, nil
}
