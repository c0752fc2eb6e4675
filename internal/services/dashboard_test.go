package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homeboard/homeboard/internal/content"
	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/store/sqlite"
	"github.com/homeboard/homeboard/internal/widget"
)

// stubRepo resolves labels from fixed maps and records the last query spec
// Search received. Labels are mutable so tests can simulate repository-side
// drift between add and fetch.
type stubRepo struct {
	typeLabels  map[string]string
	termNames   map[int]string
	statuses    map[string]string
	authorNames map[int]string

	lastSpec model.QuerySpec
	lastPage int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		typeLabels:  map[string]string{"post": "Posts", "page": "Pages"},
		termNames:   map[int]string{7: "News"},
		statuses:    map[string]string{"published": "Published", "draft": "Draft"},
		authorNames: map[int]string{3: "Pat Doe"},
	}
}

func (r *stubRepo) Search(_ context.Context, spec model.QuerySpec, page int) (*model.Page, error) {
	r.lastSpec = spec
	r.lastPage = page
	return &model.Page{Page: page, TotalItems: 1, TotalPages: 1, ItemsOnPage: 1, FirstItem: 1, LastItem: 1}, nil
}

func (r *stubRepo) ContentTypes(context.Context) ([]content.Option, error) {
	return []content.Option{{Key: "post", Label: "Posts"}, {Key: "page", Label: "Pages"}}, nil
}

func (r *stubRepo) TypeLabel(_ context.Context, name string) (string, error) {
	return r.lookup(r.typeLabels[name])
}

func (r *stubRepo) Terms(context.Context) ([]content.Option, error) {
	return []content.Option{{Key: "term_7", Label: "News"}}, nil
}

func (r *stubRepo) TermName(_ context.Context, termID int) (string, error) {
	return r.lookup(r.termNames[termID])
}

func (r *stubRepo) Statuses(context.Context) ([]content.Option, error) {
	return []content.Option{{Key: "published", Label: "Published"}}, nil
}

func (r *stubRepo) StatusLabel(_ context.Context, status string) (string, error) {
	return r.lookup(r.statuses[status])
}

func (r *stubRepo) Authors(context.Context) ([]content.Option, error) {
	return []content.Option{{Key: "user_3", Label: "Pat Doe"}}, nil
}

func (r *stubRepo) AuthorName(_ context.Context, authorID int) (string, error) {
	return r.lookup(r.authorNames[authorID])
}

func (r *stubRepo) lookup(label string) (string, error) {
	if label == "" {
		return "", model.ErrNotFound
	}
	return label, nil
}

func newService(t *testing.T) (*DashboardService, *stubRepo) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "homeboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Bootstrap(context.Background(), db))

	repo := newStubRepo()
	st := sqlite.NewWithDB(db)
	return NewDashboardService(st, repo, widget.NewRegistry(repo)), repo
}

func TestDashboardService_AddWidgetNormalizes(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tabID, err := svc.AddTab(ctx, "u1", "Editorial")
	require.NoError(t, err)

	raw := model.RawArgs{
		"title":         {"My <b>Feed</b>"},
		"content_types": {"post"},
		"categories":    {"term_7"},
		"order_by":      {"modified"},
	}
	widgetID, err := svc.AddWidget(ctx, "u1", tabID, widget.TypeContentList, raw)
	require.NoError(t, err)

	view, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Tabs, 1)
	require.Len(t, view.Widgets[tabID], 1)

	w := view.Widgets[tabID][0]
	require.Equal(t, widgetID, w.WidgetID)
	require.Equal(t, "My &lt;b&gt;Feed&lt;/b&gt;", w.Args.Title)
	require.Equal(t, []string{"post"}, w.Args.QuerySpec.Types)
	require.Equal(t, []int{7}, w.Args.QuerySpec.TermIDs)
	require.Equal(t, "modified", w.Args.QuerySpec.SortBy)
	require.Equal(t, raw, w.Args.OriginalSelection)
	require.Contains(t, w.Args.VisibleFields, widget.FieldModifiedDate)
}

func TestDashboardService_AddWidgetUnknownType(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.AddWidget(context.Background(), "u1", "t1", "sparkline", model.RawArgs{})
	require.ErrorIs(t, err, model.ErrUnknownWidgetType)
}

func TestDashboardService_FetchPageReNormalizes(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	tabID, err := svc.AddTab(ctx, "u1", "Main")
	require.NoError(t, err)
	widgetID, err := svc.AddWidget(ctx, "u1", tabID, widget.TypeContentList, model.RawArgs{
		"content_types": {"post"},
		"statuses":      {"published", "draft"},
	})
	require.NoError(t, err)

	// A status disappearing from the repository must not surface stale
	// stored state: the spec is rebuilt from the original selection.
	delete(repo.statuses, "draft")

	w, page, err := svc.FetchPage(ctx, "u1", tabID, widgetID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, repo.lastPage)
	require.Equal(t, []string{"published", "draft"}, repo.lastSpec.Statuses)
	require.Equal(t, 2, page.Page)
	require.Equal(t, widgetID, w.WidgetID)
}

func TestDashboardService_FetchPageMissingWidget(t *testing.T) {
	svc, _ := newService(t)
	_, _, err := svc.FetchPage(context.Background(), "u1", "t1", "nope", 1)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDashboardService_FetchPageFeedWidget(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tabID, err := svc.AddTab(ctx, "u1", "Main")
	require.NoError(t, err)
	widgetID, err := svc.AddWidget(ctx, "u1", tabID, widget.TypeExternalFeed, model.RawArgs{
		"feed_url": {"https://example.com/feed"},
	})
	require.NoError(t, err)

	_, _, err = svc.FetchPage(ctx, "u1", tabID, widgetID, 1)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestDashboardService_UpdateVisibleFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tabID, err := svc.AddTab(ctx, "u1", "Main")
	require.NoError(t, err)
	widgetID, err := svc.AddWidget(ctx, "u1", tabID, widget.TypeContentList, model.RawArgs{
		"title": {"Posts"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateVisibleFields(ctx, "u1", tabID, widgetID, []string{widget.FieldAuthor}))

	view, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	w := view.Widgets[tabID][0]
	require.Equal(t, []string{widget.FieldAuthor}, w.Args.VisibleFields)
	require.Equal(t, "Posts", w.Args.Title)
}

func TestDashboardService_PruneOrphanWidgets(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tabID, err := svc.AddTab(ctx, "u1", "Keep")
	require.NoError(t, err)
	_, err = svc.AddWidget(ctx, "u1", tabID, widget.TypeContentList, model.RawArgs{})
	require.NoError(t, err)

	// Widgets may land before their tab exists; several of them stay
	// orphaned when the tab never materializes.
	for i := 0; i < 2; i++ {
		_, err = svc.AddWidget(ctx, "u1", fmt.Sprintf("ghost-%d", i), widget.TypeContentList, model.RawArgs{})
		require.NoError(t, err)
	}

	n, err := svc.PruneOrphanWidgets(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	view, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Widgets[tabID], 1)
}

func TestDashboardService_Preferences(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	prefs, err := svc.Preferences(ctx, "u1")
	require.NoError(t, err)
	require.False(t, prefs.RedirectDashboard)

	require.NoError(t, svc.UpdatePreferences(ctx, "u1", &model.Preferences{RedirectDashboard: true}))
	prefs, err = svc.Preferences(ctx, "u1")
	require.NoError(t, err)
	require.True(t, prefs.RedirectDashboard)
}
