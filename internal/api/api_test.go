package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeboard/homeboard/internal/auth"
	"github.com/homeboard/homeboard/internal/content"
	"github.com/homeboard/homeboard/internal/feed"
	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/render"
	"github.com/homeboard/homeboard/internal/services"
	"github.com/homeboard/homeboard/internal/store/sqlite"
	"github.com/homeboard/homeboard/internal/widget"
)

// fixedRepo serves a deterministic 12-item corpus so pagination is
// exercised end to end.
type fixedRepo struct{}

func (fixedRepo) Search(_ context.Context, _ model.QuerySpec, page int) (*model.Page, error) {
	const total, perPage = 12, 10
	first := (page-1)*perPage + 1
	if first > total {
		return &model.Page{Page: page, TotalItems: total, TotalPages: 2}, nil
	}
	last := first + perPage - 1
	if last > total {
		last = total
	}
	var items []model.ContentItem
	for i := first; i <= last; i++ {
		items = append(items, model.ContentItem{
			ItemID:     fmt.Sprintf("item-%d", i),
			Title:      fmt.Sprintf("Item %d", i),
			AuthorName: "Pat Doe",
		})
	}
	return &model.Page{
		Items: items, Page: page, ItemsOnPage: len(items),
		TotalItems: total, TotalPages: 2,
		FirstItem: first, LastItem: last,
		HasPrevious: first > 1, HasNext: last < total,
	}, nil
}

func (fixedRepo) ContentTypes(context.Context) ([]content.Option, error) {
	return []content.Option{{Key: "post", Label: "Posts"}}, nil
}
func (fixedRepo) TypeLabel(_ context.Context, name string) (string, error) {
	if name != "post" {
		return "", model.ErrNotFound
	}
	return "Posts", nil
}
func (fixedRepo) Terms(context.Context) ([]content.Option, error)   { return nil, nil }
func (fixedRepo) TermName(context.Context, int) (string, error)     { return "", model.ErrNotFound }
func (fixedRepo) Statuses(context.Context) ([]content.Option, error) { return nil, nil }
func (fixedRepo) StatusLabel(context.Context, string) (string, error) {
	return "", model.ErrNotFound
}
func (fixedRepo) Authors(context.Context) ([]content.Option, error) { return nil, nil }
func (fixedRepo) AuthorName(context.Context, int) (string, error)   { return "", model.ErrNotFound }

type testServer struct {
	srv   *httptest.Server
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "homeboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Bootstrap(context.Background(), db))

	st := sqlite.NewWithDB(db)
	repo := fixedRepo{}
	svc := services.NewDashboardService(st, repo, widget.NewRegistry(repo))
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", "homeboard-test", time.Hour)

	h := NewHandlers(svc, auth.NewMockAuthorizer(), tokens, "use_dashboard", render.New(), feed.New(time.Second))
	healthStore, ok := st.(Pinger)
	require.True(t, ok)
	router := NewRouter(h, NewHealthHandler(healthStore))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	ts := &testServer{srv: srv}
	ts.token = ts.openSession(t)
	return ts
}

func (ts *testServer) openSession(t *testing.T) string {
	t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	resp := ts.do(t, "POST", "/api/session", nil, false)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, withToken bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.LocalDevAPIKey)
	if withToken {
		req.Header.Set(auth.MutationTokenHeader, ts.token)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	rr := httptest.NewRecorder()
	rr.Code = resp.StatusCode
	_, err = rr.Body.ReadFrom(resp.Body)
	require.NoError(t, err)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestAPI_RequiresAPIKey(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest("GET", ts.srv.URL+"/api/dashboard", nil)
	require.NoError(t, err)
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_MutationRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "POST", "/api/tabs", map[string]string{"name": "Main"}, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAPI_TabLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "POST", "/api/tabs", map[string]string{"name": " Editorial <b>x</b> "}, true)
	require.Equal(t, http.StatusCreated, rr.Code)
	out := decode(t, rr)
	tabID := out["tabId"].(string)
	assert.Equal(t, "Editorial x", out["name"])

	rr = ts.do(t, "GET", "/api/dashboard", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decode(t, rr)["dashboard"].(map[string]interface{})
	require.Len(t, dash["tabs"], 1)
	types := dash["widgetTypes"].([]interface{})
	assert.Len(t, types, 2)

	rr = ts.do(t, "DELETE", "/api/tabs/"+tabID, nil, true)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, "GET", "/api/dashboard", nil, false)
	dash = decode(t, rr)["dashboard"].(map[string]interface{})
	assert.Empty(t, dash["tabs"])
}

func TestAPI_TabValidation(t *testing.T) {
	ts := newTestServer(t)

	// A tab without a name is legal; it stores the empty string.
	rr := ts.do(t, "POST", "/api/tabs", map[string]string{}, true)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "", decode(t, rr)["name"])

	// Markup-only names sanitize down to the empty string and are kept.
	rr = ts.do(t, "POST", "/api/tabs", map[string]string{"name": "<br/>"}, true)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "", decode(t, rr)["name"])

	// Over-long names are rejected.
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	rr = ts.do(t, "POST", "/api/tabs", map[string]string{"name": string(long)}, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_WidgetLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "POST", "/api/tabs", map[string]string{"name": "Main"}, true)
	tabID := decode(t, rr)["tabId"].(string)

	addWidget := func(title string) string {
		rr := ts.do(t, "POST", "/api/tabs/"+tabID+"/widgets", map[string]interface{}{
			"type": "content-list",
			"args": map[string]interface{}{"title": title, "content_types": []string{"post"}},
		}, true)
		require.Equal(t, http.StatusCreated, rr.Code)
		return decode(t, rr)["widgetId"].(string)
	}
	wa := addWidget("Alpha")
	wb := addWidget("Beta")

	// Reorder, dropping nothing.
	rr = ts.do(t, "PUT", "/api/tabs/"+tabID+"/widgets/order", map[string]interface{}{
		"widgetIds": []string{wb, wa},
	}, true)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, "GET", "/api/dashboard", nil, false)
	dash := decode(t, rr)["dashboard"].(map[string]interface{})
	widgets := dash["widgets"].(map[string]interface{})[tabID].([]interface{})
	require.Len(t, widgets, 2)
	assert.Equal(t, wb, widgets[0].(map[string]interface{})["widgetId"])

	// Unknown widget type is a 400.
	rr = ts.do(t, "POST", "/api/tabs/"+tabID+"/widgets", map[string]interface{}{
		"type": "sparkline", "args": map[string]interface{}{},
	}, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Remove is idempotent.
	rr = ts.do(t, "DELETE", "/api/tabs/"+tabID+"/widgets/"+wa, nil, true)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.do(t, "DELETE", "/api/tabs/"+tabID+"/widgets/"+wa, nil, true)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestAPI_FetchWidgetPage(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "POST", "/api/tabs", map[string]string{"name": "Main"}, true)
	tabID := decode(t, rr)["tabId"].(string)

	rr = ts.do(t, "POST", "/api/tabs/"+tabID+"/widgets", map[string]interface{}{
		"type": "content-list",
		"args": map[string]interface{}{"content_types": []string{"post"}},
	}, true)
	widgetID := decode(t, rr)["widgetId"].(string)

	rr = ts.do(t, "GET", "/api/tabs/"+tabID+"/widgets/"+widgetID+"/page?page=2&includePagination=1", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	out := decode(t, rr)

	page := out["page"].(map[string]interface{})
	assert.Equal(t, float64(11), page["firstItem"])
	assert.Equal(t, float64(12), page["lastItem"])
	assert.Equal(t, true, page["hasPrevious"])
	assert.Equal(t, false, page["hasNext"])

	assert.Contains(t, out["html"], "Item 11")
	assert.Contains(t, out["paginationHtml"], "hb-page-prev")
	assert.NotContains(t, out["paginationHtml"], "hb-page-next")

	// A fetch without a page parameter is a 400 naming the parameter.
	rr = ts.do(t, "GET", "/api/tabs/"+tabID+"/widgets/"+widgetID+"/page", nil, false)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "page")

	// So is a non-positive page.
	rr = ts.do(t, "GET", "/api/tabs/"+tabID+"/widgets/"+widgetID+"/page?page=0", nil, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Missing widget is a 404.
	rr = ts.do(t, "GET", "/api/tabs/"+tabID+"/widgets/nope/page?page=1", nil, false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_VisibleFields(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "POST", "/api/tabs", map[string]string{"name": "Main"}, true)
	tabID := decode(t, rr)["tabId"].(string)
	rr = ts.do(t, "POST", "/api/tabs/"+tabID+"/widgets", map[string]interface{}{
		"type": "content-list", "args": map[string]interface{}{},
	}, true)
	widgetID := decode(t, rr)["widgetId"].(string)

	// An empty field list would blank every column, so it is rejected.
	rr = ts.do(t, "PUT", "/api/tabs/"+tabID+"/widgets/"+widgetID+"/fields", map[string]interface{}{
		"visibleFields": []string{},
	}, true)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	rr = ts.do(t, "PUT", "/api/tabs/"+tabID+"/widgets/"+widgetID+"/fields", map[string]interface{}{}, true)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, "PUT", "/api/tabs/"+tabID+"/widgets/"+widgetID+"/fields", map[string]interface{}{
		"visibleFields": []string{"author"},
	}, true)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, "GET", "/api/dashboard", nil, false)
	dash := decode(t, rr)["dashboard"].(map[string]interface{})
	w := dash["widgets"].(map[string]interface{})[tabID].([]interface{})[0].(map[string]interface{})
	args := w["args"].(map[string]interface{})
	assert.Equal(t, []interface{}{"author"}, args["visibleFields"])
}

func TestAPI_Preferences(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "GET", "/api/preferences", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	prefs := decode(t, rr)["preferences"].(map[string]interface{})
	assert.Equal(t, false, prefs["redirectDashboard"])

	rr = ts.do(t, "PUT", "/api/preferences", map[string]bool{"redirectDashboard": true}, true)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, "GET", "/api/preferences", nil, false)
	prefs = decode(t, rr)["preferences"].(map[string]interface{})
	assert.Equal(t, true, prefs["redirectDashboard"])
}

func TestAPI_Health(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, "GET", "/api/health", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode(t, rr)["status"])

	rr = ts.do(t, "GET", "/api/health/db", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
}
