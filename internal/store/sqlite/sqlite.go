package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/store"
)

// Open opens (or creates) a SQLite database file. Foreign keys stay off;
// the dashboard schema deliberately has no cross-table constraints.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Serialized access keeps per-user read-modify-write atomic locally.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a sqlite-backed store over an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Tabs() store.Tabs               { return &tabs{db: s.db} }
func (s *liteStore) Widgets() store.Widgets         { return &widgets{db: s.db} }
func (s *liteStore) Preferences() store.Preferences { return &preferences{db: s.db} }

// HealthPing implements api.Pinger.
func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap creates the dashboard tables when they do not exist.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range store.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("dashboard schema: %w", err)
		}
	}
	return nil
}

// --- Tabs ---

type tabs struct{ db *sql.DB }

func (t *tabs) Add(ctx context.Context, userID, name string) (string, error) {
	tabID := uuid.New().String()
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO dashboard_tabs (user_id, tab_id, name, position)
        VALUES (?, ?, ?,
            (SELECT COALESCE(MAX(position),0)+1 FROM dashboard_tabs WHERE user_id=?))
    `, userID, tabID, name, userID)
	if err != nil {
		return "", err
	}
	return tabID, tx.Commit()
}

func (t *tabs) Remove(ctx context.Context, userID, tabID string, cascade bool) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM dashboard_tabs WHERE user_id=? AND tab_id=?`, userID, tabID); err != nil {
		return err
	}
	if cascade {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM dashboard_widgets WHERE user_id=? AND tab_id=?`, userID, tabID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (t *tabs) List(ctx context.Context, userID string) ([]model.Tab, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT tab_id, name FROM dashboard_tabs WHERE user_id=? ORDER BY position ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Tab
	for rows.Next() {
		var tb model.Tab
		if err := rows.Scan(&tb.TabID, &tb.Name); err != nil {
			return nil, err
		}
		out = append(out, tb)
	}
	return out, rows.Err()
}

// --- Widgets ---

type widgets struct{ db *sql.DB }

func (w *widgets) Add(ctx context.Context, userID string, wi *model.Widget) (string, error) {
	widgetID := wi.WidgetID
	if widgetID == "" {
		widgetID = uuid.New().String()
	}
	args, err := json.Marshal(wi.Args)
	if err != nil {
		return "", err
	}
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO dashboard_widgets (user_id, tab_id, widget_id, widget_type, args, position)
        VALUES (?, ?, ?, ?, ?,
            (SELECT COALESCE(MAX(position),0)+1 FROM dashboard_widgets WHERE user_id=? AND tab_id=?))
    `, userID, wi.TabID, widgetID, wi.Type, string(args), userID, wi.TabID)
	if err != nil {
		return "", err
	}
	return widgetID, tx.Commit()
}

func (w *widgets) Remove(ctx context.Context, userID, tabID, widgetID string) error {
	_, err := w.db.ExecContext(ctx,
		`DELETE FROM dashboard_widgets WHERE user_id=? AND tab_id=? AND widget_id=?`,
		userID, tabID, widgetID)
	return err
}

func (w *widgets) Reorder(ctx context.Context, userID, tabID string, orderedIDs []string) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
        SELECT widget_id, widget_type, args FROM dashboard_widgets
        WHERE user_id=? AND tab_id=?
    `, userID, tabID)
	if err != nil {
		return err
	}
	type stored struct{ widgetType, args string }
	existing := make(map[string]stored)
	for rows.Next() {
		var id string
		var st stored
		if err := rows.Scan(&id, &st.widgetType, &st.args); err != nil {
			_ = rows.Close()
			return err
		}
		existing[id] = st
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM dashboard_widgets WHERE user_id=? AND tab_id=?`, userID, tabID); err != nil {
		return err
	}
	pos := 0
	for _, id := range orderedIDs {
		st, ok := existing[id]
		if !ok {
			continue
		}
		pos++
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO dashboard_widgets (user_id, tab_id, widget_id, widget_type, args, position)
            VALUES (?, ?, ?, ?, ?, ?)
        `, userID, tabID, id, st.widgetType, st.args, pos); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (w *widgets) SetArgsField(ctx context.Context, userID, tabID, widgetID, field string, value json.RawMessage) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx, `
        SELECT args FROM dashboard_widgets WHERE user_id=? AND tab_id=? AND widget_id=?
    `, userID, tabID, widgetID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("widget %s: %w", widgetID, model.ErrNotFound)
	}
	if err != nil {
		return err
	}
	patched, err := patchArgsField(raw, field, value)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE dashboard_widgets SET args=? WHERE user_id=? AND tab_id=? AND widget_id=?
    `, patched, userID, tabID, widgetID); err != nil {
		return err
	}
	return tx.Commit()
}

func (w *widgets) Get(ctx context.Context, userID, tabID, widgetID string) (*model.Widget, error) {
	var widgetType, raw string
	err := w.db.QueryRowContext(ctx, `
        SELECT widget_type, args FROM dashboard_widgets WHERE user_id=? AND tab_id=? AND widget_id=?
    `, userID, tabID, widgetID).Scan(&widgetType, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("widget %s: %w", widgetID, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeWidget(widgetID, tabID, widgetType, raw)
}

func (w *widgets) ListByTab(ctx context.Context, userID string) (map[string][]model.Widget, error) {
	rows, err := w.db.QueryContext(ctx, `
        SELECT tab_id, widget_id, widget_type, args FROM dashboard_widgets
        WHERE user_id=? ORDER BY tab_id, position ASC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]model.Widget)
	for rows.Next() {
		var tabID, widgetID, widgetType, raw string
		if err := rows.Scan(&tabID, &widgetID, &widgetType, &raw); err != nil {
			return nil, err
		}
		wi, err := decodeWidget(widgetID, tabID, widgetType, raw)
		if err != nil {
			return nil, err
		}
		out[tabID] = append(out[tabID], *wi)
	}
	return out, rows.Err()
}

func (w *widgets) PruneOrphans(ctx context.Context, userID string) (int, error) {
	res, err := w.db.ExecContext(ctx, `
        DELETE FROM dashboard_widgets WHERE user_id=? AND tab_id NOT IN
            (SELECT tab_id FROM dashboard_tabs WHERE user_id=?)
    `, userID, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// --- Preferences ---

type preferences struct{ db *sql.DB }

func (p *preferences) Get(ctx context.Context, userID string) (*model.Preferences, error) {
	var out model.Preferences
	err := p.db.QueryRowContext(ctx,
		`SELECT redirect_dashboard FROM dashboard_preferences WHERE user_id=?`, userID).
		Scan(&out.RedirectDashboard)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.Preferences{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *preferences) Set(ctx context.Context, userID string, prefs *model.Preferences) error {
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO dashboard_preferences (user_id, redirect_dashboard) VALUES (?, ?)
        ON CONFLICT (user_id) DO UPDATE SET redirect_dashboard=excluded.redirect_dashboard
    `, userID, prefs.RedirectDashboard)
	return err
}

func patchArgsField(raw, field string, value json.RawMessage) (string, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return "", fmt.Errorf("decode widget args: %w", err)
	}
	m[field] = value
	out, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeWidget(widgetID, tabID, widgetType, raw string) (*model.Widget, error) {
	var args model.WidgetArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("decode widget args: %w", err)
	}
	return &model.Widget{WidgetID: widgetID, TabID: tabID, Type: widgetType, Args: args}, nil
}
