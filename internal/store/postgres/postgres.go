package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres-backed store over database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Tabs() store.Tabs               { return &tabs{db: s.db} }
func (s *pgStore) Widgets() store.Widgets         { return &widgets{db: s.db} }
func (s *pgStore) Preferences() store.Preferences { return &preferences{db: s.db} }

// HealthPing implements api.Pinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
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
        VALUES ($1, $2, $3,
            (SELECT COALESCE(MAX(position),0)+1 FROM dashboard_tabs WHERE user_id=$1))
    `, userID, tabID, name)
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
		`DELETE FROM dashboard_tabs WHERE user_id=$1 AND tab_id=$2`, userID, tabID); err != nil {
		return err
	}
	if cascade {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM dashboard_widgets WHERE user_id=$1 AND tab_id=$2`, userID, tabID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (t *tabs) List(ctx context.Context, userID string) ([]model.Tab, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT tab_id, name FROM dashboard_tabs WHERE user_id=$1 ORDER BY position ASC`, userID)
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
        VALUES ($1, $2, $3, $4, $5,
            (SELECT COALESCE(MAX(position),0)+1 FROM dashboard_widgets WHERE user_id=$1 AND tab_id=$2))
    `, userID, wi.TabID, widgetID, wi.Type, string(args))
	if err != nil {
		return "", err
	}
	return widgetID, tx.Commit()
}

func (w *widgets) Remove(ctx context.Context, userID, tabID, widgetID string) error {
	_, err := w.db.ExecContext(ctx,
		`DELETE FROM dashboard_widgets WHERE user_id=$1 AND tab_id=$2 AND widget_id=$3`,
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
        WHERE user_id=$1 AND tab_id=$2
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
		`DELETE FROM dashboard_widgets WHERE user_id=$1 AND tab_id=$2`, userID, tabID); err != nil {
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
            VALUES ($1, $2, $3, $4, $5, $6)
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
        SELECT args FROM dashboard_widgets WHERE user_id=$1 AND tab_id=$2 AND widget_id=$3
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
        UPDATE dashboard_widgets SET args=$4 WHERE user_id=$1 AND tab_id=$2 AND widget_id=$3
    `, userID, tabID, widgetID, patched); err != nil {
		return err
	}
	return tx.Commit()
}

func (w *widgets) Get(ctx context.Context, userID, tabID, widgetID string) (*model.Widget, error) {
	var widgetType, raw string
	err := w.db.QueryRowContext(ctx, `
        SELECT widget_type, args FROM dashboard_widgets WHERE user_id=$1 AND tab_id=$2 AND widget_id=$3
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
        WHERE user_id=$1 ORDER BY tab_id, position ASC
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
        DELETE FROM dashboard_widgets WHERE user_id=$1 AND tab_id NOT IN
            (SELECT tab_id FROM dashboard_tabs WHERE user_id=$1)
    `, userID)
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
		`SELECT redirect_dashboard FROM dashboard_preferences WHERE user_id=$1`, userID).
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
        INSERT INTO dashboard_preferences (user_id, redirect_dashboard) VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE SET redirect_dashboard=EXCLUDED.redirect_dashboard
    `, userID, prefs.RedirectDashboard)
	return err
}

// --- helpers shared with the sqlite driver via duplication ---

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
