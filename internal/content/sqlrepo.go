package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/homeboard/homeboard/internal/model"
)

// Sort fields accepted by Search. Unknown sort values fall back to the
// publish date, so a stale stored spec degrades instead of erroring.
const (
	SortPublishDate  = "date"
	SortModifiedDate = "modified"
	SortAuthor       = "author"
	SortTitle        = "title"
	SortContentType  = "type"
)

const DefaultPerPage = 10

// SQLRepository implements Repository over database/sql. It works against
// both the pgx and modernc sqlite drivers; postgres placeholders are
// rewritten from the builder's ? form after the statement is assembled.
type SQLRepository struct {
	db      *sql.DB
	dollar  bool
	perPage int
}

// NewPostgres wraps a postgres connection.
func NewPostgres(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, dollar: true, perPage: DefaultPerPage}
}

// NewSQLite wraps a sqlite connection.
func NewSQLite(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, perPage: DefaultPerPage}
}

// WithPerPage overrides the page size.
func (r *SQLRepository) WithPerPage(n int) *SQLRepository {
	if n > 0 {
		r.perPage = n
	}
	return r
}

var contentSchema = []string{
	`CREATE TABLE IF NOT EXISTS content_types (
        name TEXT PRIMARY KEY,
        label TEXT NOT NULL,
        public BOOLEAN NOT NULL DEFAULT TRUE
    )`,
	`CREATE TABLE IF NOT EXISTS content_statuses (
        status TEXT PRIMARY KEY,
        label TEXT NOT NULL,
        position INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS taxonomy_terms (
        term_id INTEGER PRIMARY KEY,
        name TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS authors (
        author_id INTEGER PRIMARY KEY,
        display_name TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS content_items (
        item_id TEXT PRIMARY KEY,
        title TEXT NOT NULL DEFAULT '',
        content_type TEXT NOT NULL,
        status TEXT NOT NULL,
        author_id INTEGER NOT NULL,
        publish_date TIMESTAMP NOT NULL,
        modified_at TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS content_item_terms (
        item_id TEXT NOT NULL,
        term_id INTEGER NOT NULL,
        PRIMARY KEY (item_id, term_id)
    )`,
}

// Bootstrap creates the repository tables when they do not exist. Deployed
// environments manage this schema out of band; local targets and tests use
// this path.
func (r *SQLRepository) Bootstrap(ctx context.Context) error {
	for _, stmt := range contentSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("content schema: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) sql(b sq.Sqlizer) (string, []interface{}, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return "", nil, err
	}
	if r.dollar {
		q, err = sq.Dollar.ReplacePlaceholders(q)
		if err != nil {
			return "", nil, err
		}
	}
	return q, args, nil
}

func (r *SQLRepository) applyFilters(b sq.SelectBuilder, spec model.QuerySpec) sq.SelectBuilder {
	if !spec.AnyType && len(spec.Types) > 0 {
		b = b.Where(sq.Eq{"i.content_type": spec.Types})
	}
	if len(spec.TermIDs) > 0 {
		sub := sq.Select("item_id").From("content_item_terms").Where(sq.Eq{"term_id": spec.TermIDs})
		subSQL, subArgs, _ := sub.ToSql()
		b = b.Where("i.item_id IN ("+subSQL+")", subArgs...)
	}
	if len(spec.Statuses) > 0 {
		b = b.Where(sq.Eq{"i.status": spec.Statuses})
	}
	if len(spec.AuthorIDs) > 0 {
		b = b.Where(sq.Eq{"i.author_id": spec.AuthorIDs})
	}
	return b
}

func sortColumn(field string) string {
	switch field {
	case SortModifiedDate:
		return "i.modified_at"
	case SortAuthor:
		return "a.display_name"
	case SortTitle:
		return "i.title"
	case SortContentType:
		return "i.content_type"
	default:
		return "i.publish_date"
	}
}

func sortDirection(order string) string {
	if order == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// Search runs the spec and returns the requested page. An out-of-range page
// yields an empty item list with the correct totals, never an error.
func (r *SQLRepository) Search(ctx context.Context, spec model.QuerySpec, page int) (*model.Page, error) {
	if page < 1 {
		page = 1
	}

	countB := r.applyFilters(sq.Select("COUNT(*)").From("content_items i").
		LeftJoin("authors a ON a.author_id = i.author_id"), spec)
	countSQL, countArgs, err := r.sql(countB)
	if err != nil {
		return nil, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count content items: %w", err)
	}

	totalPages := TotalPages(total, r.perPage)

	b := sq.Select(
		"i.item_id", "i.title", "i.content_type", "COALESCE(t.label, '')",
		"i.status", "COALESCE(s.label, '')",
		"i.author_id", "COALESCE(a.display_name, '')",
		"i.publish_date", "i.modified_at",
	).
		From("content_items i").
		LeftJoin("content_types t ON t.name = i.content_type").
		LeftJoin("content_statuses s ON s.status = i.status").
		LeftJoin("authors a ON a.author_id = i.author_id")
	b = r.applyFilters(b, spec).
		OrderBy(sortColumn(spec.SortBy)+" "+sortDirection(spec.SortOrder), "i.item_id ASC").
		Limit(uint64(r.perPage)).
		Offset(uint64((page - 1) * r.perPage))

	querySQL, queryArgs, err := r.sql(b)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("query content items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.ContentItem
	for rows.Next() {
		var it model.ContentItem
		if err := rows.Scan(
			&it.ItemID, &it.Title, &it.ContentType, &it.TypeLabel,
			&it.Status, &it.StatusLabel,
			&it.AuthorID, &it.AuthorName,
			&it.PublishDate, &it.ModifiedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachTerms(ctx, items); err != nil {
		return nil, err
	}

	first, last := Window(page, len(items), total, totalPages)
	return &model.Page{
		Items:       items,
		Page:        page,
		ItemsOnPage: len(items),
		TotalItems:  total,
		TotalPages:  totalPages,
		FirstItem:   first,
		LastItem:    last,
		HasPrevious: HasPrevious(first),
		HasNext:     HasNext(last, total),
	}, nil
}

func (r *SQLRepository) attachTerms(ctx context.Context, items []model.ContentItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i, it := range items {
		ids[i] = it.ItemID
		index[it.ItemID] = i
	}
	b := sq.Select("ct.item_id", "tt.name").
		From("content_item_terms ct").
		Join("taxonomy_terms tt ON tt.term_id = ct.term_id").
		Where(sq.Eq{"ct.item_id": ids}).
		OrderBy("tt.name ASC")
	q, args, err := r.sql(b)
	if err != nil {
		return err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("query item terms: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var itemID, name string
		if err := rows.Scan(&itemID, &name); err != nil {
			return err
		}
		if i, ok := index[itemID]; ok {
			items[i].Terms = append(items[i].Terms, name)
		}
	}
	return rows.Err()
}

// --- Label and option lookups ---

func (r *SQLRepository) ContentTypes(ctx context.Context) ([]Option, error) {
	q, args, err := r.sql(sq.Select("name", "label").From("content_types").
		Where(sq.Eq{"public": true}).OrderBy("label ASC"))
	if err != nil {
		return nil, err
	}
	return r.queryOptions(ctx, q, args, "")
}

func (r *SQLRepository) TypeLabel(ctx context.Context, name string) (string, error) {
	q, args, err := r.sql(sq.Select("label").From("content_types").Where(sq.Eq{"name": name}))
	if err != nil {
		return "", err
	}
	return r.queryLabel(ctx, q, args)
}

func (r *SQLRepository) Terms(ctx context.Context) ([]Option, error) {
	q, args, err := r.sql(sq.Select("term_id", "name").From("taxonomy_terms").OrderBy("name ASC"))
	if err != nil {
		return nil, err
	}
	return r.queryOptions(ctx, q, args, "term_")
}

func (r *SQLRepository) TermName(ctx context.Context, termID int) (string, error) {
	q, args, err := r.sql(sq.Select("name").From("taxonomy_terms").Where(sq.Eq{"term_id": termID}))
	if err != nil {
		return "", err
	}
	return r.queryLabel(ctx, q, args)
}

func (r *SQLRepository) Statuses(ctx context.Context) ([]Option, error) {
	q, args, err := r.sql(sq.Select("status", "label").From("content_statuses").OrderBy("position ASC"))
	if err != nil {
		return nil, err
	}
	return r.queryOptions(ctx, q, args, "")
}

func (r *SQLRepository) StatusLabel(ctx context.Context, status string) (string, error) {
	q, args, err := r.sql(sq.Select("label").From("content_statuses").Where(sq.Eq{"status": status}))
	if err != nil {
		return "", err
	}
	return r.queryLabel(ctx, q, args)
}

func (r *SQLRepository) Authors(ctx context.Context) ([]Option, error) {
	q, args, err := r.sql(sq.Select("author_id", "display_name").From("authors").OrderBy("display_name ASC"))
	if err != nil {
		return nil, err
	}
	return r.queryOptions(ctx, q, args, "user_")
}

func (r *SQLRepository) AuthorName(ctx context.Context, authorID int) (string, error) {
	q, args, err := r.sql(sq.Select("display_name").From("authors").Where(sq.Eq{"author_id": authorID}))
	if err != nil {
		return "", err
	}
	return r.queryLabel(ctx, q, args)
}

func (r *SQLRepository) queryOptions(ctx context.Context, q string, args []interface{}, keyPrefix string) ([]Option, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var opts []Option
	for rows.Next() {
		var key, label string
		if err := rows.Scan(&key, &label); err != nil {
			return nil, err
		}
		opts = append(opts, Option{Key: keyPrefix + key, Label: label})
	}
	return opts, rows.Err()
}

func (r *SQLRepository) queryLabel(ctx context.Context, q string, args []interface{}) (string, error) {
	var label string
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&label); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", err
	}
	return label, nil
}
