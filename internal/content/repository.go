package content

import (
	"context"

	"github.com/homeboard/homeboard/internal/model"
)

// Option is a selectable value paired with its display label. Keys carry
// the structural prefixes the widget editor submits (term_<id>, user_<id>).
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Repository is the read-only contract against the external content store.
// Search runs a normalized query spec and returns one page of results;
// the lookup methods resolve display labels for the widget editor and the
// info-panel summaries.
type Repository interface {
	Search(ctx context.Context, spec model.QuerySpec, page int) (*model.Page, error)

	ContentTypes(ctx context.Context) ([]Option, error)
	TypeLabel(ctx context.Context, name string) (string, error)
	Terms(ctx context.Context) ([]Option, error)
	TermName(ctx context.Context, termID int) (string, error)
	Statuses(ctx context.Context) ([]Option, error)
	StatusLabel(ctx context.Context, status string) (string, error)
	Authors(ctx context.Context) ([]Option, error)
	AuthorName(ctx context.Context, authorID int) (string, error)
}
