package widget

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/homeboard/homeboard/internal/content"
	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/registry"
)

// Built-in widget type IDs.
const (
	TypeContentList  = "content-list"
	TypeExternalFeed = "external-feed"
)

// AnyContentType is the sentinel the editor submits to match every type.
const AnyContentType = "any"

// Raw submission field keys for the content-list type.
const (
	argTitle     = "title"
	argTypes     = "content_types"
	argTerms     = "categories"
	argStatuses  = "statuses"
	argAuthors   = "authors"
	argSortBy    = "order_by"
	argSortOrder = "order"
	argFeedURL   = "feed_url"
	argVisible   = "visible_fields"
)

// Selectable sort fields, in editor order.
var SortByOptions = []content.Option{
	{Key: content.SortPublishDate, Label: "Publish Date"},
	{Key: content.SortModifiedDate, Label: "Last Modified Date"},
	{Key: content.SortAuthor, Label: "Author"},
	{Key: content.SortTitle, Label: "Title"},
	{Key: content.SortContentType, Label: "Content Type"},
}

var SortOrderOptions = []content.Option{
	{Key: "DESC", Label: "Descending"},
	{Key: "ASC", Label: "Ascending"},
}

func optionLabel(opts []content.Option, key string) (string, bool) {
	for _, o := range opts {
		if o.Key == key {
			return o.Label, true
		}
	}
	return "", false
}

// Normalize resolves typeID in the registry and runs the type's normalizer.
func Normalize(ctx context.Context, reg *registry.Registry, typeID string, raw model.RawArgs) (model.WidgetArgs, error) {
	d, err := reg.Resolve(typeID)
	if err != nil {
		return model.WidgetArgs{}, err
	}
	if d.Normalize == nil {
		return model.WidgetArgs{}, fmt.Errorf("%w: %q has no normalizer", model.ErrUnknownWidgetType, typeID)
	}
	return d.Normalize(ctx, raw)
}

// ContentListNormalizer turns raw content-list submissions into stored args
// using the repository to resolve display labels.
type ContentListNormalizer struct {
	Repo content.Repository
}

// Normalize builds the query spec, the info-panel summary, and the visible
// field set for a content-list widget. Absent filter fields mean "no filter
// on that dimension". Filter values are kept even when their label cannot
// be resolved; only the summary drops them.
func (n ContentListNormalizer) Normalize(ctx context.Context, raw model.RawArgs) (model.WidgetArgs, error) {
	spec := &model.QuerySpec{}
	var info []model.InfoField

	out := model.WidgetArgs{
		Title:             html.EscapeString(raw[argTitle].First()),
		OriginalSelection: raw,
	}

	// Content types.
	if types := raw[argTypes]; len(types) > 0 {
		var summary string
		if contains(types, AnyContentType) {
			spec.AnyType = true
			summary = "All"
		} else {
			spec.Types = append([]string(nil), types...)
			var labels []string
			for _, t := range types {
				label, err := n.Repo.TypeLabel(ctx, t)
				if err != nil {
					log.Debug().Str("contentType", t).Err(err).Msg("content type label unresolved")
					continue
				}
				labels = append(labels, label)
			}
			summary = strings.Join(labels, ", ")
		}
		info = append(info, infoField(argTypes, "Content Types", summary))
	}

	// Taxonomy terms.
	if terms := raw[argTerms]; len(terms) > 0 {
		spec.TermIDs = StripIDPrefix(terms, "term_")
		var names []string
		for _, id := range spec.TermIDs {
			name, err := n.Repo.TermName(ctx, id)
			if err != nil {
				log.Debug().Int("termId", id).Err(err).Msg("term name unresolved")
				continue
			}
			names = append(names, name)
		}
		info = append(info, infoField(argTerms, "Categories", strings.Join(names, ", ")))
	}

	// Statuses.
	if statuses := raw[argStatuses]; len(statuses) > 0 {
		spec.Statuses = append([]string(nil), statuses...)
		var labels []string
		for _, st := range statuses {
			label, err := n.Repo.StatusLabel(ctx, st)
			if err != nil {
				log.Debug().Str("status", st).Err(err).Msg("status label unresolved")
				continue
			}
			labels = append(labels, label)
		}
		info = append(info, infoField(argStatuses, "Statuses", strings.Join(labels, ", ")))
	}

	// Authors.
	if authors := raw[argAuthors]; len(authors) > 0 {
		spec.AuthorIDs = StripIDPrefix(authors, "user_")
		var names []string
		for _, id := range spec.AuthorIDs {
			name, err := n.Repo.AuthorName(ctx, id)
			if err != nil {
				log.Debug().Int("authorId", id).Err(err).Msg("author name unresolved")
				continue
			}
			names = append(names, name)
		}
		info = append(info, infoField(argAuthors, "Authors", strings.Join(names, ", ")))
	}

	// Sort field and direction are stored verbatim; the repository call is
	// the enforcement point for unknown values. The summary only covers
	// values from the known option sets.
	if sortBy := raw[argSortBy].First(); sortBy != "" {
		spec.SortBy = sortBy
		if label, ok := optionLabel(SortByOptions, sortBy); ok {
			info = append(info, infoField(argSortBy, "Order By", label))
		}
	}
	if order := raw[argSortOrder].First(); order != "" {
		spec.SortOrder = order
		if label, ok := optionLabel(SortOrderOptions, order); ok {
			info = append(info, infoField(argSortOrder, "Order", label))
		}
	}

	// Visible fields: an explicit submission wins, otherwise derive from
	// filter specificity.
	if parts := raw[argVisible]; len(parts) > 0 {
		out.VisibleFields = append([]string(nil), parts...)
	} else {
		out.VisibleFields = DefaultVisibleFields(spec.Types, spec.AnyType, spec.TermIDs, spec.Statuses, spec.SortBy)
	}

	out.QuerySpec = spec
	out.InfoSummary = info
	return out, nil
}

// FeedNormalizer validates external-feed submissions.
type FeedNormalizer struct{}

func (FeedNormalizer) Normalize(_ context.Context, raw model.RawArgs) (model.WidgetArgs, error) {
	out := model.WidgetArgs{
		Title:             html.EscapeString(raw[argTitle].First()),
		OriginalSelection: raw,
	}
	out.FeedURL = SanitizeFeedURL(raw[argFeedURL].First())
	if out.FeedURL != "" {
		anchor := fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, out.FeedURL, html.EscapeString(out.FeedURL))
		out.InfoSummary = []model.InfoField{{
			Key:  argFeedURL,
			HTML: fmt.Sprintf(`<span class="hb-widget-info-label">Feed URL:</span> %s`, anchor),
		}}
	}
	return out, nil
}

// SanitizeFeedURL returns the escaped URL, or "" when absent or invalid.
func SanitizeFeedURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

// StripIDPrefix recovers bare numeric IDs from prefixed selection keys such
// as term_42 or user_7, preserving order. Values that do not parse are
// dropped.
func StripIDPrefix(values []string, prefix string) []int {
	ids := make([]int, 0, len(values))
	for _, v := range values {
		id, err := strconv.Atoi(strings.TrimPrefix(v, prefix))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func infoField(key, label, value string) model.InfoField {
	return model.InfoField{
		Key:  key,
		HTML: fmt.Sprintf(`<span class="hb-widget-info-label">%s:</span> %s`, label, html.EscapeString(value)),
	}
}

func contains(vals []string, want string) bool {
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}
