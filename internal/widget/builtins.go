package widget

import (
	"context"

	"github.com/homeboard/homeboard/internal/content"
	"github.com/homeboard/homeboard/internal/registry"
)

// NewRegistry builds a registry with the two built-in widget types wired to
// the given content repository. Callers may register additional types or
// overwrite the built-ins afterwards.
func NewRegistry(repo content.Repository) *registry.Registry {
	reg := registry.New()
	reg.Register(ContentListDescriptor(repo))
	reg.Register(FeedDescriptor())
	return reg
}

// ContentListDescriptor is the schema for the content-list widget type.
// Select fields resolve their values against the repository when listed,
// since the selectable types, terms, and authors change over time.
func ContentListDescriptor(repo content.Repository) registry.Descriptor {
	return registry.Descriptor{
		ID:    TypeContentList,
		Label: "Content List",
		Fields: []registry.FieldSpec{
			{Key: argTitle, Label: "Widget Title", Kind: registry.KindText},
			{
				Key: argTypes, Label: "Content Types", Kind: registry.KindSelectMultiple,
				Placeholder: "Select a Content Type",
				Options:     contentTypeOptions(repo),
			},
			{
				Key: argTerms, Label: "Categories", Kind: registry.KindSelectMultiple,
				Placeholder: "Select a Category",
				Options:     repoOptions(repo.Terms),
			},
			{
				Key: argStatuses, Label: "Statuses", Kind: registry.KindSelectMultiple,
				Placeholder: "Select a Status",
				Options:     repoOptions(repo.Statuses),
			},
			{
				Key: argAuthors, Label: "Authors", Kind: registry.KindSelectMultiple,
				Placeholder: "Select an Author",
				Options:     repoOptions(repo.Authors),
			},
			{Key: argSortBy, Label: "Order By", Kind: registry.KindSelect, Options: registry.StaticOptions(SortByOptions)},
			{Key: argSortOrder, Label: "Order", Kind: registry.KindSelect, Options: registry.StaticOptions(SortOrderOptions)},
		},
		Normalize: ContentListNormalizer{Repo: repo}.Normalize,
	}
}

// FeedDescriptor is the schema for the external-feed widget type.
func FeedDescriptor() registry.Descriptor {
	return registry.Descriptor{
		ID:    TypeExternalFeed,
		Label: "External Feed",
		Fields: []registry.FieldSpec{
			{Key: argTitle, Label: "Widget Title", Kind: registry.KindText},
			{Key: argFeedURL, Label: "Feed URL", Kind: registry.KindText},
		},
		Normalize: FeedNormalizer{}.Normalize,
	}
}

// repoOptions adapts a repository option source, which lists the same
// values for everyone, to the viewer-aware signature the registry expects.
func repoOptions(src func(ctx context.Context) ([]content.Option, error)) registry.OptionsFunc {
	return func(ctx context.Context, _ string) ([]content.Option, error) {
		return src(ctx)
	}
}

// contentTypeOptions prepends the "any" sentinel to the repository's
// selectable types.
func contentTypeOptions(repo content.Repository) registry.OptionsFunc {
	return func(ctx context.Context, _ string) ([]content.Option, error) {
		types, err := repo.ContentTypes(ctx)
		if err != nil {
			return nil, err
		}
		return append([]content.Option{{Key: AnyContentType, Label: "Any"}}, types...), nil
	}
}
