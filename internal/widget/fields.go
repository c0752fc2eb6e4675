package widget

import "github.com/homeboard/homeboard/internal/content"

// Metadata columns a content-list widget can display per item.
const (
	FieldContentType  = "content_type"
	FieldCategory     = "category"
	FieldPublishDate  = "publish_date"
	FieldModifiedDate = "modified_date"
	FieldStatus       = "status"
	FieldAuthor       = "author"
)

// Statuses that make the publish date informative.
const (
	StatusPublished = "published"
	StatusScheduled = "scheduled"
)

// VisibleFieldOptions lists every selectable display field with its label,
// in display order.
var VisibleFieldOptions = []struct{ Key, Label string }{
	{FieldAuthor, "Author"},
	{FieldContentType, "Content Type"},
	{FieldStatus, "Status"},
	{FieldPublishDate, "Publish Date"},
	{FieldModifiedDate, "Modified Date"},
	{FieldCategory, "Categories"},
}

// DefaultVisibleFields derives which metadata columns a content-list widget
// shows when the user did not pick them explicitly. The idea is to show the
// columns the filters leave ambiguous: a column pinned to one value by the
// filter adds no information, a column left open does. Each rule is
// independent and additive; the author column is always shown.
func DefaultVisibleFields(types []string, anyType bool, termIDs []int, statuses []string, sortBy string) []string {
	var fields []string

	// Content type is ambiguous when unfiltered, filtered to "any", or
	// filtered to more than one concrete type.
	if anyType || len(types) == 0 || len(types) > 1 {
		fields = append(fields, FieldContentType)
	}

	// Categories are ambiguous when unfiltered or multi-valued.
	if len(termIDs) == 0 || len(termIDs) > 1 {
		fields = append(fields, FieldCategory)
	}

	// The publish date only matters for items that have (or will have) one.
	if containsAny(statuses, StatusPublished, StatusScheduled) {
		fields = append(fields, FieldPublishDate)
	}

	// Sorting by modification time implies the user cares about it.
	if sortBy == content.SortModifiedDate {
		fields = append(fields, FieldModifiedDate)
	}

	// Status is ambiguous when unfiltered or multi-valued.
	if len(statuses) == 0 || len(statuses) > 1 {
		fields = append(fields, FieldStatus)
	}

	fields = append(fields, FieldAuthor)
	return fields
}

func containsAny(haystack []string, needles ...string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if h == n {
				return true
			}
		}
	}
	return false
}
