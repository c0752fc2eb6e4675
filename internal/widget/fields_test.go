package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultVisibleFields(t *testing.T) {
	tests := []struct {
		name     string
		types    []string
		anyType  bool
		termIDs  []int
		statuses []string
		sortBy   string
		want     []string
	}{
		{
			name: "no filters shows all ambiguous columns",
			want: []string{FieldContentType, FieldCategory, FieldStatus, FieldAuthor},
		},
		{
			name:     "single concrete filters pin their columns",
			types:    []string{"post"},
			termIDs:  []int{7},
			statuses: []string{"draft"},
			want:     []string{FieldAuthor},
		},
		{
			name:     "any sentinel with modified sort",
			anyType:  true,
			sortBy:   "modified",
			statuses: []string{"draft"},
			want:     []string{FieldContentType, FieldCategory, FieldModifiedDate, FieldAuthor},
		},
		{
			name:    "multiple types and terms stay ambiguous",
			types:   []string{"post", "page"},
			termIDs: []int{7, 9},
			want:    []string{FieldContentType, FieldCategory, FieldStatus, FieldAuthor},
		},
		{
			name:     "published status shows publish date",
			types:    []string{"post"},
			termIDs:  []int{7},
			statuses: []string{"published"},
			want:     []string{FieldPublishDate, FieldAuthor},
		},
		{
			name:     "scheduled also shows publish date, multi status keeps status",
			types:    []string{"post"},
			termIDs:  []int{7},
			statuses: []string{"scheduled", "draft"},
			want:     []string{FieldPublishDate, FieldStatus, FieldAuthor},
		},
		{
			name:     "modified date follows sort not status",
			types:    []string{"post"},
			termIDs:  []int{7},
			statuses: []string{"draft"},
			sortBy:   "date",
			want:     []string{FieldAuthor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultVisibleFields(tt.types, tt.anyType, tt.termIDs, tt.statuses, tt.sortBy)
			assert.Equal(t, tt.want, got)
		})
	}
}
