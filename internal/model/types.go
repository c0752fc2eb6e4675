package model

import (
	"encoding/json"
	"time"
)

// Tab is a named grouping of widgets on a user's dashboard. Presentation
// order is the insertion order of the user's tab collection.
type Tab struct {
	TabID string `json:"tabId"`
	Name  string `json:"name"`
}

// Widget is a single configured view belonging to one tab.
type Widget struct {
	WidgetID string     `json:"widgetId"`
	TabID    string     `json:"tabId"`
	Type     string     `json:"type"`
	Args     WidgetArgs `json:"args"`
}

// InfoField is one entry of a widget's info panel: a field key and a small
// pre-escaped HTML snippet summarizing the user's selection for that field.
// Entries keep the order the widget type declares its fields in.
type InfoField struct {
	Key  string `json:"key"`
	HTML string `json:"html"`
}

// WidgetArgs is the normalized configuration stored for a widget instance.
// QuerySpec is a derived cache of OriginalSelection; the selection is the
// authoritative source and specs are recomputed from it at view time.
type WidgetArgs struct {
	Title             string      `json:"title"`
	QuerySpec         *QuerySpec  `json:"querySpec,omitempty"`
	InfoSummary       []InfoField `json:"infoSummary,omitempty"`
	VisibleFields     []string    `json:"visibleFields,omitempty"`
	OriginalSelection RawArgs     `json:"originalSelection,omitempty"`
	FeedURL           string      `json:"feedUrl,omitempty"`
}

// QuerySpec is the repository-ready filter/sort description for a
// content-list widget. Empty slices mean no filter on that dimension.
type QuerySpec struct {
	// Types holds the selected content types. AnyType true means the user
	// picked the "any" sentinel and Types is ignored.
	Types     []string `json:"types,omitempty"`
	AnyType   bool     `json:"anyType,omitempty"`
	TermIDs   []int    `json:"termIds,omitempty"`
	Statuses  []string `json:"statuses,omitempty"`
	AuthorIDs []int    `json:"authorIds,omitempty"`
	SortBy    string   `json:"sortBy,omitempty"`
	SortOrder string   `json:"sortOrder,omitempty"`
}

// RawArgs is the raw, lightly-sanitized form submission for a widget.
// Fields submitted as a single value and as a value list both decode to a
// string slice.
type RawArgs map[string]StringList

// StringList accepts either a JSON string or an array of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = StringList(many)
	return nil
}

// First returns the first value or "".
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// ContentItem is one row returned by the content repository.
type ContentItem struct {
	ItemID      string    `json:"itemId"`
	Title       string    `json:"title"`
	ContentType string    `json:"contentType"`
	TypeLabel   string    `json:"typeLabel"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"statusLabel"`
	AuthorID    int       `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	PublishDate time.Time `json:"publishDate"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	Terms       []string  `json:"terms,omitempty"`
}

// Page is one page of query results plus the 1-based inclusive item range
// it covers, used for "showing X–Y of Z" displays.
type Page struct {
	Items       []ContentItem `json:"items"`
	Page        int           `json:"page"`
	ItemsOnPage int           `json:"itemsOnPage"`
	TotalItems  int           `json:"totalItems"`
	TotalPages  int           `json:"totalPages"`
	FirstItem   int           `json:"firstItem"`
	LastItem    int           `json:"lastItem"`
	HasPrevious bool          `json:"hasPrevious"`
	HasNext     bool          `json:"hasNext"`
}

// Preferences holds per-user dashboard options.
type Preferences struct {
	RedirectDashboard bool `json:"redirectDashboard"`
}
