// Package render produces the HTML fragments the dashboard swaps in when a
// widget page is fetched: the item list and the pagination block.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/homeboard/homeboard/internal/model"
	"github.com/homeboard/homeboard/internal/widget"
)

const itemListTmpl = `<ul class="hb-widget-items">
{{- range $it := .Items}}
  <li class="hb-widget-item">
    <span class="hb-item-title">{{$it.Title}}</span>
    {{- range $key := $it.Fields}}
    {{- with field $it $key}}<span class="hb-item-field hb-item-{{.Class}}">{{.Value}}</span>{{end}}
    {{- end}}
  </li>
{{- end}}
{{- if not .Items}}
  <li class="hb-widget-empty">No items found.</li>
{{- end}}
</ul>`

const paginationTmpl = `<div class="hb-pagination" data-page="{{.Page}}">
  {{- if .HasPrevious}}
  <a class="hb-page-prev" data-target="{{prev .Page}}" href="#">&laquo; Previous</a>
  {{- end}}
  <span class="hb-page-range">{{.FirstItem}}&ndash;{{.LastItem}} of {{.TotalItems}}</span>
  {{- if .HasNext}}
  <a class="hb-page-next" data-target="{{next .Page}}" href="#">Next &raquo;</a>
  {{- end}}
</div>`

type fieldValue struct {
	Class string
	Value string
}

type itemContext struct {
	model.ContentItem
	Fields []string
}

// Renderer renders widget page fragments. Safe for concurrent use.
type Renderer struct {
	items      *template.Template
	pagination *template.Template
}

func New() *Renderer {
	funcs := template.FuncMap{
		"prev":  func(p int) int { return p - 1 },
		"next":  func(p int) int { return p + 1 },
		"field": renderField,
	}
	return &Renderer{
		items:      template.Must(template.New("items").Funcs(funcs).Parse(itemListTmpl)),
		pagination: template.Must(template.New("pagination").Funcs(funcs).Parse(paginationTmpl)),
	}
}

// ItemList renders one page of items showing only the widget's visible
// fields. Items without a title render as "Untitled".
func (r *Renderer) ItemList(page *model.Page, visibleFields []string) (string, error) {
	items := make([]itemContext, 0, len(page.Items))
	for _, it := range page.Items {
		if strings.TrimSpace(it.Title) == "" {
			it.Title = "Untitled"
		}
		items = append(items, itemContext{ContentItem: it, Fields: visibleFields})
	}
	var buf bytes.Buffer
	err := r.items.Execute(&buf, struct {
		Items []itemContext
	}{Items: items})
	if err != nil {
		return "", fmt.Errorf("render item list: %w", err)
	}
	return buf.String(), nil
}

// Pagination renders the previous/next controls and the item range line.
func (r *Renderer) Pagination(page *model.Page) (string, error) {
	var buf bytes.Buffer
	if err := r.pagination.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("render pagination: %w", err)
	}
	return buf.String(), nil
}

// renderField resolves one visible field of an item to its CSS class suffix
// and display value. Unknown keys and empty values render nothing.
func renderField(it itemContext, key string) *fieldValue {
	switch key {
	case widget.FieldContentType:
		return nonEmpty("type", it.TypeLabel)
	case widget.FieldCategory:
		return nonEmpty("category", strings.Join(it.Terms, ", "))
	case widget.FieldPublishDate:
		if it.PublishDate.IsZero() {
			return nil
		}
		return &fieldValue{Class: "published", Value: it.PublishDate.Format("2006-01-02")}
	case widget.FieldModifiedDate:
		if it.ModifiedAt.IsZero() {
			return nil
		}
		return &fieldValue{Class: "modified", Value: it.ModifiedAt.Format("2006-01-02")}
	case widget.FieldStatus:
		return nonEmpty("status", it.StatusLabel)
	case widget.FieldAuthor:
		return nonEmpty("author", it.AuthorName)
	}
	return nil
}

func nonEmpty(class, value string) *fieldValue {
	if value == "" {
		return nil
	}
	return &fieldValue{Class: class, Value: value}
}
