// Package registry holds the widget type descriptors: the ordered field
// schema each widget type exposes in the editor and the normalization
// function that turns a raw submission into stored widget args.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/homeboard/homeboard/internal/content"
	"github.com/homeboard/homeboard/internal/model"
)

// Field kinds understood by the widget editor.
const (
	KindText           = "text"
	KindSelect         = "select"
	KindSelectMultiple = "select-multiple"
)

// NormalizeFunc validates and normalizes a raw submission for one widget
// type. It must tolerate absent optional fields.
type NormalizeFunc func(ctx context.Context, raw model.RawArgs) (model.WidgetArgs, error)

// OptionsFunc resolves the selectable values for a field as seen by one
// viewer. Dynamic sources are resolved just-in-time because they depend on
// current repository state and on who is asking, not static config.
type OptionsFunc func(ctx context.Context, viewer string) ([]content.Option, error)

// StaticOptions returns an OptionsFunc over a fixed option list.
func StaticOptions(opts []content.Option) OptionsFunc {
	return func(context.Context, string) ([]content.Option, error) { return opts, nil }
}

// FieldSpec describes one configurable field of a widget type.
type FieldSpec struct {
	Key         string
	Label       string
	Kind        string
	Placeholder string
	Options     OptionsFunc
}

// Descriptor is the schema for one widget type.
type Descriptor struct {
	ID        string
	Label     string
	Fields    []FieldSpec
	Normalize NormalizeFunc
}

// Registry maps widget type IDs to descriptors. It is constructed once at
// startup and handed to the components that need it; registration after
// startup is permitted and last write wins, which lets callers override the
// built-in types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Descriptor
	order []string
}

func New() *Registry {
	return &Registry{types: make(map[string]Descriptor)}
}

// Register inserts or overwrites the descriptor for d.ID.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[d.ID]; !exists {
		r.order = append(r.order, d.ID)
	}
	r.types[d.ID] = d
}

// Resolve returns the descriptor for a type ID.
func (r *Registry) Resolve(typeID string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[typeID]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", model.ErrUnknownWidgetType, typeID)
	}
	return d, nil
}

// ResolvedField is a FieldSpec with its selectable values materialized.
type ResolvedField struct {
	Key         string           `json:"key"`
	Label       string           `json:"label"`
	Kind        string           `json:"kind"`
	Placeholder string           `json:"placeholder,omitempty"`
	Values      []content.Option `json:"values,omitempty"`
}

// ResolvedDescriptor is a Descriptor prepared for the widget editor.
type ResolvedDescriptor struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Fields []ResolvedField `json:"fields"`
}

// List materializes every registered type in registration order, resolving
// each field's value source against current repository state as seen by
// the given viewer.
func (r *Registry) List(ctx context.Context, viewer string) ([]ResolvedDescriptor, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.order...)
	types := make(map[string]Descriptor, len(r.types))
	for id, d := range r.types {
		types[id] = d
	}
	r.mu.RUnlock()

	out := make([]ResolvedDescriptor, 0, len(ids))
	for _, id := range ids {
		d := types[id]
		rd := ResolvedDescriptor{ID: d.ID, Label: d.Label}
		for _, f := range d.Fields {
			rf := ResolvedField{Key: f.Key, Label: f.Label, Kind: f.Kind, Placeholder: f.Placeholder}
			if f.Options != nil {
				vals, err := f.Options(ctx, viewer)
				if err != nil {
					return nil, fmt.Errorf("resolve options for %s.%s: %w", d.ID, f.Key, err)
				}
				rf.Values = vals
			}
			rd.Fields = append(rd.Fields, rf)
		}
		out = append(out, rd)
	}
	return out, nil
}
