// Package registry holds the static model registry: which text and image
// models the bot offers, which provider serves each one, and whether a text
// model accepts image input.
package registry

import (
	"errors"
	"fmt"
)

// Kind distinguishes the two model families the bot exposes.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// ErrUnknownModel is returned by Lookup for ids not present in the registry.
var ErrUnknownModel = errors.New("unknown model")

// Model describes a single registry entry.
type Model struct {
	ID          string
	Provider    string
	DisplayName string
	Vision      bool
}

// Name returns the user-facing name for the model, falling back to its id.
func (m Model) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.ID
}

// Registry is an immutable, validated view of the configured models.
// All accessors fail closed: an id that was never registered is an error,
// never a zero value silently treated as valid.
type Registry struct {
	text       map[string]Model
	image      map[string]Model
	textOrder  []string
	imageOrder []string
}

// New builds a registry from configured model lists, validating every entry.
// Duplicate ids within a kind, empty ids, and empty providers are rejected.
func New(text, image []Model) (*Registry, error) {
	r := &Registry{
		text:  make(map[string]Model, len(text)),
		image: make(map[string]Model, len(image)),
	}

	for _, m := range text {
		if err := validate(m, KindText, r.text); err != nil {
			return nil, err
		}
		r.text[m.ID] = m
		r.textOrder = append(r.textOrder, m.ID)
	}
	for _, m := range image {
		if err := validate(m, KindImage, r.image); err != nil {
			return nil, err
		}
		r.image[m.ID] = m
		r.imageOrder = append(r.imageOrder, m.ID)
	}

	if len(r.text) == 0 {
		return nil, errors.New("model registry has no text models")
	}

	return r, nil
}

func validate(m Model, kind Kind, existing map[string]Model) error {
	if m.ID == "" {
		return fmt.Errorf("%s model with empty id", kind)
	}
	if m.Provider == "" {
		return fmt.Errorf("%s model %q has no provider", kind, m.ID)
	}
	if _, dup := existing[m.ID]; dup {
		return fmt.Errorf("duplicate %s model id %q", kind, m.ID)
	}
	return nil
}

// Lookup returns the registry entry for the given kind and id.
func (r *Registry) Lookup(kind Kind, id string) (Model, error) {
	var m Model
	var ok bool
	switch kind {
	case KindText:
		m, ok = r.text[id]
	case KindImage:
		m, ok = r.image[id]
	default:
		return Model{}, fmt.Errorf("%w: bad model kind %q", ErrUnknownModel, kind)
	}
	if !ok {
		return Model{}, fmt.Errorf("%w: %s/%s", ErrUnknownModel, kind, id)
	}
	return m, nil
}

// List returns the models of a kind in configuration order.
func (r *Registry) List(kind Kind) []Model {
	var order []string
	var src map[string]Model
	switch kind {
	case KindText:
		order, src = r.textOrder, r.text
	case KindImage:
		order, src = r.imageOrder, r.image
	default:
		return nil
	}
	out := make([]Model, 0, len(order))
	for _, id := range order {
		out = append(out, src[id])
	}
	return out
}
