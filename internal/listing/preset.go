package listing

import (
	"time"

	"github.com/kigopro/kigo/internal/model"
)

// Preset is a named shortcut that expands to a complete FilterState,
// computed from the current day.
type Preset struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`

	build func(today model.Date) model.FilterState
}

// NewPreset declares a preset.
func NewPreset(name, label, description string, build func(today model.Date) model.FilterState) Preset {
	return Preset{Name: name, Label: label, Description: description, build: build}
}

// Filters expands the preset as of now.
func (p Preset) Filters(now time.Time) model.FilterState {
	return p.build(model.DateOf(now))
}

// Presets is an ordered, read-only preset registry.
type Presets struct {
	order  []Preset
	byName map[string]int
}

// NewPresets builds a registry. Later presets replace earlier ones with
// the same name.
func NewPresets(ps ...Preset) *Presets {
	r := &Presets{byName: make(map[string]int, len(ps))}
	for _, p := range ps {
		if i, ok := r.byName[p.Name]; ok {
			r.order[i] = p
			continue
		}
		r.byName[p.Name] = len(r.order)
		r.order = append(r.order, p)
	}
	return r
}

// Lookup finds a preset by name.
func (r *Presets) Lookup(name string) (Preset, bool) {
	if r == nil {
		return Preset{}, false
	}
	i, ok := r.byName[name]
	if !ok {
		return Preset{}, false
	}
	return r.order[i], true
}

// List returns the presets in declaration order.
func (r *Presets) List() []Preset {
	if r == nil {
		return []Preset{}
	}
	out := make([]Preset, len(r.order))
	copy(out, r.order)
	return out
}

// Apply replaces current with the named preset's filters. Unknown names
// leave current unchanged.
func (r *Presets) Apply(current model.FilterState, name string, now time.Time) model.FilterState {
	p, ok := r.Lookup(name)
	if !ok {
		return current
	}
	return p.Filters(now)
}

// ApplyPreset applies one of the token presets.
func ApplyPreset(current model.FilterState, name string, now time.Time) model.FilterState {
	return TokenPresets.Apply(current, name, now)
}
