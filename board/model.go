// Package board holds the Kanban state engine: lists and cards, the reducer
// that applies actions to them, the fractional order keys used to position
// them, and the Store that persists every transition.
package board

import "maps"

// Color tags a card.
type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

func (c Color) String() string { return string(c) }

// IsValid reports whether c is one of the known colors. The empty color
// means "no color" and is valid.
func (c Color) IsValid() bool {
	switch c {
	case "", ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple:
		return true
	}
	return false
}

// List is a column of the board.
type List struct {
	Record    `yaml:",inline"`
	Title     string  `json:"title" yaml:"title"`
	Order     float64 `json:"order" yaml:"order"`
	Collapsed bool    `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
}

// Card belongs to the list named by Parent.
type Card struct {
	Record `yaml:",inline"`
	Parent string  `json:"parent" yaml:"parent"`
	Title  string  `json:"title" yaml:"title"`
	Order  float64 `json:"order" yaml:"order"`
	Notes  string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	Color  Color   `json:"color,omitempty" yaml:"color,omitempty"`
	URL    string  `json:"url,omitempty" yaml:"url,omitempty"`
	Pinned bool    `json:"pinned,omitempty" yaml:"pinned,omitempty"`
}

// State is a full snapshot of the board. Lists and cards are stored by value
// so copying the maps is enough to detach a snapshot from its source.
type State struct {
	Lists map[string]List `json:"lists"`
	Cards map[string]Card `json:"cards"`
}

// NewState returns the empty board.
func NewState() State {
	return State{
		Lists: map[string]List{},
		Cards: map[string]Card{},
	}
}

// Clone returns a copy of s that shares no map with it. Nil maps come back
// empty.
func (s State) Clone() State {
	c := State{
		Lists: make(map[string]List, len(s.Lists)),
		Cards: make(map[string]Card, len(s.Cards)),
	}
	maps.Copy(c.Lists, s.Lists)
	maps.Copy(c.Cards, s.Cards)
	return c
}
