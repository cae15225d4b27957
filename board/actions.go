package board

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Action type names, as they appear in the "type" field on the wire.
const (
	TypeAddList    = "addList"
	TypeRemoveList = "removeList"
	TypeUpdateList = "updateList"
	TypeAddCard    = "addCard"
	TypeRemoveCard = "removeCard"
	TypeUpdateCard = "updateCard"
	TypeMoveCard   = "moveCard"
	TypeRebalance  = "rebalance"
)

// Direction places a moved card relative to its reference sibling.
type Direction string

const (
	Before Direction = "before"
	After  Direction = "after"
)

// Action is a single request to change the board.
type Action interface {
	Type() string
	Validate() error
}

// ListInit is the caller-supplied part of a new list.
type ListInit struct {
	Title     string `json:"title"`
	Collapsed bool   `json:"collapsed,omitempty"`
}

// CardInit is the caller-supplied part of a new card.
type CardInit struct {
	Parent string `json:"parent"`
	Title  string `json:"title"`
	Notes  string `json:"notes,omitempty"`
	Color  Color  `json:"color,omitempty"`
	URL    string `json:"url,omitempty"`
	Pinned bool   `json:"pinned,omitempty"`
}

// ListPatch changes the fields that are non-nil.
type ListPatch struct {
	Title     *string `json:"title,omitempty"`
	Collapsed *bool   `json:"collapsed,omitempty"`
}

// CardPatch changes the fields that are non-nil. An empty string clears an
// optional field.
type CardPatch struct {
	Title  *string `json:"title,omitempty"`
	Notes  *string `json:"notes,omitempty"`
	Color  *Color  `json:"color,omitempty"`
	URL    *string `json:"url,omitempty"`
	Pinned *bool   `json:"pinned,omitempty"`
}

// MoveOpts describes where a card is dropped. Without a Sibling the card
// keeps its order unless Append is set, in which case it goes to the end of
// Parent.
type MoveOpts struct {
	Parent    string    `json:"parent"`
	Sibling   string    `json:"sibling,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Append    bool      `json:"append,omitempty"`
}

type AddList struct {
	Init ListInit `json:"init"`
}

type RemoveList struct {
	ID string `json:"id"`
}

type UpdateList struct {
	ID    string    `json:"id"`
	Value ListPatch `json:"value"`
}

type AddCard struct {
	Init CardInit `json:"init"`
}

type RemoveCard struct {
	ID string `json:"id"`
}

type UpdateCard struct {
	ID    string    `json:"id"`
	Value CardPatch `json:"value"`
}

type MoveCard struct {
	ID   string   `json:"id"`
	Opts MoveOpts `json:"opts"`
}

// Rebalance renumbers the cards of Parent, or the lists when Parent is empty.
type Rebalance struct {
	Parent string `json:"parent,omitempty"`
}

func (AddList) Type() string    { return TypeAddList }
func (RemoveList) Type() string { return TypeRemoveList }
func (UpdateList) Type() string { return TypeUpdateList }
func (AddCard) Type() string    { return TypeAddCard }
func (RemoveCard) Type() string { return TypeRemoveCard }
func (UpdateCard) Type() string { return TypeUpdateCard }
func (MoveCard) Type() string   { return TypeMoveCard }
func (Rebalance) Type() string  { return TypeRebalance }

func (a AddList) Validate() error {
	return requireText("init.title", a.Init.Title)
}

func (a RemoveList) Validate() error {
	return requireText("id", a.ID)
}

func (a UpdateList) Validate() error {
	if err := requireText("id", a.ID); err != nil {
		return err
	}
	if a.Value.Title != nil {
		return requireText("value.title", *a.Value.Title)
	}
	return nil
}

func (a AddCard) Validate() error {
	if err := requireText("init.parent", a.Init.Parent); err != nil {
		return err
	}
	if err := requireText("init.title", a.Init.Title); err != nil {
		return err
	}
	return validColor("init.color", a.Init.Color)
}

func (a RemoveCard) Validate() error {
	return requireText("id", a.ID)
}

func (a UpdateCard) Validate() error {
	if err := requireText("id", a.ID); err != nil {
		return err
	}
	if a.Value.Title != nil {
		if err := requireText("value.title", *a.Value.Title); err != nil {
			return err
		}
	}
	if a.Value.Color != nil {
		return validColor("value.color", *a.Value.Color)
	}
	return nil
}

func (a MoveCard) Validate() error {
	if err := requireText("id", a.ID); err != nil {
		return err
	}
	if err := requireText("opts.parent", a.Opts.Parent); err != nil {
		return err
	}
	switch a.Opts.Direction {
	case "", Before, After:
		return nil
	}
	return &ValidationError{Field: "opts.direction", Message: fmt.Sprintf("unknown direction %q", a.Opts.Direction)}
}

func (Rebalance) Validate() error { return nil }

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Message: "required"}
	}
	return nil
}

func validColor(field string, c Color) error {
	if !c.IsValid() {
		return &ValidationError{Field: field, Message: fmt.Sprintf("unknown color %q", c)}
	}
	return nil
}

// DecodeAction parses one action in its JSON wire form, e.g.
//
//	{"type":"moveCard","id":"...","opts":{"parent":"...","sibling":"...","direction":"before"}}
func DecodeAction(data []byte) (Action, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := sonic.ConfigStd.Unmarshal(data, &head); err != nil {
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("malformed action: %v", err)}
	}

	var a Action
	var err error
	switch head.Type {
	case TypeAddList:
		a, err = decodeAs[AddList](data)
	case TypeRemoveList:
		a, err = decodeAs[RemoveList](data)
	case TypeUpdateList:
		a, err = decodeAs[UpdateList](data)
	case TypeAddCard:
		a, err = decodeAs[AddCard](data)
	case TypeRemoveCard:
		a, err = decodeAs[RemoveCard](data)
	case TypeUpdateCard:
		a, err = decodeAs[UpdateCard](data)
	case TypeMoveCard:
		a, err = decodeAs[MoveCard](data)
	case TypeRebalance:
		a, err = decodeAs[Rebalance](data)
	case "":
		return nil, &ValidationError{Field: "type", Message: "required"}
	default:
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown action %q", head.Type)}
	}
	if err != nil {
		return nil, &ValidationError{Field: head.Type, Message: fmt.Sprintf("malformed payload: %v", err)}
	}
	return a, nil
}

func decodeAs[T Action](data []byte) (Action, error) {
	var v T
	if err := sonic.ConfigStd.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
