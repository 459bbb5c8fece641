// Package inputs implements the player-input resolution protocol: the tree of
// selectable options an effect offers, and the commit path that validates a
// chosen option and applies it back into game state.
package inputs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Type describes the kind of a request node.
type Type string

const (
	// TypeOption is a single-option acknowledgment leaf.
	TypeOption Type = "OPTION"
	// TypeOrOptions offers a pick-one-of-N disjunction.
	TypeOrOptions Type = "OR_OPTIONS"
	// TypeAndOptions is a conjunction resolved child by child, in order.
	TypeAndOptions Type = "AND_OPTIONS"
	// TypeSelectCard asks for a combination of cards out of an offered set.
	TypeSelectCard Type = "SELECT_CARD"
	// TypeSelectAmount asks for a numeric amount within bounds.
	TypeSelectAmount Type = "SELECT_AMOUNT"
)

// ErrIllegalSelection is returned when a response names a choice that is not
// present in the offered tree at commit time. The request stays outstanding;
// state is untouched.
var ErrIllegalSelection = errors.New("illegal selection")

// Request is a node in a choice tree. Leaves carry a commit callback that
// performs the associated mutation and may return a further Request (a
// chained decision) or nil when resolution is complete.
type Request struct {
	// ID identifies a dispatched request tree. Set on the root only, by the
	// engine, when the tree travels out to a player.
	ID       string
	PlayerID string

	Type        Type
	Title       string
	ButtonLabel string

	// Options holds the children of OR_OPTIONS and AND_OPTIONS nodes.
	Options []*Request

	// SELECT_CARD fields.
	CardNames []string
	MinCards  int
	MaxCards  int

	// SELECT_AMOUNT fields.
	MinAmount int
	MaxAmount int

	// Exactly one callback is set, matching Type. OR/AND nodes delegate to
	// their children and carry no callback of their own.
	OnOption func() (*Request, error)
	OnCards  func(names []string) (*Request, error)
	OnAmount func(amount int) (*Request, error)
}

// NewSelectOption creates an acknowledgment leaf.
func NewSelectOption(title, buttonLabel string, cb func() (*Request, error)) *Request {
	return &Request{
		Type:        TypeOption,
		Title:       title,
		ButtonLabel: buttonLabel,
		OnOption:    cb,
	}
}

// NewOrOptions creates a pick-one disjunction over the given options.
func NewOrOptions(title string, options ...*Request) *Request {
	return &Request{
		Type:    TypeOrOptions,
		Title:   title,
		Options: options,
	}
}

// NewAndOptions creates a conjunction; every child must be resolved, in order.
func NewAndOptions(title string, options ...*Request) *Request {
	return &Request{
		Type:    TypeAndOptions,
		Title:   title,
		Options: options,
	}
}

// NewSelectCard creates a card-combination request over the offered names.
func NewSelectCard(title, buttonLabel string, names []string, minCards, maxCards int, cb func(names []string) (*Request, error)) *Request {
	return &Request{
		Type:        TypeSelectCard,
		Title:       title,
		ButtonLabel: buttonLabel,
		CardNames:   names,
		MinCards:    minCards,
		MaxCards:    maxCards,
		OnCards:     cb,
	}
}

// NewSelectAmount creates a numeric request bounded to [minAmount, maxAmount].
func NewSelectAmount(title string, minAmount, maxAmount int, cb func(amount int) (*Request, error)) *Request {
	return &Request{
		Type:      TypeSelectAmount,
		Title:     title,
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		OnAmount:  cb,
	}
}

// Collapse removes degenerate disjunctions: an OR_OPTIONS node with exactly
// one child stands for a forced choice and is taken automatically rather than
// offered. Applied by the engine before a tree is dispatched to a player.
func Collapse(r *Request) *Request {
	for r != nil && r.Type == TypeOrOptions && len(r.Options) == 1 {
		child := r.Options[0]
		if child.PlayerID == "" {
			child.PlayerID = r.PlayerID
		}
		r = child
	}
	return r
}

// AssignID stamps a fresh uuid on the root of a dispatched tree and returns it.
func (r *Request) AssignID() string {
	r.ID = uuid.NewString()
	return r.ID
}

// Response is the externally-supplied answer to a Request tree. Its shape
// mirrors the tree: a disjunction response names the chosen branch and nests
// the response for it, a conjunction response carries one sub-response per
// child.
type Response struct {
	Type        Type        `json:"type"`
	OptionIndex int         `json:"option_index,omitempty"`
	Chosen      *Response   `json:"chosen,omitempty"`
	Sub         []*Response `json:"sub,omitempty"`
	CardNames   []string    `json:"card_names,omitempty"`
	Amount      int         `json:"amount,omitempty"`
}

// Resolve validates resp against the offered tree and commits it. On success
// it returns the chained follow-up request, if any. Any mismatch between
// response and tree fails with ErrIllegalSelection before mutation.
func Resolve(req *Request, resp *Response) (*Request, error) {
	if req == nil || resp == nil {
		return nil, fmt.Errorf("%w: empty request or response", ErrIllegalSelection)
	}
	if resp.Type != req.Type {
		return nil, fmt.Errorf("%w: response type %s does not match offered %s", ErrIllegalSelection, resp.Type, req.Type)
	}

	switch req.Type {
	case TypeOption:
		if req.OnOption == nil {
			return nil, nil
		}
		return req.OnOption()

	case TypeOrOptions:
		if resp.OptionIndex < 0 || resp.OptionIndex >= len(req.Options) {
			return nil, fmt.Errorf("%w: option index %d out of %d", ErrIllegalSelection, resp.OptionIndex, len(req.Options))
		}
		chosen := resp.Chosen
		if chosen == nil {
			// An acknowledgment leaf needs no nested payload.
			child := req.Options[resp.OptionIndex]
			if child.Type != TypeOption {
				return nil, fmt.Errorf("%w: missing response for chosen option", ErrIllegalSelection)
			}
			chosen = &Response{Type: TypeOption}
		}
		return Resolve(req.Options[resp.OptionIndex], chosen)

	case TypeAndOptions:
		if len(resp.Sub) != len(req.Options) {
			return nil, fmt.Errorf("%w: conjunction expects %d responses, got %d", ErrIllegalSelection, len(req.Options), len(resp.Sub))
		}
		// Validate every child before committing any, so a bad conjunction
		// response leaves state untouched.
		for i, child := range req.Options {
			if err := validate(child, resp.Sub[i]); err != nil {
				return nil, err
			}
		}
		var followUps []*Request
		for i, child := range req.Options {
			next, err := Resolve(child, resp.Sub[i])
			if err != nil {
				return nil, err
			}
			if next != nil {
				followUps = append(followUps, next)
			}
		}
		switch len(followUps) {
		case 0:
			return nil, nil
		case 1:
			return followUps[0], nil
		default:
			return NewAndOptions(req.Title, followUps...), nil
		}

	case TypeSelectCard:
		if err := validateCardSelection(req, resp.CardNames); err != nil {
			return nil, err
		}
		if req.OnCards == nil {
			return nil, nil
		}
		return req.OnCards(resp.CardNames)

	case TypeSelectAmount:
		if resp.Amount < req.MinAmount || resp.Amount > req.MaxAmount {
			return nil, fmt.Errorf("%w: amount %d outside [%d, %d]", ErrIllegalSelection, resp.Amount, req.MinAmount, req.MaxAmount)
		}
		if req.OnAmount == nil {
			return nil, nil
		}
		return req.OnAmount(resp.Amount)
	}

	return nil, fmt.Errorf("%w: unknown request type %s", ErrIllegalSelection, req.Type)
}

// validate checks a response against a tree without invoking any callback.
func validate(req *Request, resp *Response) error {
	if req == nil || resp == nil {
		return fmt.Errorf("%w: empty request or response", ErrIllegalSelection)
	}
	if resp.Type != req.Type {
		return fmt.Errorf("%w: response type %s does not match offered %s", ErrIllegalSelection, resp.Type, req.Type)
	}
	switch req.Type {
	case TypeOrOptions:
		if resp.OptionIndex < 0 || resp.OptionIndex >= len(req.Options) {
			return fmt.Errorf("%w: option index %d out of %d", ErrIllegalSelection, resp.OptionIndex, len(req.Options))
		}
		chosen := resp.Chosen
		if chosen == nil {
			if req.Options[resp.OptionIndex].Type != TypeOption {
				return fmt.Errorf("%w: missing response for chosen option", ErrIllegalSelection)
			}
			return nil
		}
		return validate(req.Options[resp.OptionIndex], chosen)
	case TypeAndOptions:
		if len(resp.Sub) != len(req.Options) {
			return fmt.Errorf("%w: conjunction expects %d responses, got %d", ErrIllegalSelection, len(req.Options), len(resp.Sub))
		}
		for i, child := range req.Options {
			if err := validate(child, resp.Sub[i]); err != nil {
				return err
			}
		}
		return nil
	case TypeSelectCard:
		return validateCardSelection(req, resp.CardNames)
	case TypeSelectAmount:
		if resp.Amount < req.MinAmount || resp.Amount > req.MaxAmount {
			return fmt.Errorf("%w: amount %d outside [%d, %d]", ErrIllegalSelection, resp.Amount, req.MinAmount, req.MaxAmount)
		}
		return nil
	}
	return nil
}

// validateCardSelection checks count bounds and that every chosen name is
// present in the offered set, respecting multiplicity.
func validateCardSelection(req *Request, chosen []string) error {
	if len(chosen) < req.MinCards || len(chosen) > req.MaxCards {
		return fmt.Errorf("%w: %d cards selected, want between %d and %d", ErrIllegalSelection, len(chosen), req.MinCards, req.MaxCards)
	}
	offered := make(map[string]int, len(req.CardNames))
	for _, name := range req.CardNames {
		offered[name]++
	}
	for _, name := range chosen {
		if offered[name] == 0 {
			return fmt.Errorf("%w: card %q not offered", ErrIllegalSelection, name)
		}
		offered[name]--
	}
	return nil
}

// View is the callback-free rendering of a request tree, safe to serialize
// and send to a client.
type View struct {
	ID          string   `json:"id,omitempty"`
	PlayerID    string   `json:"player_id,omitempty"`
	Type        Type     `json:"type"`
	Title       string   `json:"title"`
	ButtonLabel string   `json:"button_label,omitempty"`
	Options     []View   `json:"options,omitempty"`
	CardNames   []string `json:"card_names,omitempty"`
	MinCards    int      `json:"min_cards,omitempty"`
	MaxCards    int      `json:"max_cards,omitempty"`
	MinAmount   int      `json:"min_amount,omitempty"`
	MaxAmount   int      `json:"max_amount,omitempty"`
}

// View renders the request tree without its callbacks.
func (r *Request) View() View {
	v := View{
		ID:          r.ID,
		PlayerID:    r.PlayerID,
		Type:        r.Type,
		Title:       r.Title,
		ButtonLabel: r.ButtonLabel,
		CardNames:   r.CardNames,
		MinCards:    r.MinCards,
		MaxCards:    r.MaxCards,
		MinAmount:   r.MinAmount,
		MaxAmount:   r.MaxAmount,
	}
	for _, opt := range r.Options {
		v.Options = append(v.Options, opt.View())
	}
	return v
}
