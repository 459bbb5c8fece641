package game

import (
	"github.com/openmars/mars-server-go/internal/game/inputs"
)

// CardType classifies a card definition.
type CardType string

const (
	// CardTypeAutomated cards apply their effect once when played.
	CardTypeAutomated CardType = "AUTOMATED"
	// CardTypeActive cards stay in play with a repeatable or ongoing effect.
	CardTypeActive CardType = "ACTIVE"
	// CardTypeEvent cards apply once and score face down.
	CardTypeEvent CardType = "EVENT"
	// CardTypeCorporation cards define a player's starting position.
	CardTypeCorporation CardType = "CORPORATION"
)

// Tag is a card's category marker, consulted by requirements and payment.
type Tag string

const (
	TagBuilding Tag = "BUILDING"
	TagSpace    Tag = "SPACE"
	TagPower    Tag = "POWER"
	TagEarth    Tag = "EARTH"
	TagPlant    Tag = "PLANT"
	TagMicrobe  Tag = "MICROBE"
	TagScience  Tag = "SCIENCE"
	TagCity     Tag = "CITY"
)

// CardMetadata is descriptive render data. The core carries it for the
// rendering collaborator and never reads it.
type CardMetadata struct {
	CardNumber  string `json:"card_number"`
	Description string `json:"description"`
}

// Card is the contract every playable card satisfies. Definitions are
// immutable values; the card-content library provides them and the core only
// dispatches through this interface.
type Card interface {
	Name() string
	Cost() int
	Tags() []Tag
	Type() CardType

	// CanPlay is the legality predicate, checked before any mutation.
	CanPlay(p *Player, g *Game) bool
	// Play applies the card's effect. It may return an input request when a
	// player decision is needed to finish resolving.
	Play(p *Player, g *Game) (*inputs.Request, error)
	// VictoryPoints contributes to final scoring.
	VictoryPoints(p *Player, g *Game) int

	Metadata() CardMetadata
}

// CorporationCard extends Card with a starting position and an optional
// once-per-generation action.
type CorporationCard interface {
	Card

	StartingMegaCredits() int
	// InitialAction runs as the corporation's first deferred action, once.
	InitialAction(p *Player, g *Game) (*inputs.Request, error)
	// CanAct reports whether the corporation action is currently legal.
	CanAct(p *Player, g *Game) bool
	// Action performs the corporation action.
	Action(p *Player, g *Game) (*inputs.Request, error)
}

// ActiveCard extends Card with a repeatable action, usable once per
// generation while the card is in play.
type ActiveCard interface {
	Card

	// CanAct reports whether the card action is currently legal.
	CanAct(p *Player, g *Game) bool
	// Action performs the card action.
	Action(p *Player, g *Game) (*inputs.Request, error)
}

// HasTag reports whether the card carries the tag.
func HasTag(c Card, tag Tag) bool {
	for _, t := range c.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// CardResolver maps a card name back to its immutable definition. The card
// content library supplies it; the engine uses it for deck construction and
// snapshot restoration.
type CardResolver func(name string) (Card, bool)
