// Package cards is the card-content library: project and corporation
// definitions the rules core dispatches through the game.Card contract.
// Definitions are immutable values; everything a card mutates goes through
// the player ledger and the match zone operations.
package cards

import (
	"sort"

	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/policy"
)

// card carries the static fields shared by every definition.
type card struct {
	name     string
	cost     int
	cardType game.CardType
	tags     []game.Tag
	metadata game.CardMetadata
}

func (c *card) Name() string                { return c.name }
func (c *card) Cost() int                   { return c.cost }
func (c *card) Type() game.CardType         { return c.cardType }
func (c *card) Tags() []game.Tag            { return c.tags }
func (c *card) Metadata() game.CardMetadata { return c.metadata }

func (c *card) VictoryPoints(*game.Player, *game.Game) int { return 0 }

// canAffordWithRating reports whether the player can pay the card cost plus
// any policy surcharge for the terraform rating steps the card will award.
// Cards that raise the rating fold the surcharge into their play requirement
// so an unpayable tax blocks the card up front instead of mid-effect. The
// surcharge is charged in megacredits only, so it is checked as a reserve
// the cost payment must leave behind, not as convertible value.
func canAffordWithRating(p *game.Player, g *game.Game, c game.Card, ratingSteps int) bool {
	surcharge := 0
	if ratingSteps > 0 && g.Policy.ShouldApply(policy.RedsRulingTax) {
		surcharge = g.Policy.Surcharge(policy.RedsRulingTax) * ratingSteps
	}
	return p.CanAffordWithReserve(c.Cost(), c, surcharge)
}

// canAffordWithRatingCost is canAffordWithRating for a raw megacredit cost,
// with no card tags involved. Card actions that raise the rating use it.
func canAffordWithRatingCost(p *game.Player, g *game.Game, cost, ratingSteps int) bool {
	if ratingSteps > 0 && g.Policy.ShouldApply(policy.RedsRulingTax) {
		cost += g.Policy.Surcharge(policy.RedsRulingTax) * ratingSteps
	}
	return p.CanAfford(cost, nil)
}

// Registry resolves card names to definitions.
type Registry struct {
	byName map[string]game.Card
}

// NewRegistry builds a registry over the full card library.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]game.Card)}
	for _, c := range allCards() {
		r.byName[c.Name()] = c
	}
	return r
}

// Resolve looks a card up by name. Satisfies game.CardResolver.
func (r *Registry) Resolve(name string) (game.Card, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Names returns every registered card name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func allCards() []game.Card {
	return []game.Card{
		newPowerPlant(),
		newMine(),
		newNuclearPower(),
		newLunarBeam(),
		newSolarWindPower(),
		newTrees(),
		newInsulation(),
		newMagneticFieldDome(),
		newBiomassCombustors(),
		newAsteroid(),
		newIceCapMelting(),
		newCaretakerContract(),
		newSpaceMirrors(),
		newPhoboLog(),
		newProjectWorkshop(),
		newBeginnerCorporation(),
	}
}

// StandardDeck returns the project card names, one copy each, in catalog
// order. Shuffling is the dealer's job.
func StandardDeck() []string {
	var names []string
	for _, c := range allCards() {
		if c.Type() == game.CardTypeCorporation {
			continue
		}
		names = append(names, c.Name())
	}
	return names
}

// Corporations returns the corporation card names in catalog order.
func Corporations() []string {
	var names []string
	for _, c := range allCards() {
		if c.Type() == game.CardTypeCorporation {
			names = append(names, c.Name())
		}
	}
	return names
}
