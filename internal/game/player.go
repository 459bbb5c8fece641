package game

import (
	"fmt"

	"github.com/openmars/mars-server-go/internal/game/policy"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

// Base exchange rates for convertible resources.
const (
	baseSteelValue    = 2
	baseTitaniumValue = 3
)

// Player holds one player's match state. Owned exclusively by the match;
// effects mutate it only through the ledger and zone operations.
type Player struct {
	ID   string
	Name string

	ledger          *resources.Ledger
	terraformRating int
	steelValue      int
	titaniumValue   int

	Hand        []Card
	Played      []Card
	Corporation CorporationCard

	// corporationActed marks the once-per-generation corporation action.
	corporationActed bool
	// usedCardActions marks card actions taken this generation, by card name.
	usedCardActions map[string]bool
}

// NewPlayer creates a player with an empty ledger and base exchange rates.
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:              id,
		Name:            name,
		ledger:          resources.NewLedger(),
		steelValue:      baseSteelValue,
		titaniumValue:   baseTitaniumValue,
		usedCardActions: make(map[string]bool),
	}
}

// CardActionUsed reports whether the named card's action was taken this
// generation.
func (p *Player) CardActionUsed(name string) bool {
	return p.usedCardActions[name]
}

// markCardActionUsed records that the named card's action was taken.
func (p *Player) markCardActionUsed(name string) {
	p.usedCardActions[name] = true
}

// resetGenerationActions clears the once-per-generation action markers.
func (p *Player) resetGenerationActions() {
	p.corporationActed = false
	p.usedCardActions = make(map[string]bool)
}

// Resources returns the player's ledger.
func (p *Player) Resources() *resources.Ledger {
	return p.ledger
}

// Amount is shorthand for the ledger amount of a currency.
func (p *Player) Amount(c resources.Currency) int {
	return p.ledger.Amount(c)
}

// Production is shorthand for the ledger production rate of a currency.
func (p *Player) Production(c resources.Currency) int {
	return p.ledger.Production(c)
}

// AddProduction is shorthand for adjusting a production rate.
func (p *Player) AddProduction(c resources.Currency, delta int) error {
	return p.ledger.AddProduction(c, delta)
}

// TerraformRating returns the player's terraform rating.
func (p *Player) TerraformRating() int {
	return p.terraformRating
}

// SteelValue returns the megacredit value of one steel for this player.
func (p *Player) SteelValue() int { return p.steelValue }

// TitaniumValue returns the megacredit value of one titanium for this player.
func (p *Player) TitaniumValue() int { return p.titaniumValue }

// IncreaseTitaniumValue raises the titanium exchange rate by one.
func (p *Player) IncreaseTitaniumValue() { p.titaniumValue++ }

// IncreaseSteelValue raises the steel exchange rate by one.
func (p *Player) IncreaseSteelValue() { p.steelValue++ }

// IncreaseTerraformRating raises the rating by steps, charging any active
// policy surcharge per step first. The whole adjustment is rejected when the
// surcharge cannot be paid.
func (p *Player) IncreaseTerraformRating(g *Game, steps int) error {
	if steps <= 0 {
		return nil
	}
	if g.Policy.ShouldApply(policy.RedsRulingTax) {
		surcharge := g.Policy.Surcharge(policy.RedsRulingTax) * steps
		if err := p.ledger.AddAmount(resources.MegaCredits, -surcharge); err != nil {
			return err
		}
	}
	p.terraformRating += steps
	g.Log.Log("${0} raised their terraform rating ${1} step(s)", logPlayer(p), logAmount(steps))
	return nil
}

// spendOptions derives which convertible resources may pay for a card.
func (p *Player) spendOptions(card Card) resources.SpendOptions {
	opt := resources.SpendOptions{
		SteelValue:    p.steelValue,
		TitaniumValue: p.titaniumValue,
	}
	if card != nil {
		opt.UseSteel = HasTag(card, TagBuilding)
		opt.UseTitanium = HasTag(card, TagSpace)
	}
	return opt
}

// CanAfford reports whether the player can cover a megacredit cost, counting
// steel for building cards and titanium for space cards. A policy surcharge
// must already be folded into cost by the caller.
func (p *Player) CanAfford(cost int, card Card) bool {
	return p.ledger.CanAfford(cost, p.spendOptions(card))
}

// CanAffordWithReserve reports whether the player can cover a card cost
// while keeping reserve megacredits untouched. Policy surcharges are payable
// in megacredits only, and the payment plan spends megacredits first, so the
// projection checks what the plan leaves over rather than total conversion
// value.
func (p *Player) CanAffordWithReserve(cost int, card Card, reserve int) bool {
	mc, _, _, ok := p.paymentPlan(cost, p.spendOptions(card))
	if !ok {
		return false
	}
	return p.ledger.Amount(resources.MegaCredits)-mc >= reserve
}

// PayCost pays a megacredit cost, preferring megacredits and covering the
// remainder with convertible resources where the card's tags allow. The
// payment applies atomically: an unaffordable cost leaves the ledger
// untouched.
func (p *Player) PayCost(cost int, card Card) error {
	opt := p.spendOptions(card)
	mc, steel, titanium, ok := p.paymentPlan(cost, opt)
	if !ok {
		return fmt.Errorf("%w: cost %d", resources.ErrInsufficientResources, cost)
	}
	if err := p.ledger.AddAmount(resources.MegaCredits, -mc); err != nil {
		return err
	}
	if steel > 0 {
		if err := p.ledger.AddAmount(resources.Steel, -steel); err != nil {
			return err
		}
	}
	if titanium > 0 {
		if err := p.ledger.AddAmount(resources.Titanium, -titanium); err != nil {
			return err
		}
	}
	return nil
}

// paymentPlan computes a payment without mutating: as many megacredits as
// available, then steel, then titanium. Excess conversion value is lost, as
// in the physical game.
func (p *Player) paymentPlan(cost int, opt resources.SpendOptions) (mc, steel, titanium int, ok bool) {
	remaining := cost
	mc = p.ledger.Amount(resources.MegaCredits)
	if mc > remaining {
		mc = remaining
	}
	remaining -= mc

	if remaining > 0 && opt.UseSteel && opt.SteelValue > 0 {
		steel = (remaining + opt.SteelValue - 1) / opt.SteelValue
		if avail := p.ledger.Amount(resources.Steel); steel > avail {
			steel = avail
		}
		remaining -= steel * opt.SteelValue
	}
	if remaining > 0 && opt.UseTitanium && opt.TitaniumValue > 0 {
		titanium = (remaining + opt.TitaniumValue - 1) / opt.TitaniumValue
		if avail := p.ledger.Amount(resources.Titanium); titanium > avail {
			titanium = avail
		}
		remaining -= titanium * opt.TitaniumValue
	}
	return mc, steel, titanium, remaining <= 0
}

// FindInHand locates a card in the player's hand by name.
func (p *Player) FindInHand(name string) (Card, bool) {
	for _, c := range p.Hand {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// removeFromHand removes the first card with the given name from the hand.
func (p *Player) removeFromHand(name string) (Card, bool) {
	for i, c := range p.Hand {
		if c.Name() == name {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return nil, false
}

// removeFromPlayed removes the first card with the given name from the
// played area.
func (p *Player) removeFromPlayed(name string) (Card, bool) {
	for i, c := range p.Played {
		if c.Name() == name {
			p.Played = append(p.Played[:i], p.Played[i+1:]...)
			return c, true
		}
	}
	return nil, false
}

// PlayedByType returns played cards of the given type, in play order.
func (p *Player) PlayedByType(t CardType) []Card {
	var out []Card
	for _, c := range p.Played {
		if c.Type() == t {
			out = append(out, c)
		}
	}
	return out
}

// HandNames returns the hand's card names in order.
func (p *Player) HandNames() []string {
	names := make([]string, len(p.Hand))
	for i, c := range p.Hand {
		names[i] = c.Name()
	}
	return names
}

// PlayedNames returns the played cards' names in order.
func (p *Player) PlayedNames() []string {
	names := make([]string, len(p.Played))
	for i, c := range p.Played {
		names[i] = c.Name()
	}
	return names
}
