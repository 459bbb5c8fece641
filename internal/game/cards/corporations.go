package cards

import (
	"errors"
	"fmt"

	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/dealer"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

// corporation carries the corporation boilerplate: no play requirement, no
// initial action and no repeatable action unless the definition overrides.
type corporation struct{ card }

func (c *corporation) CanPlay(*game.Player, *game.Game) bool { return true }

func (c *corporation) InitialAction(*game.Player, *game.Game) (*inputs.Request, error) {
	return nil, nil
}

func (c *corporation) CanAct(*game.Player, *game.Game) bool { return false }

func (c *corporation) Action(*game.Player, *game.Game) (*inputs.Request, error) {
	return nil, nil
}

type phoboLog struct {
	corporation
	startingMegaCredits int
}

func newPhoboLog() game.Card {
	return &phoboLog{
		corporation: corporation{card{
			name:     "PhoboLog",
			cardType: game.CardTypeCorporation,
			tags:     []game.Tag{game.TagSpace},
			metadata: game.CardMetadata{CardNumber: "R09", Description: "You start with 10 titanium and 23 MC. Your titanium resources are each worth 1 MC extra."},
		}},
		startingMegaCredits: 23,
	}
}

func (c *phoboLog) StartingMegaCredits() int { return c.startingMegaCredits }

func (c *phoboLog) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	p.Resources().SetAmount(resources.Titanium, 10)
	p.IncreaseTitaniumValue()
	return nil, nil
}

// projectWorkshopDrawCost is the megacredit price of the draw branch of the
// Project Workshop action.
const projectWorkshopDrawCost = 3

type projectWorkshop struct {
	corporation
	startingMegaCredits int
}

func newProjectWorkshop() game.Card {
	return &projectWorkshop{
		corporation: corporation{card{
			name:     "Project Workshop",
			cardType: game.CardTypeCorporation,
			tags:     []game.Tag{game.TagEarth},
			metadata: game.CardMetadata{CardNumber: "R45", Description: "You start with 39 MC, 1 steel and 1 titanium. As your first action, draw a blue card. Action: flip and discard a played blue card to convert its VP into TR and draw 2 cards, or spend 3 MC to draw a blue card."},
		}},
		startingMegaCredits: 39,
	}
}

func (c *projectWorkshop) StartingMegaCredits() int { return c.startingMegaCredits }

func (c *projectWorkshop) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	p.Resources().SetAmount(resources.Steel, 1)
	p.Resources().SetAmount(resources.Titanium, 1)
	return nil, nil
}

func (c *projectWorkshop) InitialAction(p *game.Player, g *game.Game) (*inputs.Request, error) {
	return nil, drawActiveCard(p, g)
}

func (c *projectWorkshop) CanAct(p *game.Player, g *game.Game) bool {
	return len(p.PlayedByType(game.CardTypeActive)) > 0 ||
		p.Amount(resources.MegaCredits) >= projectWorkshopDrawCost
}

// Action offers the flip branch only while a blue card is in play and the
// draw branch only while the price is payable. A single surviving branch is
// still returned inside the disjunction; the dispatcher collapses it.
func (c *projectWorkshop) Action(p *game.Player, g *game.Game) (*inputs.Request, error) {
	var options []*inputs.Request

	if actives := p.PlayedByType(game.CardTypeActive); len(actives) > 0 {
		names := make([]string, len(actives))
		for i, a := range actives {
			names[i] = a.Name()
		}
		options = append(options, inputs.NewSelectCard(
			"Flip and discard a played blue card", "Flip", names, 1, 1,
			func(selected []string) (*inputs.Request, error) {
				return nil, c.flip(p, g, selected[0])
			},
		))
	}
	if p.Amount(resources.MegaCredits) >= projectWorkshopDrawCost {
		title := fmt.Sprintf("Spend %d MC to draw a blue card", projectWorkshopDrawCost)
		options = append(options, inputs.NewSelectOption(title, "Draw", func() (*inputs.Request, error) {
			if err := p.Resources().AddAmount(resources.MegaCredits, -projectWorkshopDrawCost); err != nil {
				return nil, err
			}
			return nil, drawActiveCard(p, g)
		}))
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: no Project Workshop branch available", game.ErrIllegalAction)
	}

	req := inputs.NewOrOptions("Select Project Workshop action", options...)
	req.PlayerID = p.ID
	return req, nil
}

// flip discards a played blue card, converts its victory points into
// terraform rating and draws 2 cards.
func (c *projectWorkshop) flip(p *game.Player, g *game.Game, name string) error {
	var target game.Card
	for _, a := range p.PlayedByType(game.CardTypeActive) {
		if a.Name() == name {
			target = a
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %q is not a played blue card", game.ErrIllegalAction, name)
	}
	vp := target.VictoryPoints(p, g)
	if err := g.DiscardPlayed(p, name); err != nil {
		return err
	}
	if vp > 0 {
		if err := p.IncreaseTerraformRating(g, vp); err != nil {
			return err
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := g.DealToHand(p); err != nil {
			if errors.Is(err, dealer.ErrDeckExhausted) {
				break
			}
			return err
		}
	}
	return nil
}

// drawActiveCard deals a blue card to the hand, tolerating an exhausted
// deck.
func drawActiveCard(p *game.Player, g *game.Game) error {
	if _, err := g.DealToHandByType(p, game.CardTypeActive); err != nil && !errors.Is(err, dealer.ErrDeckExhausted) {
		return err
	}
	return nil
}

type beginnerCorporation struct {
	corporation
	startingMegaCredits int
}

func newBeginnerCorporation() game.Card {
	return &beginnerCorporation{
		corporation: corporation{card{
			name:     "Beginner Corporation",
			cardType: game.CardTypeCorporation,
			metadata: game.CardMetadata{CardNumber: "B00", Description: "You start with 42 MC."},
		}},
		startingMegaCredits: 42,
	}
}

func (c *beginnerCorporation) StartingMegaCredits() int { return c.startingMegaCredits }

func (c *beginnerCorporation) Play(*game.Player, *game.Game) (*inputs.Request, error) {
	return nil, nil
}
