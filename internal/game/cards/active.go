package cards

import (
	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

type caretakerContract struct{ card }

func newCaretakerContract() game.Card {
	return &caretakerContract{card{
		name:     "Caretaker Contract",
		cost:     3,
		cardType: game.CardTypeActive,
		metadata: game.CardMetadata{CardNumber: "154", Description: "Requires 0 C or warmer. Action: spend 8 heat to increase your terraform rating 1 step."},
	}}
}

func (c *caretakerContract) CanPlay(p *game.Player, g *game.Game) bool {
	return g.Temperature() >= 0
}

func (c *caretakerContract) Play(*game.Player, *game.Game) (*inputs.Request, error) {
	return nil, nil
}

func (c *caretakerContract) CanAct(p *game.Player, g *game.Game) bool {
	if p.Amount(resources.Heat) < 8 {
		return false
	}
	return canAffordWithRatingCost(p, g, 0, 1)
}

func (c *caretakerContract) Action(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := p.Resources().AddAmount(resources.Heat, -8); err != nil {
		return nil, err
	}
	return nil, p.IncreaseTerraformRating(g, 1)
}

type spaceMirrors struct{ card }

func newSpaceMirrors() game.Card {
	return &spaceMirrors{card{
		name:     "Space Mirrors",
		cost:     3,
		cardType: game.CardTypeActive,
		tags:     []game.Tag{game.TagPower, game.TagSpace},
		metadata: game.CardMetadata{CardNumber: "076", Description: "Action: spend 7 MC to increase your energy production 1 step."},
	}}
}

func (c *spaceMirrors) CanPlay(*game.Player, *game.Game) bool { return true }

func (c *spaceMirrors) Play(*game.Player, *game.Game) (*inputs.Request, error) {
	return nil, nil
}

func (c *spaceMirrors) CanAct(p *game.Player, g *game.Game) bool {
	return p.Amount(resources.MegaCredits) >= 7
}

func (c *spaceMirrors) Action(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := p.Resources().AddAmount(resources.MegaCredits, -7); err != nil {
		return nil, err
	}
	return nil, p.AddProduction(resources.Energy, 1)
}
