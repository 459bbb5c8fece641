package cards

import (
	"fmt"

	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/gamelog"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

type powerPlant struct{ card }

func newPowerPlant() game.Card {
	return &powerPlant{card{
		name:     "Power Plant",
		cost:     4,
		cardType: game.CardTypeAutomated,
		tags:     []game.Tag{game.TagPower, game.TagBuilding},
		metadata: game.CardMetadata{CardNumber: "141", Description: "Increase your energy production 1 step."},
	}}
}

func (c *powerPlant) CanPlay(*game.Player, *game.Game) bool { return true }

func (c *powerPlant) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	return nil, p.AddProduction(resources.Energy, 1)
}

type mine struct{ card }

func newMine() game.Card {
	return &mine{card{
		name:     "Mine",
		cost:     4,
		cardType: game.CardTypeAutomated,
		tags:     []game.Tag{game.TagBuilding},
		metadata: game.CardMetadata{CardNumber: "056", Description: "Increase your steel production 1 step."},
	}}
}

func (c *mine) CanPlay(*game.Player, *game.Game) bool { return true }

func (c *mine) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	return nil, p.AddProduction(resources.Steel, 1)
}

type nuclearPower struct{ card }

func newNuclearPower() game.Card {
	return &nuclearPower{card{
		name:     "Nuclear Power",
		cost:     10,
		cardType: game.CardTypeAutomated,
		tags:     []game.Tag{game.TagPower, game.TagBuilding},
		metadata: game.CardMetadata{CardNumber: "045", Description: "Decrease your MC production 2 steps and increase your energy production 3 steps."},
	}}
}

func (c *nuclearPower) CanPlay(p *game.Player, g *game.Game) bool {
	return p.Production(resources.MegaCredits)-2 >= resources.ProductionFloor(resources.MegaCredits)
}

func (c *nuclearPower) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := p.AddProduction(resources.MegaCredits, -2); err != nil {
		return nil, err
	}
	return nil, p.AddProduction(resources.Energy, 3)
}

type lunarBeam struct{ card }

func newLunarBeam() game.Card {
	return &lunarBeam{card{
		name:     "Lunar Beam",
		cost:     13,
		cardType: game.CardTypeAutomated,
		tags:     []game.Tag{game.TagEarth, game.TagPower},
		metadata: game.CardMetadata{CardNumber: "030", Description: "Decrease your MC production 2 steps and increase your heat production and energy production 2 steps each."},
	}}
}

func (c *lunarBeam) CanPlay(p *game.Player, g *game.Game) bool {
	return p.Production(resources.MegaCredits)-2 >= resources.ProductionFloor(resources.MegaCredits)
}

func (c *lunarBeam) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := p.AddProduction(resources.MegaCredits, -2); err != nil {
		return nil, err
	}
	if err := p.AddProduction(resources.Heat, 2); err != nil {
		return nil, err
	}
	return nil, p.AddProduction(resources.Energy, 2)
}

type solarWindPower struct{ card }

func newSolarWindPower() game.Card {
	return &solarWindPower{card{
		name:     "Solar Wind Power",
		cost:     11,
		cardType: game.CardTypeAutomated,
		tags:     []game.Tag{game.TagScience, game.TagSpace, game.TagPower},
		metadata: game.CardMetadata{CardNumber: "077", Description: "Increase your energy production 1 step and gain 2 titanium."},
	}}
}

func (c *solarWindPower) CanPlay(*game.Player, *game.Game) bool { return true }

func (c *solarWindPower) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := p.AddProduction(resources.Energy, 1); err != nil {
		return nil, err
	}
	return nil, p.Resources().AddAmount(resources.Titanium, 2)
}

type trees struct{ card }

func newTrees() game.Card {
	return &trees{card{
		name:     "Trees",
		cost:     13,
		cardType: game.CardTypeAutomated,
		tags:     []game.Tag{game.TagPlant},
		metadata: game.CardMetadata{CardNumber: "060", Description: "Requires -4 C or warmer. Increase your plant production 3 steps and gain 1 plant."},
	}}
}

func (c *trees) CanPlay(p *game.Player, g *game.Game) bool {
	return g.Temperature() >= -4
}

func (c *trees) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := p.AddProduction(resources.Plants, 3); err != nil {
		return nil, err
	}
	return nil, p.Resources().AddAmount(resources.Plants, 1)
}

func (c *trees) VictoryPoints(*game.Player, *game.Game) int { return 1 }

type insulation struct{ card }

func newInsulation() game.Card {
	return &insulation{card{
		name:     "Insulation",
		cost:     2,
		cardType: game.CardTypeAutomated,
		metadata: game.CardMetadata{CardNumber: "152", Description: "Decrease your heat production any number of steps and increase your MC production the same number of steps."},
	}}
}

func (c *insulation) CanPlay(p *game.Player, g *game.Game) bool {
	return p.Production(resources.Heat) >= 1
}

func (c *insulation) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	limit := p.Production(resources.Heat)
	req := inputs.NewSelectAmount("Select number of steps to convert from heat production to MC production", 1, limit, func(amount int) (*inputs.Request, error) {
		if err := p.AddProduction(resources.Heat, -amount); err != nil {
			return nil, err
		}
		return nil, p.AddProduction(resources.MegaCredits, amount)
	})
	req.PlayerID = p.ID
	return req, nil
}

type magneticFieldDome struct{ card }

func newMagneticFieldDome() game.Card {
	return &magneticFieldDome{card{
		name:     "Magnetic Field Dome",
		cost:     5,
		cardType: game.CardTypeAutomated,
		tags:     []game.Tag{game.TagBuilding},
		metadata: game.CardMetadata{CardNumber: "171", Description: "Decrease your energy production 2 steps and increase your plant production 1 step. Raise your TR 1 step."},
	}}
}

func (c *magneticFieldDome) CanPlay(p *game.Player, g *game.Game) bool {
	return p.Production(resources.Energy) >= 2 && canAffordWithRating(p, g, c, 1)
}

func (c *magneticFieldDome) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := p.AddProduction(resources.Energy, -2); err != nil {
		return nil, err
	}
	if err := p.AddProduction(resources.Plants, 1); err != nil {
		return nil, err
	}
	return nil, p.IncreaseTerraformRating(g, 1)
}

type biomassCombustors struct{ card }

func newBiomassCombustors() game.Card {
	return &biomassCombustors{card{
		name:     "Biomass Combustors",
		cost:     4,
		cardType: game.CardTypeAutomated,
		tags:     []game.Tag{game.TagPower, game.TagBuilding},
		metadata: game.CardMetadata{CardNumber: "183", Description: "Requires 6% oxygen or less. Decrease any plant production 1 step and increase your energy production 2 steps."},
	}}
}

func (c *biomassCombustors) CanPlay(p *game.Player, g *game.Game) bool {
	return g.OxygenLevel() <= 6 && g.AnyPlayerHasProduction(resources.Plants, 1)
}

func (c *biomassCombustors) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := p.AddProduction(resources.Energy, 2); err != nil {
		return nil, err
	}
	if g.SoloMode() {
		// The neutral opponent absorbs the decrease.
		return nil, nil
	}
	targets := g.PlayersWithProduction(resources.Plants, 1)
	switch len(targets) {
	case 0:
		return nil, nil
	case 1:
		return nil, decreaseProduction(g, targets[0], resources.Plants, 1)
	}
	options := make([]*inputs.Request, len(targets))
	for i, target := range targets {
		target := target
		title := fmt.Sprintf("Decrease %s's plant production", target.Name)
		options[i] = inputs.NewSelectOption(title, "Select", func() (*inputs.Request, error) {
			return nil, decreaseProduction(g, target, resources.Plants, 1)
		})
	}
	req := inputs.NewOrOptions("Select player to decrease plant production", options...)
	req.PlayerID = p.ID
	return req, nil
}

func (c *biomassCombustors) VictoryPoints(*game.Player, *game.Game) int { return -1 }

func decreaseProduction(g *game.Game, target *game.Player, currency resources.Currency, steps int) error {
	if err := target.AddProduction(currency, -steps); err != nil {
		return err
	}
	g.Log.Log("${0} lost ${1} step(s) of ${2} production",
		gamelog.Player(target.Name), gamelog.Amount(steps), gamelog.Text(string(currency)))
	return nil
}

type asteroid struct{ card }

func newAsteroid() game.Card {
	return &asteroid{card{
		name:     "Asteroid",
		cost:     14,
		cardType: game.CardTypeEvent,
		tags:     []game.Tag{game.TagSpace},
		metadata: game.CardMetadata{CardNumber: "009", Description: "Raise temperature 1 step and gain 2 titanium. Remove up to 3 plants from any player."},
	}}
}

func (c *asteroid) CanPlay(p *game.Player, g *game.Game) bool {
	return canAffordWithRating(p, g, c, 1)
}

func (c *asteroid) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	if err := g.RaiseTemperature(p, 1); err != nil {
		return nil, err
	}
	if err := p.Resources().AddAmount(resources.Titanium, 2); err != nil {
		return nil, err
	}

	var options []*inputs.Request
	for _, target := range g.Players {
		target := target
		if target == p || target.Amount(resources.Plants) < 1 {
			continue
		}
		removed := target.Amount(resources.Plants)
		if removed > 3 {
			removed = 3
		}
		title := fmt.Sprintf("Remove %d plants from %s", removed, target.Name)
		options = append(options, inputs.NewSelectOption(title, "Remove", func() (*inputs.Request, error) {
			return nil, target.Resources().AddAmount(resources.Plants, -removed)
		}))
	}
	if len(options) == 0 {
		return nil, nil
	}
	options = append(options, inputs.NewSelectOption("Do not remove plants", "Skip", func() (*inputs.Request, error) {
		return nil, nil
	}))
	req := inputs.NewOrOptions("Select player to remove up to 3 plants from", options...)
	req.PlayerID = p.ID
	return req, nil
}

type iceCapMelting struct{ card }

func newIceCapMelting() game.Card {
	return &iceCapMelting{card{
		name:     "Ice Cap Melting",
		cost:     5,
		cardType: game.CardTypeEvent,
		metadata: game.CardMetadata{CardNumber: "181", Description: "Requires +2 C or warmer. Place 1 ocean tile."},
	}}
}

func (c *iceCapMelting) CanPlay(p *game.Player, g *game.Game) bool {
	return g.Temperature() >= 2 && canAffordWithRating(p, g, c, 1)
}

func (c *iceCapMelting) Play(p *game.Player, g *game.Game) (*inputs.Request, error) {
	return nil, g.PlaceOcean(p)
}
