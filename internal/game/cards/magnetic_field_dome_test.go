package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/policy"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

func TestMagneticFieldDome(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	p.Resources().SetAmount(resources.MegaCredits, 20)
	g := testGame(nil, nil, p)
	c := mustCard(t, "Magnetic Field Dome")

	assert.False(t, c.CanPlay(p, g), "requires 2 energy production")
	require.NoError(t, p.AddProduction(resources.Energy, 2))
	require.True(t, c.CanPlay(p, g))

	before := p.TerraformRating()
	_, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Production(resources.Energy))
	assert.Equal(t, 1, p.Production(resources.Plants))
	assert.Equal(t, before+1, p.TerraformRating())
}

func TestMagneticFieldDomeEnergyFloor(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	p.Resources().SetAmount(resources.MegaCredits, 20)
	g := testGame(nil, nil, p)
	c := mustCard(t, "Magnetic Field Dome")

	before := p.TerraformRating()
	_, err := c.Play(p, g)
	require.ErrorIs(t, err, resources.ErrInsufficientResources, "energy production cannot drop below zero")
	assert.Equal(t, 0, p.Production(resources.Plants), "failed effect leaves the rest of the board alone")
	assert.Equal(t, before, p.TerraformRating())
}

func TestMagneticFieldDomeRedsTax(t *testing.T) {
	hook := policy.RulingParty{Party: "REDS"}

	p := game.NewPlayer("p1", "Alice")
	g := testGame(hook, nil, p)
	c := mustCard(t, "Magnetic Field Dome")
	require.NoError(t, p.AddProduction(resources.Energy, 2))

	// Cost 5 plus the 3 MC tax for the rating step.
	p.Resources().SetAmount(resources.MegaCredits, 7)
	assert.False(t, c.CanPlay(p, g), "cannot cover the Reds tax")

	p.Resources().SetAmount(resources.MegaCredits, 8)
	require.True(t, c.CanPlay(p, g))

	before := p.TerraformRating()
	_, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Equal(t, before+1, p.TerraformRating())
	assert.Equal(t, 8-policy.RedsRulingTaxCost, p.Amount(resources.MegaCredits), "the tax is charged on play, the card cost separately")
}

func TestMagneticFieldDomeRedsTaxNotPayableWithSteel(t *testing.T) {
	hook := policy.RulingParty{Party: "REDS"}

	p := game.NewPlayer("p1", "Alice")
	g := testGame(hook, nil, p)
	c := mustCard(t, "Magnetic Field Dome")
	require.NoError(t, p.AddProduction(resources.Energy, 2))

	// Steel covers the build cost with value to spare, but the tax is due in
	// megacredits and the cost payment consumes both of them first.
	p.Resources().SetAmount(resources.MegaCredits, 2)
	p.Resources().SetAmount(resources.Steel, 3)
	assert.False(t, c.CanPlay(p, g))

	// With enough megacredits the same holding plays cleanly end to end.
	p.Resources().SetAmount(resources.MegaCredits, 8)
	require.True(t, c.CanPlay(p, g))
	require.NoError(t, p.PayCost(c.Cost(), c))

	before := p.TerraformRating()
	_, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Equal(t, before+1, p.TerraformRating())
	assert.Equal(t, 0, p.Amount(resources.MegaCredits))
	assert.Equal(t, 0, p.Production(resources.Energy))
	assert.Equal(t, 1, p.Production(resources.Plants))
}
