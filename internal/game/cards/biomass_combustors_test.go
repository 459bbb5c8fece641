package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

func TestBiomassCombustorsRequirements(t *testing.T) {
	p1 := game.NewPlayer("p1", "Alice")
	p2 := game.NewPlayer("p2", "Bob")
	g := testGame(nil, nil, p1, p2)
	c := mustCard(t, "Biomass Combustors")

	assert.False(t, c.CanPlay(p1, g), "no player has plant production")

	require.NoError(t, p2.AddProduction(resources.Plants, 1))
	assert.True(t, c.CanPlay(p1, g), "an opponent's plant production satisfies the requirement")

	g.SetOxygenLevel(7)
	assert.False(t, c.CanPlay(p1, g), "oxygen above 6% blocks the card")
	g.SetOxygenLevel(6)
	assert.True(t, c.CanPlay(p1, g))
}

func TestBiomassCombustorsSoloBypass(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	g := testGame(nil, nil, p)
	c := mustCard(t, "Biomass Combustors")

	require.True(t, c.CanPlay(p, g), "solo play waives the opponent-board requirement")

	req, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, 2, p.Production(resources.Energy))
	assert.Equal(t, 0, p.Production(resources.Plants), "solo play never hits the player's own board")
}

func TestBiomassCombustorsSingleTarget(t *testing.T) {
	p1 := game.NewPlayer("p1", "Alice")
	p2 := game.NewPlayer("p2", "Bob")
	require.NoError(t, p2.AddProduction(resources.Plants, 1))
	g := testGame(nil, nil, p1, p2)
	c := mustCard(t, "Biomass Combustors")

	req, err := c.Play(p1, g)
	require.NoError(t, err)
	assert.Nil(t, req, "a forced target resolves without a request")
	assert.Equal(t, 2, p1.Production(resources.Energy))
	assert.Equal(t, 0, p2.Production(resources.Plants))
}

func TestBiomassCombustorsChoosesBetweenTargets(t *testing.T) {
	p1 := game.NewPlayer("p1", "Alice")
	p2 := game.NewPlayer("p2", "Bob")
	p3 := game.NewPlayer("p3", "Carol")
	require.NoError(t, p2.AddProduction(resources.Plants, 2))
	require.NoError(t, p3.AddProduction(resources.Plants, 1))
	g := testGame(nil, nil, p1, p2, p3)
	c := mustCard(t, "Biomass Combustors")

	req, err := c.Play(p1, g)
	require.NoError(t, err)
	require.NotNil(t, req)
	require.Equal(t, inputs.TypeOrOptions, req.Type)
	require.Len(t, req.Options, 2)
	assert.Equal(t, "p1", req.PlayerID, "the acting player picks the target")

	_, err = inputs.Resolve(req, &inputs.Response{Type: inputs.TypeOrOptions, OptionIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Production(resources.Plants), "unchosen target untouched")
	assert.Equal(t, 0, p3.Production(resources.Plants))
}

func TestBiomassCombustorsVictoryPoints(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	g := testGame(nil, nil, p)
	c := mustCard(t, "Biomass Combustors")
	assert.Equal(t, -1, c.VictoryPoints(p, g))
}
