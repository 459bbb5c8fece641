package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/policy"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

func testGame(hook policy.Hook, deck []game.Card, players ...*game.Player) *game.Game {
	if hook == nil {
		hook = policy.NoPolicy{}
	}
	return game.NewGame("test-game", players, deck, 42, hook, zap.NewNop())
}

func mustCard(t *testing.T, name string) game.Card {
	t.Helper()
	c, ok := NewRegistry().Resolve(name)
	require.True(t, ok, "card %q not registered", name)
	return c
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()

	c, ok := r.Resolve("Power Plant")
	require.True(t, ok)
	assert.Equal(t, "Power Plant", c.Name())
	assert.Equal(t, 4, c.Cost())

	_, ok = r.Resolve("Flux Capacitor")
	assert.False(t, ok)
}

func TestStandardDeckHasNoCorporations(t *testing.T) {
	r := NewRegistry()
	for _, name := range StandardDeck() {
		c, ok := r.Resolve(name)
		require.True(t, ok, "deck names %q but the registry does not know it", name)
		assert.NotEqual(t, game.CardTypeCorporation, c.Type(), "deck contains corporation %q", name)
	}
	assert.NotEmpty(t, Corporations())
}

func TestStandardDeckNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, name := range StandardDeck() {
		assert.False(t, seen[name], "duplicate deck entry %q", name)
		seen[name] = true
	}
}

func TestPowerPlant(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	g := testGame(nil, nil, p)
	c := mustCard(t, "Power Plant")

	require.True(t, c.CanPlay(p, g))
	req, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, 1, p.Production(resources.Energy))
}

func TestLunarBeamProductionSwap(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	g := testGame(nil, nil, p)
	c := mustCard(t, "Lunar Beam")

	require.True(t, c.CanPlay(p, g), "MC production 0 leaves room above the -5 floor")
	_, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Equal(t, -2, p.Production(resources.MegaCredits))
	assert.Equal(t, 2, p.Production(resources.Heat))
	assert.Equal(t, 2, p.Production(resources.Energy))

	// Two more copies would hit the floor.
	require.NoError(t, p.AddProduction(resources.MegaCredits, -2))
	assert.False(t, c.CanPlay(p, g))
}

func TestTreesTemperatureRequirement(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	g := testGame(nil, nil, p)
	c := mustCard(t, "Trees")

	assert.False(t, c.CanPlay(p, g), "temperature starts at -30")
	g.SetTemperature(-4)
	assert.True(t, c.CanPlay(p, g))

	_, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Production(resources.Plants))
	assert.Equal(t, 1, p.Amount(resources.Plants))
	assert.Equal(t, 1, c.VictoryPoints(p, g))
}

func TestInsulationAmountSelection(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	g := testGame(nil, nil, p)
	c := mustCard(t, "Insulation")

	assert.False(t, c.CanPlay(p, g), "needs heat production to convert")
	require.NoError(t, p.AddProduction(resources.Heat, 3))
	require.True(t, c.CanPlay(p, g))

	req, err := c.Play(p, g)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, inputs.TypeSelectAmount, req.Type)
	assert.Equal(t, 1, req.MinAmount)
	assert.Equal(t, 3, req.MaxAmount)

	// An out-of-bounds amount is rejected without touching the ledger.
	_, err = inputs.Resolve(req, &inputs.Response{Type: inputs.TypeSelectAmount, Amount: 4})
	require.ErrorIs(t, err, inputs.ErrIllegalSelection)
	assert.Equal(t, 3, p.Production(resources.Heat))

	next, err := inputs.Resolve(req, &inputs.Response{Type: inputs.TypeSelectAmount, Amount: 2})
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, 1, p.Production(resources.Heat))
	assert.Equal(t, 2, p.Production(resources.MegaCredits))
}

func TestIceCapMelting(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	p.Resources().SetAmount(resources.MegaCredits, 20)
	g := testGame(nil, nil, p)
	c := mustCard(t, "Ice Cap Melting")

	assert.False(t, c.CanPlay(p, g), "requires +2 C")
	g.SetTemperature(2)
	require.True(t, c.CanPlay(p, g))

	before := p.TerraformRating()
	_, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Oceans())
	assert.Equal(t, before+1, p.TerraformRating())
}

func TestAsteroidPlantRemoval(t *testing.T) {
	p1 := game.NewPlayer("p1", "Alice")
	p2 := game.NewPlayer("p2", "Bob")
	p1.Resources().SetAmount(resources.MegaCredits, 20)
	p2.Resources().SetAmount(resources.Plants, 5)
	g := testGame(nil, nil, p1, p2)
	c := mustCard(t, "Asteroid")

	req, err := c.Play(p1, g)
	require.NoError(t, err)
	assert.Equal(t, game.MinTemperature+game.TemperatureStep, g.Temperature())
	assert.Equal(t, 2, p1.Amount(resources.Titanium))

	require.NotNil(t, req)
	require.Equal(t, inputs.TypeOrOptions, req.Type)
	require.Len(t, req.Options, 2, "one removal target plus the skip option")

	_, err = inputs.Resolve(req, &inputs.Response{Type: inputs.TypeOrOptions, OptionIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Amount(resources.Plants), "removes at most 3 plants")
}

func TestAsteroidSkipsRemovalWhenNoTargets(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	p.Resources().SetAmount(resources.MegaCredits, 20)
	g := testGame(nil, nil, p)
	c := mustCard(t, "Asteroid")

	req, err := c.Play(p, g)
	require.NoError(t, err)
	assert.Nil(t, req, "solo play has no removal target")
}

func TestCaretakerContractAction(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	g := testGame(nil, nil, p)
	c := mustCard(t, "Caretaker Contract").(game.ActiveCard)

	assert.False(t, c.CanPlay(p, g), "requires 0 C")
	g.SetTemperature(0)
	require.True(t, c.CanPlay(p, g))

	assert.False(t, c.CanAct(p, g), "needs 8 heat")
	p.Resources().SetAmount(resources.Heat, 9)
	require.True(t, c.CanAct(p, g))

	before := p.TerraformRating()
	_, err := c.Action(p, g)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Amount(resources.Heat))
	assert.Equal(t, before+1, p.TerraformRating())
}

func TestSpaceMirrorsAction(t *testing.T) {
	p := game.NewPlayer("p1", "Alice")
	g := testGame(nil, nil, p)
	c := mustCard(t, "Space Mirrors").(game.ActiveCard)

	assert.False(t, c.CanAct(p, g))
	p.Resources().SetAmount(resources.MegaCredits, 10)
	require.True(t, c.CanAct(p, g))

	_, err := c.Action(p, g)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Amount(resources.MegaCredits))
	assert.Equal(t, 1, p.Production(resources.Energy))
}
