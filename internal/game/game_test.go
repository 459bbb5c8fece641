package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openmars/mars-server-go/internal/game/dealer"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/policy"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

// stubCard is a configurable card fixture.
type stubCard struct {
	name     string
	cost     int
	cardType CardType
	tags     []Tag
	vp       int
}

func (c *stubCard) Name() string                          { return c.name }
func (c *stubCard) Cost() int                             { return c.cost }
func (c *stubCard) Type() CardType                        { return c.cardType }
func (c *stubCard) Tags() []Tag                           { return c.tags }
func (c *stubCard) Metadata() CardMetadata                { return CardMetadata{} }
func (c *stubCard) CanPlay(*Player, *Game) bool           { return true }
func (c *stubCard) VictoryPoints(*Player, *Game) int      { return c.vp }
func (c *stubCard) Play(*Player, *Game) (*inputs.Request, error) {
	return nil, nil
}

func newBareGame(hook policy.Hook, deck []Card, players ...*Player) *Game {
	if hook == nil {
		hook = policy.NoPolicy{}
	}
	return NewGame("g", players, deck, 1, hook, zap.NewNop())
}

func TestRaiseTemperatureCapsAtMax(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	g := newBareGame(nil, nil, p)
	g.SetTemperature(MaxTemperature - TemperatureStep)

	before := p.TerraformRating()
	require.NoError(t, g.RaiseTemperature(p, 3))
	assert.Equal(t, MaxTemperature, g.Temperature())
	assert.Equal(t, before+1, p.TerraformRating(), "steps past the cap earn nothing")
}

func TestRaiseTemperatureRedsTaxRollsBack(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	g := newBareGame(policy.RulingParty{Party: "REDS"}, nil, p)

	err := g.RaiseTemperature(p, 1)
	require.ErrorIs(t, err, resources.ErrInsufficientResources)
	assert.Equal(t, MinTemperature, g.Temperature(), "an unpayable tax leaves the track untouched")
	assert.Equal(t, soloStartingRating, p.TerraformRating())
}

func TestPlaceOceanCapsAtNine(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	g := newBareGame(nil, nil, p)

	before := p.TerraformRating()
	for i := 0; i < MaxOceans+2; i++ {
		require.NoError(t, g.PlaceOcean(p))
	}
	assert.Equal(t, MaxOceans, g.Oceans())
	assert.Equal(t, before+MaxOceans, p.TerraformRating())
}

func TestTracksComplete(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	g := newBareGame(nil, nil, p)
	assert.False(t, g.TracksComplete())

	g.SetTemperature(MaxTemperature)
	g.SetOxygenLevel(MaxOxygenLevel)
	assert.False(t, g.TracksComplete(), "oceans still missing")

	for i := 0; i < MaxOceans; i++ {
		require.NoError(t, g.PlaceOcean(p))
	}
	assert.True(t, g.TracksComplete())
}

func TestCheckZoneIntegrityFlagsDuplicates(t *testing.T) {
	c := &stubCard{name: "Ghost", cardType: CardTypeAutomated}
	p := NewPlayer("p1", "Alice")
	g := newBareGame(nil, []Card{c}, p)
	require.NoError(t, g.CheckZoneIntegrity())

	// The same card materializes in the hand without leaving the deck.
	p.Hand = append(p.Hand, c)
	err := g.CheckZoneIntegrity()
	require.ErrorIs(t, err, ErrInvariantViolation)
	assert.Contains(t, err.Error(), "Ghost")
}

func TestDealToHandByType(t *testing.T) {
	deck := []Card{
		&stubCard{name: "A", cardType: CardTypeAutomated},
		&stubCard{name: "B", cardType: CardTypeActive},
		&stubCard{name: "C", cardType: CardTypeAutomated},
	}
	p := NewPlayer("p1", "Alice")
	g := newBareGame(nil, deck, p)

	card, err := g.DealToHandByType(p, CardTypeActive)
	require.NoError(t, err)
	assert.Equal(t, "B", card.Name())
	assert.Equal(t, []string{"B"}, p.HandNames())
	assert.Equal(t, 2, g.Dealer.DeckSize()+g.Dealer.DiscardSize(), "skipped cards go to the discard")

	_, err = g.DealToHandByType(p, CardTypeActive)
	require.ErrorIs(t, err, dealer.ErrDeckExhausted, "no second active card exists")
	require.NoError(t, g.CheckZoneIntegrity())
}

func TestFinalScores(t *testing.T) {
	p1 := NewPlayer("p1", "Alice")
	p2 := NewPlayer("p2", "Bob")
	g := newBareGame(nil, nil, p1, p2)

	p1.Played = append(p1.Played, &stubCard{name: "Good", vp: 2}, &stubCard{name: "Bad", vp: -1})
	p2.Played = append(p2.Played, &stubCard{name: "Fine", vp: 1})

	scores := g.FinalScores()
	require.Len(t, scores, 2)
	assert.Equal(t, startingRating+1, scores[0].Total)
	assert.Equal(t, 1, scores[0].CardPoints)
	assert.Equal(t, startingRating+1, scores[1].Total)
}

func TestPaymentPlanPrefersMegaCredits(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	p.Resources().SetAmount(resources.MegaCredits, 3)
	p.Resources().SetAmount(resources.Steel, 4)
	building := &stubCard{name: "Dome", cost: 7, tags: []Tag{TagBuilding}}

	require.True(t, p.CanAfford(7, building))
	require.NoError(t, p.PayCost(7, building))
	assert.Equal(t, 0, p.Amount(resources.MegaCredits))
	assert.Equal(t, 2, p.Amount(resources.Steel), "2 steel at value 2 cover the remaining 4")

	space := &stubCard{name: "Probe", cost: 5, tags: []Tag{TagSpace}}
	assert.False(t, p.CanAfford(5, space), "steel does not pay for space cards")
}
