package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openmars/mars-server-go/internal/game/dealer"
	"github.com/openmars/mars-server-go/internal/game/gamelog"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/policy"
	"github.com/openmars/mars-server-go/internal/game/resources"
	"github.com/openmars/mars-server-go/internal/game/rules"
)

// Global track bounds. Temperature moves in 2 degree steps.
const (
	MinTemperature  = -30
	MaxTemperature  = 8
	TemperatureStep = 2
	MaxOxygenLevel  = 14
	MaxOceans       = 9
)

// Starting terraform ratings.
const (
	startingRating     = 20
	soloStartingRating = 14
)

// Game is the match-wide aggregate: players in order, the global tracks, the
// deferred-action queue, the dealer and the phase machine. It is the sole
// owner of its players and queue entries, created once per match.
type Game struct {
	ID      string
	Players []*Player

	Phase    *rules.PhaseMachine
	Deferred *rules.DeferredQueue
	Dealer   *dealer.Dealer[Card]
	Policy   policy.Hook
	Log      *gamelog.Logger

	temperature int
	oxygenLevel int
	oceans      int

	// pending is the outstanding input request, nil while no drain cycle is
	// suspended. State is a valid checkpoint whenever it is set.
	pending *inputs.Request
}

// NewGame assembles a match over the given players and deck. The deck is
// shuffled with seed, keeping matches reproducible.
func NewGame(id string, players []*Player, deck []Card, seed int64, hook policy.Hook, logger *zap.Logger) *Game {
	if hook == nil {
		hook = policy.NoPolicy{}
	}
	order := make([]string, len(players))
	for i, p := range players {
		order[i] = p.ID
	}
	g := &Game{
		ID:          id,
		Players:     players,
		Phase:       rules.NewPhaseMachine(order),
		Deferred:    rules.NewDeferredQueue(logger),
		Dealer:      dealer.New(deck, seed),
		Policy:      hook,
		Log:         gamelog.New(logger),
		temperature: MinTemperature,
	}
	rating := startingRating
	if g.SoloMode() {
		rating = soloStartingRating
	}
	for _, p := range players {
		p.terraformRating = rating
	}
	return g
}

func logPlayer(p *Player) gamelog.Part { return gamelog.Player(p.Name) }
func logCard(c Card) gamelog.Part      { return gamelog.Card(c.Name()) }
func logAmount(n int) gamelog.Part     { return gamelog.Amount(n) }

// SoloMode reports whether the match has a single player.
func (g *Game) SoloMode() bool {
	return len(g.Players) == 1
}

// PlayerByID finds a player by ID.
func (g *Game) PlayerByID(id string) (*Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Temperature returns the global temperature in degrees Celsius.
func (g *Game) Temperature() int { return g.temperature }

// OxygenLevel returns the global oxygen percentage.
func (g *Game) OxygenLevel() int { return g.oxygenLevel }

// Oceans returns the number of placed oceans.
func (g *Game) Oceans() int { return g.oceans }

// SetTemperature overrides the temperature track. Scenario setup only.
func (g *Game) SetTemperature(value int) { g.temperature = value }

// SetOxygenLevel overrides the oxygen track. Scenario setup only.
func (g *Game) SetOxygenLevel(value int) { g.oxygenLevel = value }

// RaiseTemperature raises the temperature track for the acting player,
// awarding one terraform rating step per effective track step. Steps beyond
// the cap are lost without reward.
func (g *Game) RaiseTemperature(p *Player, steps int) error {
	for i := 0; i < steps && g.temperature < MaxTemperature; i++ {
		g.temperature += TemperatureStep
		if err := p.IncreaseTerraformRating(g, 1); err != nil {
			g.temperature -= TemperatureStep
			return err
		}
	}
	return nil
}

// RaiseOxygen raises the oxygen track for the acting player, awarding one
// terraform rating step per effective track step.
func (g *Game) RaiseOxygen(p *Player, steps int) error {
	for i := 0; i < steps && g.oxygenLevel < MaxOxygenLevel; i++ {
		g.oxygenLevel++
		if err := p.IncreaseTerraformRating(g, 1); err != nil {
			g.oxygenLevel--
			return err
		}
	}
	return nil
}

// PlaceOcean places one ocean for the acting player if the track allows.
func (g *Game) PlaceOcean(p *Player) error {
	if g.oceans >= MaxOceans {
		return nil
	}
	g.oceans++
	return p.IncreaseTerraformRating(g, 1)
}

// TracksComplete reports whether every global track reached its cap, which
// ends the game at the end of the current generation.
func (g *Game) TracksComplete() bool {
	return g.temperature >= MaxTemperature && g.oxygenLevel >= MaxOxygenLevel && g.oceans >= MaxOceans
}

// AnyPlayerHasProduction reports whether any player meets a production
// requirement. A solo match bypasses requirements on other players' boards:
// with no opponent the requirement is waived.
func (g *Game) AnyPlayerHasProduction(c resources.Currency, min int) bool {
	if g.SoloMode() {
		return true
	}
	for _, p := range g.Players {
		if p.Production(c) >= min {
			return true
		}
	}
	return false
}

// PlayersWithProduction returns the players whose production of c is at
// least min.
func (g *Game) PlayersWithProduction(c resources.Currency, min int) []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.Production(c) >= min {
			out = append(out, p)
		}
	}
	return out
}

// DealToHand moves the top card of the deck into the player's hand. Zone
// transfer: removal from the deck and insertion into the hand are one
// operation.
func (g *Game) DealToHand(p *Player) (Card, error) {
	card, err := g.Dealer.DealCard()
	if err != nil {
		return nil, err
	}
	p.Hand = append(p.Hand, card)
	g.Log.Log("${0} drew ${1}", logPlayer(p), logCard(card))
	return card, nil
}

// DealToHandByType deals cards until one of the requested type appears,
// discarding the rest, and moves it into the player's hand. Bounded by the
// total card count so a deck without the type fails instead of cycling
// through the reshuffled discard forever.
func (g *Game) DealToHandByType(p *Player, t CardType) (Card, error) {
	total := g.Dealer.DeckSize() + g.Dealer.DiscardSize()
	for i := 0; i < total; i++ {
		card, err := g.Dealer.DealCard()
		if err != nil {
			return nil, err
		}
		if card.Type() != t {
			g.Dealer.Discard(card)
			continue
		}
		p.Hand = append(p.Hand, card)
		g.Log.Log("${0} drew ${1}", logPlayer(p), logCard(card))
		return card, nil
	}
	return nil, fmt.Errorf("%w: no %s card available", dealer.ErrDeckExhausted, t)
}

// PlayFromHand moves a card from the player's hand to their played area.
func (g *Game) PlayFromHand(p *Player, name string) (Card, error) {
	card, ok := p.removeFromHand(name)
	if !ok {
		return nil, fmt.Errorf("%w: card %q not in hand", ErrIllegalAction, name)
	}
	p.Played = append(p.Played, card)
	return card, nil
}

// DiscardPlayed moves a card from the player's played area to the dealer's
// discard pile.
func (g *Game) DiscardPlayed(p *Player, name string) error {
	card, ok := p.removeFromPlayed(name)
	if !ok {
		return fmt.Errorf("%w: card %q not in play", ErrIllegalAction, name)
	}
	g.Dealer.Discard(card)
	return nil
}

// CheckZoneIntegrity verifies that no card is present in two zones. Returns
// an ErrInvariantViolation naming the first offender found.
func (g *Game) CheckZoneIntegrity() error {
	seen := make(map[string]string)
	note := func(name, zone string) error {
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("%w: card %q present in %s and %s", ErrInvariantViolation, name, prev, zone)
		}
		seen[name] = zone
		return nil
	}

	deck, discard := g.Dealer.Contents()
	for _, c := range deck {
		if err := note(c.Name(), "deck"); err != nil {
			return err
		}
	}
	for _, c := range discard {
		if err := note(c.Name(), "discard"); err != nil {
			return err
		}
	}
	for _, p := range g.Players {
		for _, c := range p.Hand {
			if err := note(c.Name(), "hand:"+p.ID); err != nil {
				return err
			}
		}
		for _, c := range p.Played {
			if err := note(c.Name(), "played:"+p.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// PendingRequest returns the outstanding input request, if any.
func (g *Game) PendingRequest() (*inputs.Request, bool) {
	if g.pending == nil {
		return nil, false
	}
	return g.pending, true
}

// PlayerScore is one player's final score breakdown.
type PlayerScore struct {
	PlayerID        string `json:"player_id"`
	Name            string `json:"name"`
	TerraformRating int    `json:"terraform_rating"`
	CardPoints      int    `json:"card_points"`
	Total           int    `json:"total"`
}

// FinalScores reads terraform rating and card victory point snapshots. Only
// meaningful once the phase machine is locked.
func (g *Game) FinalScores() []PlayerScore {
	scores := make([]PlayerScore, 0, len(g.Players))
	for _, p := range g.Players {
		cardPoints := 0
		for _, c := range p.Played {
			cardPoints += c.VictoryPoints(p, g)
		}
		if p.Corporation != nil {
			cardPoints += p.Corporation.VictoryPoints(p, g)
		}
		scores = append(scores, PlayerScore{
			PlayerID:        p.ID,
			Name:            p.Name,
			TerraformRating: p.terraformRating,
			CardPoints:      cardPoints,
			Total:           p.terraformRating + cardPoints,
		})
	}
	return scores
}
