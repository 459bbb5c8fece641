package game

import (
	"github.com/openmars/mars-server-go/internal/game/gamelog"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

// PlayerView is one player's state as shown to a requesting client. Hands
// are hidden from opponents; only counts are public.
type PlayerView struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	TerraformRating int            `json:"terraform_rating"`
	Corporation     string         `json:"corporation,omitempty"`
	Resources       map[string]int `json:"resources"`
	Production      map[string]int `json:"production"`
	HandCount       int            `json:"hand_count"`
	Hand            []string       `json:"hand,omitempty"`
	Played          []string       `json:"played"`
	Passed          bool           `json:"passed"`
}

// GameView is a match's state as shown to a requesting client.
type GameView struct {
	GameID       string          `json:"game_id"`
	Generation   int             `json:"generation"`
	Phase        string          `json:"phase"`
	ActivePlayer string          `json:"active_player"`
	Temperature  int             `json:"temperature"`
	OxygenLevel  int             `json:"oxygen_level"`
	Oceans       int             `json:"oceans"`
	DeckSize     int             `json:"deck_size"`
	DiscardSize  int             `json:"discard_size"`
	Players      []PlayerView    `json:"players"`
	PendingInput *inputs.View    `json:"pending_input,omitempty"`
	Log          []gamelog.Entry `json:"log"`
	FinalScores  []PlayerScore   `json:"final_scores,omitempty"`
}

// GameView renders the match for the requesting player. An empty playerID
// yields the omniscient view used by snapshots and spectating admins.
func (e *Engine) GameView(gameID, playerID string) (GameView, error) {
	mg, err := e.managed(gameID)
	if err != nil {
		return GameView{}, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()

	g := mg.game
	view := GameView{
		GameID:       g.ID,
		Generation:   g.Phase.Generation(),
		Phase:        g.Phase.CurrentPhase().String(),
		ActivePlayer: g.Phase.ActivePlayer(),
		Temperature:  g.Temperature(),
		OxygenLevel:  g.OxygenLevel(),
		Oceans:       g.Oceans(),
		DeckSize:     g.Dealer.DeckSize(),
		DiscardSize:  g.Dealer.DiscardSize(),
		Log:          g.Log.Entries(),
	}

	for _, p := range g.Players {
		amounts, production := p.Resources().Snapshot()
		pv := PlayerView{
			ID:              p.ID,
			Name:            p.Name,
			TerraformRating: p.TerraformRating(),
			Resources:       currencyMap(amounts),
			Production:      currencyMap(production),
			HandCount:       len(p.Hand),
			Played:          p.PlayedNames(),
			Passed:          g.Phase.HasPassed(p.ID),
		}
		if p.Corporation != nil {
			pv.Corporation = p.Corporation.Name()
		}
		if playerID == "" || playerID == p.ID {
			pv.Hand = p.HandNames()
		}
		view.Players = append(view.Players, pv)
	}

	if g.pending != nil && (playerID == "" || g.pending.PlayerID == playerID) {
		v := g.pending.View()
		view.PendingInput = &v
	}
	if g.Phase.Locked() {
		view.FinalScores = g.FinalScores()
	}
	return view, nil
}

func currencyMap(in map[resources.Currency]int) map[string]int {
	out := make(map[string]int, len(in))
	for c, v := range in {
		out[string(c)] = v
	}
	return out
}
