package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openmars/mars-server-go/internal/game/dealer"
	"github.com/openmars/mars-server-go/internal/game/gamelog"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/policy"
	"github.com/openmars/mars-server-go/internal/game/resources"
	"github.com/openmars/mars-server-go/internal/game/rules"
)

// Research phase parameters: cards dealt per player and the megacredit price
// to keep one.
const (
	researchDealCount = 4
	cardBuyCost       = 3
)

// ActionType names the actions a player can submit during the action phase.
type ActionType string

const (
	ActionPlayCard          ActionType = "PLAY_CARD"
	ActionCardAction        ActionType = "CARD_ACTION"
	ActionCorporationAction ActionType = "CORPORATION_ACTION"
	ActionPass              ActionType = "PASS"
)

// PlayerAction is the payload of a submitted action.
type PlayerAction struct {
	Type     ActionType `json:"type"`
	CardName string     `json:"card_name,omitempty"`
}

// GameNotification is pushed to external systems (UI, websockets) on every
// significant state change.
type GameNotification struct {
	Type      string         `json:"type"`
	GameID    string         `json:"game_id"`
	PlayerID  string         `json:"player_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NotificationHandler receives engine notifications. Called on its own
// goroutine; it may safely call back into the engine.
type NotificationHandler func(notification GameNotification)

// PlayerSetup describes one player at match creation.
type PlayerSetup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Corporation string `json:"corporation,omitempty"`
}

// GameSetup describes a match completely enough to recreate it: given the
// same setup and the same action sequence, the engine reproduces the same
// state.
type GameSetup struct {
	GameID      string        `json:"game_id"`
	Seed        int64         `json:"seed"`
	Players     []PlayerSetup `json:"players"`
	Deck        []string      `json:"deck"`
	RulingParty string        `json:"ruling_party,omitempty"`
}

// ActionRecord is one committed external stimulus: a player action or an
// input response. The ordered record list plus the GameSetup form the match
// snapshot.
type ActionRecord struct {
	Kind     string           `json:"kind"` // "action" or "input"
	PlayerID string           `json:"player_id,omitempty"`
	Action   *PlayerAction    `json:"action,omitempty"`
	Response *inputs.Response `json:"response,omitempty"`
}

// managedGame pairs a match with its replay record. Its mutex serializes all
// operations on the match: one externally-delivered action or response runs
// to completion, including a full drain cycle, before the next is accepted.
type managedGame struct {
	mu      sync.Mutex
	game    *Game
	setup   GameSetup
	actions []ActionRecord
}

// Engine hosts matches and mediates every externally-delivered action and
// input response.
type Engine struct {
	logger              *zap.Logger
	mu                  sync.RWMutex
	games               map[string]*managedGame
	resolver            CardResolver
	notificationHandler NotificationHandler
}

// NewEngine creates an engine. The resolver maps card names to definitions
// from the card-content library.
func NewEngine(logger *zap.Logger, resolver CardResolver) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:   logger,
		games:    make(map[string]*managedGame),
		resolver: resolver,
	}
}

// SetNotificationHandler registers the handler for engine notifications.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

func (e *Engine) notify(notificationType, gameID, playerID string, data map[string]any) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()
	if handler == nil {
		return
	}
	go handler(GameNotification{
		Type:      notificationType,
		GameID:    gameID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// GameCount returns the number of hosted matches.
func (e *Engine) GameCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.games)
}

func (e *Engine) managed(gameID string) (*managedGame, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	mg, ok := e.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return mg, nil
}

// CreateGame assembles a new match from the setup, runs corporation setup and
// the first research phase, and dispatches the first input request.
func (e *Engine) CreateGame(setup GameSetup) error {
	if setup.GameID == "" {
		setup.GameID = uuid.NewString()
	}
	if len(setup.Players) == 0 {
		return fmt.Errorf("%w: no players", ErrIllegalAction)
	}

	deck := make([]Card, 0, len(setup.Deck))
	for _, name := range setup.Deck {
		card, ok := e.resolver(name)
		if !ok {
			return fmt.Errorf("%w: unknown card %q in deck", ErrIllegalAction, name)
		}
		deck = append(deck, card)
	}

	players := make([]*Player, 0, len(setup.Players))
	for _, ps := range setup.Players {
		players = append(players, NewPlayer(ps.ID, ps.Name))
	}

	var hook policy.Hook = policy.NoPolicy{}
	if setup.RulingParty != "" {
		hook = policy.RulingParty{Party: setup.RulingParty}
	}

	g := NewGame(setup.GameID, players, deck, setup.Seed, hook, e.logger)

	for i, ps := range setup.Players {
		if ps.Corporation == "" {
			continue
		}
		card, ok := e.resolver(ps.Corporation)
		if !ok {
			return fmt.Errorf("%w: unknown corporation %q", ErrIllegalAction, ps.Corporation)
		}
		corp, ok := card.(CorporationCard)
		if !ok {
			return fmt.Errorf("%w: card %q is not a corporation", ErrIllegalAction, ps.Corporation)
		}
		p := players[i]
		p.Corporation = corp
		p.Resources().SetAmount(resources.MegaCredits, corp.StartingMegaCredits())
		setupReq, err := corp.Play(p, g)
		if err != nil {
			return fmt.Errorf("corporation setup for %s: %w", p.ID, err)
		}
		g.Log.Log("${0} plays as ${1}", logPlayer(p), logCard(corp))

		if setupReq != nil {
			g.Deferred.Enqueue(&rules.DeferredAction{
				ID:          uuid.NewString(),
				PlayerID:    p.ID,
				Description: fmt.Sprintf("setup decision for %s", corp.Name()),
				Execute: func() (*inputs.Request, error) {
					return setupReq, nil
				},
			})
		}

		g.Deferred.Enqueue(&rules.DeferredAction{
			ID:          uuid.NewString(),
			PlayerID:    p.ID,
			Description: fmt.Sprintf("initial action of %s", corp.Name()),
			Execute: func() (*inputs.Request, error) {
				return corp.InitialAction(p, g)
			},
		})
	}

	mg := &managedGame{game: g, setup: setup}

	e.mu.Lock()
	if _, exists := e.games[setup.GameID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: game %s already exists", ErrIllegalAction, setup.GameID)
	}
	e.games[setup.GameID] = mg
	e.mu.Unlock()

	mg.mu.Lock()
	e.startResearch(g)
	e.progress(g)
	mg.mu.Unlock()

	e.logger.Info("game created",
		zap.String("game_id", setup.GameID),
		zap.Int("players", len(players)),
		zap.Int64("seed", setup.Seed),
	)
	e.notify("GAME_CREATED", setup.GameID, "", nil)
	return nil
}

// startResearch enqueues one card-buy decision per player, in player order.
// Cards are dealt when the entry executes so the dealer order stays aligned
// with the queue.
func (e *Engine) startResearch(g *Game) {
	g.Log.Log("Generation ${0} research phase", logAmount(g.Phase.Generation()))
	for _, p := range g.Players {
		p := p
		g.Deferred.Enqueue(&rules.DeferredAction{
			ID:          uuid.NewString(),
			PlayerID:    p.ID,
			Description: fmt.Sprintf("research draft for %s", p.ID),
			Execute: func() (*inputs.Request, error) {
				return e.researchRequest(g, p)
			},
		})
	}
}

// researchRequest deals the research cards and builds the buy decision.
func (e *Engine) researchRequest(g *Game, p *Player) (*inputs.Request, error) {
	dealt, err := g.Dealer.DealCards(researchDealCount)
	if err != nil && !errors.Is(err, dealer.ErrDeckExhausted) {
		return nil, err
	}
	if len(dealt) == 0 {
		// Nothing left to offer; the player skips research this generation.
		return nil, nil
	}

	names := make([]string, len(dealt))
	for i, c := range dealt {
		names[i] = c.Name()
	}

	title := fmt.Sprintf("Select cards to buy (%d MC each)", cardBuyCost)
	req := inputs.NewSelectCard(title, "Buy", names, 0, len(names), func(kept []string) (*inputs.Request, error) {
		total := cardBuyCost * len(kept)
		if !p.Resources().CanAfford(total, resources.SpendOptions{}) {
			return nil, fmt.Errorf("%w: keeping %d cards costs %d", resources.ErrInsufficientResources, len(kept), total)
		}
		if err := p.Resources().AddAmount(resources.MegaCredits, -total); err != nil {
			return nil, err
		}
		keep := make(map[string]int, len(kept))
		for _, name := range kept {
			keep[name]++
		}
		for _, c := range dealt {
			if keep[c.Name()] > 0 {
				keep[c.Name()]--
				p.Hand = append(p.Hand, c)
			} else {
				g.Dealer.Discard(c)
			}
		}
		g.Log.Log("${0} bought ${1} card(s)", logPlayer(p), logAmount(len(kept)))
		return nil, nil
	})
	req.PlayerID = p.ID
	return req, nil
}

// SubmitAction validates and applies one player action. When the resulting
// drain cycle suspends on a player decision, the outstanding request view is
// returned.
func (e *Engine) SubmitAction(gameID, playerID string, action PlayerAction) (*inputs.View, error) {
	mg, err := e.managed(gameID)
	if err != nil {
		return nil, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()

	g := mg.game
	if g.Phase.Locked() {
		return nil, fmt.Errorf("%w: game is over", ErrIllegalAction)
	}
	if g.pending != nil {
		return nil, fmt.Errorf("%w: an input request is outstanding", ErrIllegalAction)
	}
	if g.Phase.CurrentPhase() != rules.PhaseAction {
		return nil, fmt.Errorf("%w: no actions during %s", ErrIllegalAction, g.Phase.CurrentPhase())
	}
	if g.Phase.ActivePlayer() != playerID {
		return nil, fmt.Errorf("%w: not %s's turn", ErrIllegalAction, playerID)
	}
	p, ok := g.PlayerByID(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown player %s", ErrIllegalAction, playerID)
	}

	switch action.Type {
	case ActionPass:
		if err := g.Phase.Pass(playerID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIllegalAction, err)
		}
		g.Log.Log("${0} passed", logPlayer(p))

	case ActionPlayCard:
		if err := e.playCard(g, p, action.CardName); err != nil {
			return nil, err
		}
		g.Phase.AdvancePlayer()

	case ActionCardAction:
		if err := e.cardAction(g, p, action.CardName); err != nil {
			return nil, err
		}
		g.Phase.AdvancePlayer()

	case ActionCorporationAction:
		if err := e.corporationAction(g, p); err != nil {
			return nil, err
		}
		g.Phase.AdvancePlayer()

	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrIllegalAction, action.Type)
	}

	mg.actions = append(mg.actions, ActionRecord{Kind: "action", PlayerID: playerID, Action: &action})
	e.progress(g)
	e.notify("GAME_STATE_CHANGE", g.ID, playerID, nil)
	return e.outstandingView(g), nil
}

// playCard checks legality and affordability, pays the cost, transfers the
// card from hand to played, and enqueues its effect.
func (e *Engine) playCard(g *Game, p *Player, name string) error {
	card, ok := p.FindInHand(name)
	if !ok {
		return fmt.Errorf("%w: card %q not in hand", ErrIllegalAction, name)
	}
	if !card.CanPlay(p, g) {
		return fmt.Errorf("%w: requirements for %q not met", ErrIllegalAction, name)
	}
	if !p.CanAfford(card.Cost(), card) {
		return fmt.Errorf("%w: cannot pay %d for %q", resources.ErrInsufficientResources, card.Cost(), name)
	}
	if err := p.PayCost(card.Cost(), card); err != nil {
		return err
	}
	if _, err := g.PlayFromHand(p, name); err != nil {
		return err
	}
	g.Log.Log("${0} played ${1}", logPlayer(p), logCard(card))

	g.Deferred.Enqueue(&rules.DeferredAction{
		ID:          uuid.NewString(),
		PlayerID:    p.ID,
		Description: fmt.Sprintf("effect of %s", card.Name()),
		Execute: func() (*inputs.Request, error) {
			req, err := card.Play(p, g)
			if err != nil {
				return nil, err
			}
			if zoneErr := g.CheckZoneIntegrity(); zoneErr != nil {
				return nil, zoneErr
			}
			return req, nil
		},
	})
	return nil
}

// cardAction enqueues the once-per-generation action of a played card.
func (e *Engine) cardAction(g *Game, p *Player, name string) error {
	var active ActiveCard
	for _, c := range p.Played {
		if c.Name() != name {
			continue
		}
		a, ok := c.(ActiveCard)
		if !ok {
			return fmt.Errorf("%w: card %q has no action", ErrIllegalAction, name)
		}
		active = a
		break
	}
	if active == nil {
		return fmt.Errorf("%w: card %q not in play", ErrIllegalAction, name)
	}
	if p.CardActionUsed(name) {
		return fmt.Errorf("%w: action of %q already used this generation", ErrIllegalAction, name)
	}
	if !active.CanAct(p, g) {
		return fmt.Errorf("%w: action of %q not available", ErrIllegalAction, name)
	}
	p.markCardActionUsed(name)
	g.Log.Log("${0} used the ${1} action", logPlayer(p), logCard(active))

	g.Deferred.Enqueue(&rules.DeferredAction{
		ID:          uuid.NewString(),
		PlayerID:    p.ID,
		Description: fmt.Sprintf("action of %s", name),
		Execute: func() (*inputs.Request, error) {
			return active.Action(p, g)
		},
	})
	return nil
}

// corporationAction enqueues the once-per-generation corporation action.
func (e *Engine) corporationAction(g *Game, p *Player) error {
	corp := p.Corporation
	if corp == nil {
		return fmt.Errorf("%w: player has no corporation", ErrIllegalAction)
	}
	if p.corporationActed {
		return fmt.Errorf("%w: corporation action already used this generation", ErrIllegalAction)
	}
	if !corp.CanAct(p, g) {
		return fmt.Errorf("%w: corporation action not available", ErrIllegalAction)
	}
	p.corporationActed = true
	g.Log.Log("${0} used the ${1} action", logPlayer(p), logCard(corp))

	g.Deferred.Enqueue(&rules.DeferredAction{
		ID:          uuid.NewString(),
		PlayerID:    p.ID,
		Description: fmt.Sprintf("action of %s", corp.Name()),
		Execute: func() (*inputs.Request, error) {
			return corp.Action(p, g)
		},
	})
	return nil
}

// SubmitInputResponse resolves the outstanding input request. A stale request
// ID or a selection outside the offered tree fails with ErrIllegalSelection
// and leaves the request outstanding for a corrected response.
func (e *Engine) SubmitInputResponse(gameID, requestID string, response *inputs.Response) (*inputs.View, error) {
	mg, err := e.managed(gameID)
	if err != nil {
		return nil, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()

	g := mg.game
	if g.pending == nil {
		return nil, fmt.Errorf("%w: no input request outstanding", inputs.ErrIllegalSelection)
	}
	if g.pending.ID != requestID {
		return nil, fmt.Errorf("%w: request %s is not outstanding", inputs.ErrIllegalSelection, requestID)
	}

	// The record must name the responder; applyResponse clears or replaces
	// the pending request, so capture the owner first.
	responderID := g.pendingPlayerID()
	if err := e.applyResponse(g, response); err != nil {
		return nil, err
	}
	mg.actions = append(mg.actions, ActionRecord{Kind: "input", PlayerID: responderID, Response: response})
	e.progress(g)
	e.notify("GAME_STATE_CHANGE", g.ID, "", nil)
	return e.outstandingView(g), nil
}

func (g *Game) pendingPlayerID() string {
	if g.pending == nil {
		return ""
	}
	return g.pending.PlayerID
}

// applyResponse commits a response against the outstanding tree. On success
// the pending slot holds the chained follow-up, or clears.
func (e *Engine) applyResponse(g *Game, response *inputs.Response) error {
	next, err := inputs.Resolve(g.pending, response)
	if err != nil {
		return err
	}
	g.pending = nil
	if next != nil {
		e.dispatch(g, next)
	}
	return nil
}

// dispatch collapses a request tree and installs it as the outstanding
// request with a fresh ID.
func (e *Engine) dispatch(g *Game, req *inputs.Request) {
	req = inputs.Collapse(req)
	if req == nil {
		return
	}
	req.AssignID()
	g.pending = req
	e.notify("INPUT_REQUEST", g.ID, req.PlayerID, map[string]any{"request_id": req.ID})
}

// progress advances the match as far as it can go without external input:
// drains the queue, then drives phase transitions until a request suspends
// the drain or the action phase waits on a player.
func (e *Engine) progress(g *Game) {
	for {
		if g.pending != nil || g.Phase.Locked() {
			return
		}
		if req := g.Deferred.Drain(); req != nil {
			e.dispatch(g, req)
			return
		}

		switch g.Phase.CurrentPhase() {
		case rules.PhaseResearch:
			if err := g.Phase.BeginActionPhase(); err != nil {
				e.logger.Error("phase transition failed", zap.String("game_id", g.ID), zap.Error(err))
				return
			}
			g.Log.Log("Generation ${0} action phase", logAmount(g.Phase.Generation()))
			e.notify("PHASE_CHANGE", g.ID, "", map[string]any{"phase": g.Phase.CurrentPhase().String()})

		case rules.PhaseAction:
			if !g.Phase.AllPassed() {
				return
			}
			e.runProduction(g)

		default:
			return
		}
	}
}

// runProduction applies every player's production in player order, then
// evaluates the global tracks and either ends the game or starts the next
// generation's research phase.
func (e *Engine) runProduction(g *Game) {
	if err := g.Phase.BeginProduction(); err != nil {
		e.logger.Error("phase transition failed", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	e.notify("PHASE_CHANGE", g.ID, "", map[string]any{"phase": g.Phase.CurrentPhase().String()})

	for _, id := range g.Phase.PlayerOrder() {
		p, ok := g.PlayerByID(id)
		if !ok {
			continue
		}
		p.Resources().ApplyProduction(p.TerraformRating())
		p.resetGenerationActions()
		g.Log.Log("${0} production applied", logPlayer(p))
	}

	if err := g.Phase.BeginEndOfGeneration(); err != nil {
		e.logger.Error("phase transition failed", zap.String("game_id", g.ID), zap.Error(err))
		return
	}

	if g.TracksComplete() {
		if err := g.Phase.EndGame(); err != nil {
			e.logger.Error("phase transition failed", zap.String("game_id", g.ID), zap.Error(err))
			return
		}
		g.Log.Log("The game has ended")
		for _, score := range g.FinalScores() {
			g.Log.Log("${0} scored ${1}", gamelog.Player(score.Name), logAmount(score.Total))
		}
		e.notify("GAME_END", g.ID, "", nil)
		return
	}

	if err := g.Phase.NextGeneration(); err != nil {
		e.logger.Error("phase transition failed", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	e.startResearch(g)
}

// outstandingView renders the outstanding request, nil when none.
func (e *Engine) outstandingView(g *Game) *inputs.View {
	if g.pending == nil {
		return nil
	}
	v := g.pending.View()
	return &v
}

// OutstandingRequest returns the current outstanding request view for a game.
func (e *Engine) OutstandingRequest(gameID string) (*inputs.View, error) {
	mg, err := e.managed(gameID)
	if err != nil {
		return nil, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()
	return e.outstandingView(mg.game), nil
}
