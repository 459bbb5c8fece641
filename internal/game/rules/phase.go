package rules

import (
	"fmt"
	"strings"
)

// Phase represents the phases of a generation.
type Phase int

const (
	PhaseResearch Phase = iota
	PhaseAction
	PhaseProduction
	PhaseEndOfGeneration
	PhaseGameEnd
)

var phaseNames = map[Phase]string{
	PhaseResearch:        "RESEARCH",
	PhaseAction:          "ACTION",
	PhaseProduction:      "PRODUCTION",
	PhaseEndOfGeneration: "END_OF_GENERATION",
	PhaseGameEnd:         "GAME_END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// PhaseMachine drives the generation lifecycle
// RESEARCH -> ACTION -> PRODUCTION -> END_OF_GENERATION -> RESEARCH(next gen)
// and tracks the rotating active player and per-generation pass flags.
// The engine owns when transitions fire; the machine enforces their order.
type PhaseMachine struct {
	phase       Phase
	generation  int
	playerOrder []string
	firstIndex  int
	activeIndex int
	passed      map[string]bool
}

// NewPhaseMachine creates a machine at generation 1, research phase, with the
// first listed player going first.
func NewPhaseMachine(playerOrder []string) *PhaseMachine {
	order := make([]string, 0, len(playerOrder))
	for _, id := range playerOrder {
		order = append(order, strings.TrimSpace(id))
	}
	return &PhaseMachine{
		phase:       PhaseResearch,
		generation:  1,
		playerOrder: order,
		passed:      make(map[string]bool, len(order)),
	}
}

// CurrentPhase returns the phase currently in progress.
func (m *PhaseMachine) CurrentPhase() Phase {
	return m.phase
}

// Generation returns the current generation number (1-based).
func (m *PhaseMachine) Generation() int {
	return m.generation
}

// PlayerOrder returns the fixed seating order.
func (m *PhaseMachine) PlayerOrder() []string {
	return m.playerOrder
}

// ActivePlayer returns the player whose turn it is to act.
func (m *PhaseMachine) ActivePlayer() string {
	if len(m.playerOrder) == 0 {
		return ""
	}
	return m.playerOrder[m.activeIndex]
}

// HasPassed reports whether the player passed this generation.
func (m *PhaseMachine) HasPassed(playerID string) bool {
	return m.passed[playerID]
}

// Pass marks the player as passed for the rest of the action phase and
// advances the active pointer past them.
func (m *PhaseMachine) Pass(playerID string) error {
	if m.phase != PhaseAction {
		return fmt.Errorf("cannot pass during %s", m.phase)
	}
	if m.passed[playerID] {
		return fmt.Errorf("player %s already passed", playerID)
	}
	m.passed[playerID] = true
	m.AdvancePlayer()
	return nil
}

// AllPassed reports whether every player has passed this generation.
func (m *PhaseMachine) AllPassed() bool {
	for _, id := range m.playerOrder {
		if !m.passed[id] {
			return false
		}
	}
	return len(m.playerOrder) > 0
}

// AdvancePlayer rotates the active pointer to the next player who has not
// passed. With everyone passed the pointer stays put; the engine transitions
// out of the action phase instead.
func (m *PhaseMachine) AdvancePlayer() {
	if len(m.playerOrder) == 0 || m.AllPassed() {
		return
	}
	for {
		m.activeIndex = (m.activeIndex + 1) % len(m.playerOrder)
		if !m.passed[m.playerOrder[m.activeIndex]] {
			return
		}
	}
}

// BeginActionPhase transitions RESEARCH -> ACTION.
func (m *PhaseMachine) BeginActionPhase() error {
	if m.phase != PhaseResearch {
		return fmt.Errorf("cannot begin action phase from %s", m.phase)
	}
	m.phase = PhaseAction
	return nil
}

// BeginProduction transitions ACTION -> PRODUCTION. Legal only once every
// player has passed; the engine additionally requires an empty deferred queue.
func (m *PhaseMachine) BeginProduction() error {
	if m.phase != PhaseAction {
		return fmt.Errorf("cannot begin production from %s", m.phase)
	}
	if !m.AllPassed() {
		return fmt.Errorf("cannot begin production while players can still act")
	}
	m.phase = PhaseProduction
	return nil
}

// BeginEndOfGeneration transitions PRODUCTION -> END_OF_GENERATION.
func (m *PhaseMachine) BeginEndOfGeneration() error {
	if m.phase != PhaseProduction {
		return fmt.Errorf("cannot end generation from %s", m.phase)
	}
	m.phase = PhaseEndOfGeneration
	return nil
}

// NextGeneration transitions END_OF_GENERATION -> RESEARCH of the next
// generation: the first-player marker rotates, pass flags clear, and the
// generation counter increments.
func (m *PhaseMachine) NextGeneration() error {
	if m.phase != PhaseEndOfGeneration {
		return fmt.Errorf("cannot start a generation from %s", m.phase)
	}
	m.generation++
	if len(m.playerOrder) > 0 {
		m.firstIndex = (m.firstIndex + 1) % len(m.playerOrder)
	}
	m.activeIndex = m.firstIndex
	m.passed = make(map[string]bool, len(m.playerOrder))
	m.phase = PhaseResearch
	return nil
}

// EndGame transitions END_OF_GENERATION -> GAME_END. Terminal: no further
// transitions are legal and all mutation is locked by the engine.
func (m *PhaseMachine) EndGame() error {
	if m.phase != PhaseEndOfGeneration {
		return fmt.Errorf("cannot end game from %s", m.phase)
	}
	m.phase = PhaseGameEnd
	return nil
}

// Locked reports whether the machine reached its terminal state.
func (m *PhaseMachine) Locked() bool {
	return m.phase == PhaseGameEnd
}

// PhaseSnapshot carries the machine's restorable state.
type PhaseSnapshot struct {
	Phase       Phase           `json:"phase"`
	Generation  int             `json:"generation"`
	PlayerOrder []string        `json:"player_order"`
	FirstIndex  int             `json:"first_index"`
	ActiveIndex int             `json:"active_index"`
	Passed      map[string]bool `json:"passed"`
}

// Snapshot returns the machine's restorable state.
func (m *PhaseMachine) Snapshot() PhaseSnapshot {
	passed := make(map[string]bool, len(m.passed))
	for id, v := range m.passed {
		passed[id] = v
	}
	order := make([]string, len(m.playerOrder))
	copy(order, m.playerOrder)
	return PhaseSnapshot{
		Phase:       m.phase,
		Generation:  m.generation,
		PlayerOrder: order,
		FirstIndex:  m.firstIndex,
		ActiveIndex: m.activeIndex,
		Passed:      passed,
	}
}

// RestorePhaseMachine rebuilds a machine from a snapshot.
func RestorePhaseMachine(s PhaseSnapshot) *PhaseMachine {
	m := NewPhaseMachine(s.PlayerOrder)
	m.phase = s.Phase
	m.generation = s.Generation
	m.firstIndex = s.FirstIndex
	m.activeIndex = s.ActiveIndex
	for id, v := range s.Passed {
		m.passed[id] = v
	}
	return m
}
