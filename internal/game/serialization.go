package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// MatchSnapshot is the serializable form of a match: the setup that created
// it plus every committed external stimulus in order. Because the engine is
// deterministic for a given setup (the dealer is seeded), replaying the
// records against a fresh game reproduces the suspended state exactly,
// including any outstanding input request.
type MatchSnapshot struct {
	Version   int            `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Setup     GameSetup      `json:"setup"`
	Actions   []ActionRecord `json:"actions"`
	Checksum  string         `json:"checksum"`
}

const snapshotVersion = 1

// Snapshot captures the match for the persistence collaborator. Safe to call
// whenever no submit is in flight; the per-match mutex guarantees the state
// is a consistent checkpoint.
func (e *Engine) Snapshot(gameID string) (*MatchSnapshot, error) {
	mg, err := e.managed(gameID)
	if err != nil {
		return nil, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()

	actions := make([]ActionRecord, len(mg.actions))
	copy(actions, mg.actions)

	return &MatchSnapshot{
		Version:   snapshotVersion,
		Timestamp: time.Now(),
		Setup:     mg.setup,
		Actions:   actions,
		Checksum:  stateChecksum(mg.game),
	}, nil
}

// RestoreGame rebuilds a match from a snapshot by replaying its action
// records, then verifies the resulting state against the stored checksum.
func (e *Engine) RestoreGame(snapshot *MatchSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: nil snapshot", ErrIllegalAction)
	}
	if err := e.CreateGame(snapshot.Setup); err != nil {
		return err
	}
	mg, err := e.managed(snapshot.Setup.GameID)
	if err != nil {
		return err
	}

	for i, rec := range snapshot.Actions {
		switch rec.Kind {
		case "action":
			if rec.Action == nil {
				return fmt.Errorf("%w: record %d has no action", ErrInvariantViolation, i)
			}
			if _, err := e.SubmitAction(snapshot.Setup.GameID, rec.PlayerID, *rec.Action); err != nil {
				return fmt.Errorf("replay of record %d failed: %w", i, err)
			}
		case "input":
			if err := e.replayResponse(mg, rec); err != nil {
				return fmt.Errorf("replay of record %d failed: %w", i, err)
			}
		default:
			return fmt.Errorf("%w: record %d has unknown kind %q", ErrInvariantViolation, i, rec.Kind)
		}
	}

	mg.mu.Lock()
	got := stateChecksum(mg.game)
	mg.mu.Unlock()
	if snapshot.Checksum != "" && got != snapshot.Checksum {
		return fmt.Errorf("%w: replayed state checksum %s does not match snapshot %s",
			ErrInvariantViolation, got, snapshot.Checksum)
	}
	return nil
}

// replayResponse applies a recorded input response to the current outstanding
// request. Request IDs are transport-level guards and differ across replays,
// so replay matches responses to requests by order instead.
func (e *Engine) replayResponse(mg *managedGame, rec ActionRecord) error {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	g := mg.game
	if g.pending == nil {
		return fmt.Errorf("%w: no request outstanding for recorded response", ErrInvariantViolation)
	}
	if err := e.applyResponse(g, rec.Response); err != nil {
		return err
	}
	mg.actions = append(mg.actions, rec)
	e.progress(g)
	return nil
}

// SerializeToBytes encodes a snapshot as JSON, the format stored by the
// snapshot repository.
func (s *MatchSnapshot) SerializeToBytes() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DeserializeSnapshot decodes a snapshot from its JSON form.
func DeserializeSnapshot(data []byte) (*MatchSnapshot, error) {
	var s MatchSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// stateChecksum computes a deterministic digest of the live match state. It
// guards against divergent states across replays; non-deterministic fields
// (timestamps, dispatched request IDs) are excluded.
func stateChecksum(g *Game) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%d|%s|%d|%d|%d\n",
		g.ID,
		g.Phase.CurrentPhase(),
		g.Phase.Generation(),
		g.Phase.ActivePlayer(),
		g.Temperature(),
		g.OxygenLevel(),
		g.Oceans(),
	)

	for _, p := range g.Players {
		amounts, production := p.Resources().Snapshot()
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%t\n", p.ID, p.TerraformRating(), g.Phase.HasPassed(p.ID))
		writeCurrencyTable(&buf, "AMOUNT", amounts)
		writeCurrencyTable(&buf, "PRODUCTION", production)
		fmt.Fprintf(&buf, "  HAND:%v\n", p.HandNames())
		fmt.Fprintf(&buf, "  PLAYED:%v\n", p.PlayedNames())
	}

	deck, discard := g.Dealer.Contents()
	buf.WriteString("DECK:")
	for _, c := range deck {
		buf.WriteString(c.Name())
		buf.WriteString(",")
	}
	buf.WriteString("\nDISCARD:")
	for _, c := range discard {
		buf.WriteString(c.Name())
		buf.WriteString(",")
	}
	buf.WriteString("\n")

	// Queue order matters; pending request identity is structural only.
	fmt.Fprintf(&buf, "QUEUE:%v\n", g.Deferred.Descriptions())
	if g.pending != nil {
		fmt.Fprintf(&buf, "PENDING:%s|%s|%s\n", g.pending.Type, g.pending.PlayerID, g.pending.Title)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func writeCurrencyTable[K ~string](buf *bytes.Buffer, label string, table map[K]int) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "  %s:%s=%d\n", label, k, table[K(k)])
	}
}
