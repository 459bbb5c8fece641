// Package gamelog records the player-visible match log. Entries keep their
// template and typed parts so a rendering layer can style actors, cards and
// amounts; formatted text is mirrored to the server log.
package gamelog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PartKind tags what a template part refers to.
type PartKind string

const (
	PartPlayer PartKind = "PLAYER"
	PartCard   PartKind = "CARD"
	PartAmount PartKind = "AMOUNT"
	PartText   PartKind = "TEXT"
)

// Part is one substitutable element of a log template.
type Part struct {
	Kind  PartKind `json:"kind"`
	Value string   `json:"value"`
}

// Player tags a part as a player name.
func Player(name string) Part { return Part{Kind: PartPlayer, Value: name} }

// Card tags a part as a card name.
func Card(name string) Part { return Part{Kind: PartCard, Value: name} }

// Amount tags a part as a numeric amount.
func Amount(n int) Part { return Part{Kind: PartAmount, Value: fmt.Sprintf("%d", n)} }

// Text tags a part as plain text.
func Text(s string) Part { return Part{Kind: PartText, Value: s} }

// Entry is one committed log line.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Template  string    `json:"template"`
	Parts     []Part    `json:"parts"`
	Message   string    `json:"message"`
}

// Logger accumulates match log entries. Delivery to the server log is
// fire-and-forget; the entry list is the source of truth for clients.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
	zl      *zap.Logger
}

// New creates a match logger mirroring to zl.
func New(zl *zap.Logger) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Logger{zl: zl}
}

// Log records a templated entry. Placeholders are ${0}, ${1}, ... matching
// the given parts, e.g. Log("${0} played ${1}", Player(name), Card(card)).
func (l *Logger) Log(template string, parts ...Part) {
	message := template
	for i, part := range parts {
		message = strings.ReplaceAll(message, fmt.Sprintf("${%d}", i), part.Value)
	}

	l.mu.Lock()
	l.entries = append(l.entries, Entry{
		Timestamp: time.Now(),
		Template:  template,
		Parts:     parts,
		Message:   message,
	})
	l.mu.Unlock()

	l.zl.Info(message, zap.String("template", template))
}

// Entries returns a copy of the recorded entries in order.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries.
func (l *Logger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
