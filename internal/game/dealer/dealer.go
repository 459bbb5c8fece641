// Package dealer manages the shared project-card draw and discard piles.
package dealer

import (
	"errors"
	"math/rand"
	"sync"
)

// ErrDeckExhausted is returned when a draw is attempted with both the deck
// and the discard pile empty. It is fatal to the draw, not to the match.
var ErrDeckExhausted = errors.New("deck exhausted")

// Dealer deals and reclaims cards without duplication. The deck is consumed
// from the end; when it empties, the discard pile is reshuffled into a new
// deck using the seeded source, keeping games reproducible.
type Dealer[C any] struct {
	mu      sync.Mutex
	deck    []C
	discard []C
	rng     *rand.Rand
}

// New creates a dealer over the given cards, shuffled with the seed.
func New[C any](cards []C, seed int64) *Dealer[C] {
	d := &Dealer[C]{
		deck: make([]C, len(cards)),
		rng:  rand.New(rand.NewSource(seed)),
	}
	copy(d.deck, cards)
	d.shuffleLocked()
	return d
}

// shuffleLocked shuffles the deck in place. Caller holds the lock (or has
// exclusive access during construction).
func (d *Dealer[C]) shuffleLocked() {
	d.rng.Shuffle(len(d.deck), func(i, j int) {
		d.deck[i], d.deck[j] = d.deck[j], d.deck[i]
	})
}

// DealCard removes and returns the top card of the deck, reshuffling the
// discard pile into a fresh deck first if the deck is empty.
func (d *Dealer[C]) DealCard() (C, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dealLocked()
}

func (d *Dealer[C]) dealLocked() (C, error) {
	var zero C
	if len(d.deck) == 0 {
		if len(d.discard) == 0 {
			return zero, ErrDeckExhausted
		}
		d.deck = d.discard
		d.discard = nil
		d.shuffleLocked()
	}

	idx := len(d.deck) - 1
	card := d.deck[idx]
	d.deck = d.deck[:idx]
	return card, nil
}

// DealCards deals up to n cards, stopping early only when both piles run out.
func (d *Dealer[C]) DealCards(n int) ([]C, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	dealt := make([]C, 0, n)
	for i := 0; i < n; i++ {
		card, err := d.dealLocked()
		if err != nil {
			return dealt, err
		}
		dealt = append(dealt, card)
	}
	return dealt, nil
}

// Discard reclaims a card onto the discard pile.
func (d *Dealer[C]) Discard(card C) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.discard = append(d.discard, card)
}

// DeckSize returns the number of cards left in the deck.
func (d *Dealer[C]) DeckSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.deck)
}

// DiscardSize returns the number of cards in the discard pile.
func (d *Dealer[C]) DiscardSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.discard)
}

// Contents returns copies of the deck and discard piles, top of deck last.
// Used for snapshots and zone audits.
func (d *Dealer[C]) Contents() (deck, discard []C) {
	d.mu.Lock()
	defer d.mu.Unlock()

	deck = make([]C, len(d.deck))
	copy(deck, d.deck)
	discard = make([]C, len(d.discard))
	copy(discard, d.discard)
	return deck, discard
}
