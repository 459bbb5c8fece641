package resources

import (
	"errors"
	"fmt"
	"sync"
)

// Currency represents one of the tracked resource kinds.
type Currency string

const (
	MegaCredits Currency = "MEGACREDITS"
	Steel       Currency = "STEEL"
	Titanium    Currency = "TITANIUM"
	Plants      Currency = "PLANTS"
	Energy      Currency = "ENERGY"
	Heat        Currency = "HEAT"
)

// All lists every currency in canonical order. Production and income are
// applied in this order.
var All = []Currency{MegaCredits, Steel, Titanium, Plants, Energy, Heat}

// ErrInsufficientResources is returned when a committed delta would drive an
// amount (or a floored production rate) below its floor. Callers are expected
// to run CanAfford first; the ledger never partially applies.
var ErrInsufficientResources = errors.New("insufficient resources")

// amountFloors gives the lowest legal instantaneous amount per currency.
var amountFloors = map[Currency]int{
	MegaCredits: 0,
	Steel:       0,
	Titanium:    0,
	Plants:      0,
	Energy:      0,
	Heat:        0,
}

// productionFloors gives the lowest legal production rate per currency.
// Megacredit production may run negative down to -5; every other rate
// bottoms out at zero.
var productionFloors = map[Currency]int{
	MegaCredits: -5,
	Steel:       0,
	Titanium:    0,
	Plants:      0,
	Energy:      0,
	Heat:        0,
}

// Ledger is a player's store of resource amounts and production rates.
type Ledger struct {
	mu         sync.RWMutex
	amounts    map[Currency]int
	production map[Currency]int
}

// ProductionFloor returns the lowest legal production rate for a currency.
// Card requirement checks use it to test a decrease before committing it.
func ProductionFloor(c Currency) int {
	return productionFloors[c]
}

// NewLedger creates an empty ledger with all amounts and productions at zero.
func NewLedger() *Ledger {
	l := &Ledger{
		amounts:    make(map[Currency]int, len(All)),
		production: make(map[Currency]int, len(All)),
	}
	for _, c := range All {
		l.amounts[c] = 0
		l.production[c] = 0
	}
	return l
}

// Amount returns the current amount of a currency.
func (l *Ledger) Amount(c Currency) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.amounts[c]
}

// Production returns the current production rate of a currency.
func (l *Ledger) Production(c Currency) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.production[c]
}

// AddAmount adjusts the amount of a currency by delta. The mutation is
// rejected whole if the result would fall below the currency's floor.
func (l *Ledger) AddAmount(c Currency, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.amounts[c] + delta
	if next < amountFloors[c] {
		return fmt.Errorf("%w: %s %d%+d", ErrInsufficientResources, c, l.amounts[c], delta)
	}
	l.amounts[c] = next
	return nil
}

// AddProduction adjusts the production rate of a currency by delta. The
// mutation is rejected whole if the result would fall below the currency's
// production floor.
func (l *Ledger) AddProduction(c Currency, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.production[c] + delta
	if next < productionFloors[c] {
		return fmt.Errorf("%w: %s production %d%+d", ErrInsufficientResources, c, l.production[c], delta)
	}
	l.production[c] = next
	return nil
}

// SetAmount overwrites the amount of a currency, clamping at the floor.
// Used for corporation starting resources.
func (l *Ledger) SetAmount(c Currency, amount int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount < amountFloors[c] {
		amount = amountFloors[c]
	}
	l.amounts[c] = amount
}

// SpendOptions controls which convertible resources CanAfford may count
// toward a megacredit cost, and at what exchange rate.
type SpendOptions struct {
	UseSteel      bool
	UseTitanium   bool
	SteelValue    int
	TitaniumValue int
}

// CanAfford reports whether the ledger can cover a megacredit cost, counting
// steel and titanium at their exchange rates when permitted. It never mutates;
// legality checks use it (with any policy surcharge already folded into cost)
// before attempting payment.
func (l *Ledger) CanAfford(cost int, opt SpendOptions) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	available := l.amounts[MegaCredits]
	if opt.UseSteel {
		available += l.amounts[Steel] * opt.SteelValue
	}
	if opt.UseTitanium {
		available += l.amounts[Titanium] * opt.TitaniumValue
	}
	return available >= cost
}

// ApplyProduction performs the production step for this ledger: leftover
// energy converts to heat, every amount grows by its production rate, and
// megacredits additionally grow by megaCreditBonus (the player's terraform
// rating). Income never drives an amount below its floor.
func (l *Ledger) ApplyProduction(megaCreditBonus int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.amounts[Heat] += l.amounts[Energy]
	l.amounts[Energy] = 0

	for _, c := range All {
		income := l.production[c]
		if c == MegaCredits {
			income += megaCreditBonus
		}
		next := l.amounts[c] + income
		if next < amountFloors[c] {
			next = amountFloors[c]
		}
		l.amounts[c] = next
	}
}

// Snapshot returns copies of the amount and production tables.
func (l *Ledger) Snapshot() (amounts, production map[Currency]int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	amounts = make(map[Currency]int, len(l.amounts))
	production = make(map[Currency]int, len(l.production))
	for c, v := range l.amounts {
		amounts[c] = v
	}
	for c, v := range l.production {
		production[c] = v
	}
	return amounts, production
}

// Restore overwrites the ledger from snapshot tables.
func (l *Ledger) Restore(amounts, production map[Currency]int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range All {
		l.amounts[c] = amounts[c]
		l.production[c] = production[c]
	}
}
