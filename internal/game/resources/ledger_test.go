package resources

import (
	"errors"
	"testing"
)

func TestLedgerAddAmount(t *testing.T) {
	l := NewLedger()

	if err := l.AddAmount(MegaCredits, 10); err != nil {
		t.Fatalf("unexpected error adding megacredits: %v", err)
	}
	if l.Amount(MegaCredits) != 10 {
		t.Fatalf("expected 10 megacredits, got %d", l.Amount(MegaCredits))
	}

	if err := l.AddAmount(MegaCredits, -4); err != nil {
		t.Fatalf("unexpected error spending megacredits: %v", err)
	}
	if l.Amount(MegaCredits) != 6 {
		t.Fatalf("expected 6 megacredits, got %d", l.Amount(MegaCredits))
	}
}

func TestLedgerAmountFloor(t *testing.T) {
	l := NewLedger()
	l.SetAmount(Plants, 2)

	err := l.AddAmount(Plants, -3)
	if !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("expected ErrInsufficientResources, got %v", err)
	}
	// Rejected mutation must not partially apply.
	if l.Amount(Plants) != 2 {
		t.Fatalf("expected plants unchanged at 2, got %d", l.Amount(Plants))
	}
}

func TestLedgerProductionFloors(t *testing.T) {
	l := NewLedger()

	// Megacredit production may drop to -5 but no further.
	if err := l.AddProduction(MegaCredits, -5); err != nil {
		t.Fatalf("unexpected error lowering megacredit production: %v", err)
	}
	if err := l.AddProduction(MegaCredits, -1); !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("expected ErrInsufficientResources below -5, got %v", err)
	}
	if l.Production(MegaCredits) != -5 {
		t.Fatalf("expected megacredit production -5, got %d", l.Production(MegaCredits))
	}

	// Other productions bottom out at zero.
	if err := l.AddProduction(Energy, -1); !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("expected ErrInsufficientResources for energy production below zero, got %v", err)
	}
}

func TestLedgerCanAfford(t *testing.T) {
	l := NewLedger()
	l.SetAmount(MegaCredits, 3)
	l.SetAmount(Steel, 2)
	l.SetAmount(Titanium, 1)

	if !l.CanAfford(3, SpendOptions{}) {
		t.Fatalf("expected to afford 3 with 3 megacredits")
	}
	if l.CanAfford(4, SpendOptions{}) {
		t.Fatalf("expected not to afford 4 with 3 megacredits")
	}
	if !l.CanAfford(7, SpendOptions{UseSteel: true, SteelValue: 2}) {
		t.Fatalf("expected steel at value 2 to cover cost 7")
	}
	if !l.CanAfford(10, SpendOptions{UseSteel: true, SteelValue: 2, UseTitanium: true, TitaniumValue: 3}) {
		t.Fatalf("expected steel and titanium together to cover cost 10")
	}
	if l.CanAfford(11, SpendOptions{UseSteel: true, SteelValue: 2, UseTitanium: true, TitaniumValue: 3}) {
		t.Fatalf("expected cost 11 to be unaffordable")
	}

	// CanAfford must not mutate.
	if l.Amount(MegaCredits) != 3 || l.Amount(Steel) != 2 || l.Amount(Titanium) != 1 {
		t.Fatalf("CanAfford mutated the ledger")
	}
}

func TestLedgerApplyProduction(t *testing.T) {
	l := NewLedger()
	l.SetAmount(Energy, 3)
	l.SetAmount(Heat, 1)
	if err := l.AddProduction(Energy, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.AddProduction(Plants, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.ApplyProduction(20)

	// Leftover energy converts to heat before income.
	if l.Amount(Heat) != 4 {
		t.Fatalf("expected 4 heat (1 + 3 converted), got %d", l.Amount(Heat))
	}
	if l.Amount(Energy) != 2 {
		t.Fatalf("expected 2 energy after conversion and income, got %d", l.Amount(Energy))
	}
	if l.Amount(Plants) != 1 {
		t.Fatalf("expected 1 plant, got %d", l.Amount(Plants))
	}
	if l.Amount(MegaCredits) != 20 {
		t.Fatalf("expected 20 megacredits from terraform rating bonus, got %d", l.Amount(MegaCredits))
	}
}

func TestLedgerSnapshotRestore(t *testing.T) {
	l := NewLedger()
	l.SetAmount(MegaCredits, 42)
	if err := l.AddProduction(Titanium, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	amounts, production := l.Snapshot()

	other := NewLedger()
	other.Restore(amounts, production)
	if other.Amount(MegaCredits) != 42 {
		t.Fatalf("expected restored megacredits 42, got %d", other.Amount(MegaCredits))
	}
	if other.Production(Titanium) != 2 {
		t.Fatalf("expected restored titanium production 2, got %d", other.Production(Titanium))
	}

	// Snapshot must be a copy, not a view.
	amounts[MegaCredits] = 0
	if l.Amount(MegaCredits) != 42 {
		t.Fatalf("snapshot aliases the live ledger")
	}
}
