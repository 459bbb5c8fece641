// Package policy defines the external policy-hook interface consulted during
// legality checks and cost computation. The hook belongs to an external
// faction/policy subsystem; the core queries it and never mutates it.
package policy

// Well-known policy IDs consulted by card legality checks.
const (
	// RedsRulingTax applies when the Reds hold the ruling party: any action
	// that raises terraform rating costs extra megacredits.
	RedsRulingTax = "REDS_RULING_TAX"
)

// RedsRulingTaxCost is the surcharge per terraform-rating step under the
// Reds ruling policy.
const RedsRulingTaxCost = 3

// Hook is the oracle the core queries for policy effects on affordability.
type Hook interface {
	// ShouldApply reports whether the named policy is currently in force.
	ShouldApply(policyID string) bool
	// Surcharge returns the extra megacredit cost the named policy adds,
	// zero when the policy is unknown or not in force.
	Surcharge(policyID string) int
}

// NoPolicy is the null hook used when the faction subsystem is absent.
type NoPolicy struct{}

// ShouldApply always reports false.
func (NoPolicy) ShouldApply(string) bool { return false }

// Surcharge always returns zero.
func (NoPolicy) Surcharge(string) int { return 0 }

// RulingParty is a minimal stand-in for the external faction subsystem,
// exposing a single ruling party name.
type RulingParty struct {
	Party string
}

// ShouldApply reports true for the Reds tax while the Reds rule.
func (h RulingParty) ShouldApply(policyID string) bool {
	return policyID == RedsRulingTax && h.Party == "REDS"
}

// Surcharge returns the Reds tax while it applies.
func (h RulingParty) Surcharge(policyID string) int {
	if h.ShouldApply(policyID) {
		return RedsRulingTaxCost
	}
	return 0
}
