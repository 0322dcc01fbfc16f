package parser

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Diagnostic describes a hand whose collections do not add up to what was
// put into the pot.
type Diagnostic struct {
	Hand        string
	Contributed decimal.Decimal
	Collected   decimal.Decimal
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("hand %s: contributed %s but collected %s (difference %s)",
		d.Hand, d.Contributed.StringFixed(2), d.Collected.StringFixed(2),
		d.Contributed.Sub(d.Collected).StringFixed(2))
}

// Reconcile compares the running contribution total against the sum of the
// hand's pots at two-decimal precision. It returns nil when they agree.
func Reconcile(h *Hand, totalContributed decimal.Decimal) *Diagnostic {
	if h == nil {
		return nil
	}
	contributed := totalContributed.Round(2)
	collected := h.TotalPot().Round(2)
	if contributed.Equal(collected) {
		return nil
	}
	return &Diagnostic{Hand: h.Key(), Contributed: contributed, Collected: collected}
}

// Contributions recomputes the contributed total from the recorded actions.
// Uncalled bets never become actions, so they are passed in separately.
func Contributions(h *Hand, uncalled decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	if h == nil {
		return total
	}
	for _, r := range h.Rounds {
		for _, a := range r.Actions {
			if a.Kind.IsWager() || (a.Kind.IsPost() && a.Kind != ActionPostDead) {
				total = total.Add(a.Amount)
			}
		}
	}
	return total.Sub(uncalled)
}
