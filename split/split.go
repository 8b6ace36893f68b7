// Package split computes per-member obligations for a single expense.
// All emitted amounts are canonical 7-decimal strings; the functions here
// are pure and hold no state.
package split

import (
	"math"

	"github.com/google/uuid"

	"settlex/money"
)

// EqualSplit divides total equally among all members, payer included.
// Only non-payers receive a Share, each owing total/len(members).
//
// The last non-payer absorbs any floating-point dust: its share is
// perHead*nonPayerCount minus the sum already assigned, so the emitted
// shares always add up to exactly what the non-payers owe. With a single
// non-payer this yields perHead, not the full total.
func EqualSplit(total float64, members []Member, payerID uuid.UUID) []Share {
	if len(members) == 0 {
		return []Share{}
	}

	nonPayers := make([]Member, 0, len(members))
	for _, m := range members {
		if m.ID != payerID {
			nonPayers = append(nonPayers, m)
		}
	}
	if len(nonPayers) == 0 {
		return []Share{}
	}

	perHead := total / float64(len(members))
	shares := make([]Share, 0, len(nonPayers))
	accumulated := 0.0

	for i, m := range nonPayers {
		amount := perHead
		if i == len(nonPayers)-1 {
			amount = perHead*float64(len(nonPayers)) - accumulated
		}
		amount = math.Max(0, amount)
		formatted := money.Format(amount)
		// Accumulate what was actually assigned, not the raw float, so the
		// last share absorbs the dust the earlier roundings produced.
		assigned, _ := money.Parse(formatted)
		accumulated += assigned

		shares = append(shares, Share{
			MemberID:      m.ID,
			Name:          m.Name,
			WalletAddress: m.WalletAddress,
			Amount:        formatted,
		})
	}

	return shares
}

// WeightedSplit divides total proportionally to each member's weight
// (default 1 when unset). The payer's proportional entitlement is withheld,
// not emitted. There is no dust absorption here: the emitted shares can
// miss total by a few units in the last decimal place.
func WeightedSplit(total float64, members []Member, payerID uuid.UUID) []Share {
	if len(members) == 0 {
		return []Share{}
	}

	totalWeight := 0
	for _, m := range members {
		totalWeight += effectiveWeight(m)
	}

	shares := make([]Share, 0, len(members))
	for _, m := range members {
		if m.ID == payerID {
			continue
		}
		proportion := 0.0
		if totalWeight > 0 {
			// All-zero weights would divide by zero; everyone owes nothing.
			proportion = float64(effectiveWeight(m)) / float64(totalWeight)
		}
		shares = append(shares, Share{
			MemberID:      m.ID,
			Name:          m.Name,
			WalletAddress: m.WalletAddress,
			Amount:        money.Format(total * proportion),
		})
	}

	return shares
}

func effectiveWeight(m Member) int {
	if m.Weight == nil {
		return 1
	}
	return *m.Weight
}

// ComputeSplit routes to the strategy for mode. Unknown modes fall back to
// the equal strategy.
func ComputeSplit(total float64, members []Member, payerID uuid.UUID, mode Mode) []Share {
	return StrategyFor(mode)(total, members, payerID)
}

// StrategyFor returns the Strategy registered for mode.
func StrategyFor(mode Mode) Strategy {
	if mode == ModeCustom {
		return WeightedSplit
	}
	return EqualSplit
}
