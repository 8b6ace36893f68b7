// Package netting collapses the pairwise debts accumulated across a trip's
// expenses into a short list of direct settling payments.
//
// The matcher is a greedy largest-pair heuristic: it repeatedly settles the
// biggest creditor against the biggest debtor, which clears whole balances
// per step and keeps the transaction count low for chains and stars. It is
// not a proven minimum for arbitrary debt graphs; what it does guarantee is
// that applying the emitted payments zeroes every person's net balance.
package netting

import (
	"math"
	"sort"

	"settlex/money"
)

// RawDebt is one unpaid share expressed as "From owes To amount". Wallet
// addresses ride along when known so the settlement view can offer a direct
// payment.
type RawDebt struct {
	From       string
	To         string
	Amount     float64
	FromWallet string
	ToWallet   string
}

// NetPayment is one settling payment in the computed plan. Amount is a
// canonical 7-decimal string.
type NetPayment struct {
	From       string
	To         string
	Amount     string
	FromWallet string
	ToWallet   string
}

// party is a person with a positive magnitude still to settle, creditor or
// debtor depending on which list it sits in.
type party struct {
	name    string
	balance float64
}

// ComputeNetPayments aggregates debts into per-person net balances and
// emits the greedy settlement plan. People are matched by display name;
// the last observed wallet address per name wins.
func ComputeNetPayments(debts []RawDebt) []NetPayment {
	balances := make(map[string]float64)
	wallets := make(map[string]string)
	order := make([]string, 0, len(debts)*2)

	note := func(name string) {
		if _, seen := balances[name]; !seen {
			order = append(order, name)
			balances[name] = 0
		}
	}

	for _, d := range debts {
		note(d.From)
		note(d.To)
		balances[d.From] -= d.Amount
		balances[d.To] += d.Amount
		if d.FromWallet != "" {
			wallets[d.From] = d.FromWallet
		}
		if d.ToWallet != "" {
			wallets[d.To] = d.ToWallet
		}
	}

	// Round before classifying so float noise cannot conjure tiny parties.
	var creditors, debtors []party
	for _, name := range order {
		rounded := roundToDecimals(balances[name])
		if rounded > money.Epsilon {
			creditors = append(creditors, party{name: name, balance: rounded})
		} else if rounded < -money.Epsilon {
			debtors = append(debtors, party{name: name, balance: -rounded})
		}
	}

	sortByBalanceDesc(creditors)
	sortByBalanceDesc(debtors)

	payments := []NetPayment{}
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		creditor := &creditors[ci]
		debtor := &debtors[di]

		settle := math.Min(creditor.balance, debtor.balance)
		rounded := roundToDecimals(settle)

		if rounded > money.Epsilon {
			payments = append(payments, NetPayment{
				From:       debtor.name,
				To:         creditor.name,
				Amount:     money.Format(rounded),
				FromWallet: wallets[debtor.name],
				ToWallet:   wallets[creditor.name],
			})
		}

		creditor.balance -= settle
		debtor.balance -= settle

		if creditor.balance < money.Epsilon {
			ci++
		}
		if debtor.balance < money.Epsilon {
			di++
		}
	}

	return payments
}

func roundToDecimals(n float64) float64 {
	return math.Round(n*1e7) / 1e7
}

// sortByBalanceDesc orders parties by balance, largest first, breaking ties
// by name so the plan is deterministic regardless of map iteration.
func sortByBalanceDesc(parties []party) {
	sort.SliceStable(parties, func(i, j int) bool {
		if parties[i].balance == parties[j].balance {
			return parties[i].name < parties[j].name
		}
		return parties[i].balance > parties[j].balance
	})
}
