package netting

import (
	dbt "settlex/db/db"
	"settlex/money"
)

// DeriveRawDebts walks a trip's expenses and produces one RawDebt per
// unpaid share owed to the expense payer. Skipped entirely: expenses whose
// payer is unknown, shares already paid, and the payer's own share of their
// expense.
func DeriveRawDebts(expenses []*dbt.Expense) []RawDebt {
	var debts []RawDebt
	for _, expense := range expenses {
		payer := expense.Payer()
		if payer == nil {
			continue
		}
		for _, share := range expense.Shares {
			if share.Paid || share.MemberID == payer.ID {
				continue
			}
			amount, err := money.Parse(share.Amount)
			if err != nil || money.IsNegligible(amount) {
				continue
			}
			debts = append(debts, RawDebt{
				From:       share.Name,
				To:         payer.Name,
				Amount:     amount,
				FromWallet: share.WalletAddress,
				ToWallet:   payer.WalletAddress,
			})
		}
	}
	return debts
}

// SettlementPlan derives and nets a trip's outstanding debts in one call.
func SettlementPlan(expenses []*dbt.Expense) []NetPayment {
	return ComputeNetPayments(DeriveRawDebts(expenses))
}
