package netting

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"

	dbt "settlex/db/db"
	"settlex/money"
	"settlex/split"
)

func TestComputeNetPaymentsEmpty(t *testing.T) {
	if got := ComputeNetPayments(nil); len(got) != 0 {
		t.Fatalf("want no payments, got %v", got)
	}
	if got := ComputeNetPayments([]RawDebt{}); len(got) != 0 {
		t.Fatalf("want no payments, got %v", got)
	}
}

func TestComputeNetPaymentsMutualCancellation(t *testing.T) {
	payments := ComputeNetPayments([]RawDebt{
		{From: "A", To: "B", Amount: 100},
		{From: "B", To: "A", Amount: 40},
	})

	if len(payments) != 1 {
		t.Fatalf("want 1 payment, got %v", payments)
	}
	p := payments[0]
	if p.From != "A" || p.To != "B" || p.Amount != "60.0000000" {
		t.Fatalf("want A pays B 60.0000000, got %+v", p)
	}
}

func TestComputeNetPaymentsChainCollapse(t *testing.T) {
	payments := ComputeNetPayments([]RawDebt{
		{From: "A", To: "B", Amount: 100},
		{From: "B", To: "C", Amount: 100},
	})

	if len(payments) != 1 {
		t.Fatalf("want 1 payment, got %v", payments)
	}
	p := payments[0]
	if p.From != "A" || p.To != "C" || p.Amount != "100.0000000" {
		t.Fatalf("want A pays C 100.0000000, got %+v", p)
	}
}

func TestComputeNetPaymentsExactlyOffsetting(t *testing.T) {
	payments := ComputeNetPayments([]RawDebt{
		{From: "A", To: "B", Amount: 25},
		{From: "B", To: "A", Amount: 25},
	})
	if len(payments) != 0 {
		t.Fatalf("offsetting debts should produce no payments, got %v", payments)
	}
}

// applying the plan must zero every participant's net balance
func TestComputeNetPaymentsZeroSum(t *testing.T) {
	debts := []RawDebt{
		{From: "A", To: "B", Amount: 33.3333333},
		{From: "C", To: "B", Amount: 12.5},
		{From: "B", To: "D", Amount: 70.0000001},
		{From: "D", To: "A", Amount: 5},
		{From: "C", To: "D", Amount: 0.0000003},
	}

	balances := map[string]float64{}
	for _, d := range debts {
		balances[d.From] -= d.Amount
		balances[d.To] += d.Amount
	}
	for _, p := range ComputeNetPayments(debts) {
		amount, err := money.Parse(p.Amount)
		if err != nil {
			t.Fatalf("unparseable amount %q: %v", p.Amount, err)
		}
		balances[p.From] += amount
		balances[p.To] -= amount
	}
	for name, residual := range balances {
		if math.Abs(residual) > 1e-6 {
			t.Errorf("%s left with residual %g after settling", name, residual)
		}
	}
}

// netting an already-net plan must reproduce it
func TestComputeNetPaymentsIdempotent(t *testing.T) {
	first := ComputeNetPayments([]RawDebt{
		{From: "A", To: "B", Amount: 100},
		{From: "B", To: "C", Amount: 60},
		{From: "A", To: "C", Amount: 10},
	})

	var again []RawDebt
	for _, p := range first {
		amount, _ := money.Parse(p.Amount)
		again = append(again, RawDebt{From: p.From, To: p.To, Amount: amount})
	}
	second := ComputeNetPayments(again)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("netting is not idempotent:\nfirst  %v\nsecond %v", first, second)
	}
}

func TestComputeNetPaymentsDeterministic(t *testing.T) {
	debts := []RawDebt{
		{From: "A", To: "D", Amount: 10},
		{From: "B", To: "D", Amount: 10},
		{From: "C", To: "D", Amount: 10},
	}
	first := ComputeNetPayments(debts)
	for i := 0; i < 50; i++ {
		if got := ComputeNetPayments(debts); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differs: %v vs %v", i, first, got)
		}
	}
	// equal debtor balances break ties by name
	if first[0].From != "A" || first[1].From != "B" || first[2].From != "C" {
		t.Fatalf("tie-break by name violated: %v", first)
	}
}

func TestComputeNetPaymentsNegligibleDropped(t *testing.T) {
	payments := ComputeNetPayments([]RawDebt{
		{From: "A", To: "B", Amount: 1e-9},
	})
	if len(payments) != 0 {
		t.Fatalf("sub-epsilon debt should vanish, got %v", payments)
	}
}

func TestComputeNetPaymentsCarriesWallets(t *testing.T) {
	payments := ComputeNetPayments([]RawDebt{
		{From: "A", To: "B", Amount: 10, FromWallet: "GAAA", ToWallet: "GBBB"},
	})
	if len(payments) != 1 {
		t.Fatalf("want 1 payment, got %v", payments)
	}
	if payments[0].FromWallet != "GAAA" || payments[0].ToWallet != "GBBB" {
		t.Fatalf("wallets not carried: %+v", payments[0])
	}
}

func expenseWithShares(payer split.Member, shares ...split.Share) *dbt.Expense {
	e := &dbt.Expense{}
	e.ID = uuid.New()
	e.PayerID = payer.ID
	e.Members = []split.Member{payer}
	e.Shares = shares
	return e
}

func TestDeriveRawDebts(t *testing.T) {
	bob := split.Member{ID: uuid.New(), Name: "Bob", WalletAddress: "GBOB"}
	aliceID := uuid.New()

	expenses := []*dbt.Expense{
		expenseWithShares(bob,
			split.Share{MemberID: aliceID, Name: "Alice", WalletAddress: "GALICE", Amount: "30.0000000"},
			split.Share{MemberID: uuid.New(), Name: "Carol", Amount: "20.0000000", Paid: true},
			split.Share{MemberID: bob.ID, Name: "Bob", Amount: "10.0000000"},
		),
	}

	debts := DeriveRawDebts(expenses)
	if len(debts) != 1 {
		t.Fatalf("want 1 debt, got %v", debts)
	}
	d := debts[0]
	if d.From != "Alice" || d.To != "Bob" || d.Amount != 30 {
		t.Fatalf("unexpected debt %+v", d)
	}
	if d.FromWallet != "GALICE" || d.ToWallet != "GBOB" {
		t.Fatalf("wallets not carried %+v", d)
	}
}

func TestDeriveRawDebtsUnknownPayer(t *testing.T) {
	e := &dbt.Expense{}
	e.PayerID = uuid.New()
	e.Shares = []split.Share{{MemberID: uuid.New(), Name: "Alice", Amount: "10.0000000"}}

	if debts := DeriveRawDebts([]*dbt.Expense{e}); len(debts) != 0 {
		t.Fatalf("payer-less expense should derive no debts, got %v", debts)
	}
}

func TestSettlementPlan(t *testing.T) {
	bob := split.Member{ID: uuid.New(), Name: "Bob"}
	carol := split.Member{ID: uuid.New(), Name: "Carol"}

	expenses := []*dbt.Expense{
		expenseWithShares(bob, split.Share{MemberID: uuid.New(), Name: "Alice", Amount: "100.0000000"}),
		expenseWithShares(carol, split.Share{MemberID: bob.ID, Name: "Bob", Amount: "100.0000000"}),
	}

	plan := SettlementPlan(expenses)
	if len(plan) != 1 {
		t.Fatalf("want the chain collapsed to 1 payment, got %v", plan)
	}
	if plan[0].From != "Alice" || plan[0].To != "Carol" || plan[0].Amount != "100.0000000" {
		t.Fatalf("unexpected plan %+v", plan[0])
	}
}
