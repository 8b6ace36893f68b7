package split

import (
	"math"
	"strconv"
	"testing"

	"github.com/google/uuid"

	"settlex/money"
)

func intPtr(n int) *int { return &n }

func parseAmount(t *testing.T, s string) float64 {
	t.Helper()
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("share amount %q is not a number: %v", s, err)
	}
	return n
}

func sumShares(t *testing.T, shares []Share) float64 {
	t.Helper()
	total := 0.0
	for _, s := range shares {
		total += parseAmount(t, s.Amount)
	}
	return total
}

func TestEqualSplitThreeWayDinner(t *testing.T) {
	payer := Member{ID: uuid.New(), Name: "Payer"}
	alice := Member{ID: uuid.New(), Name: "Alice"}
	bob := Member{ID: uuid.New(), Name: "Bob"}

	shares := EqualSplit(300, []Member{payer, alice, bob}, payer.ID)

	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	if shares[0].Name != "Alice" || shares[0].Amount != "100.0000000" {
		t.Errorf("Alice share = %s %s, want 100.0000000", shares[0].Name, shares[0].Amount)
	}
	if shares[1].Name != "Bob" || shares[1].Amount != "100.0000000" {
		t.Errorf("Bob share = %s %s, want 100.0000000", shares[1].Name, shares[1].Amount)
	}
	if got := sumShares(t, shares); math.Abs(got-200) > money.Epsilon {
		t.Errorf("shares sum to %v, want 200 (payer keeps 100)", got)
	}
}

func TestEqualSplitSingleNonPayer(t *testing.T) {
	// Regression for the bug class where the lone non-payer was assigned
	// the entire total instead of half of it.
	payer := Member{ID: uuid.New(), Name: "Payer"}
	other := Member{ID: uuid.New(), Name: "Other"}

	shares := EqualSplit(100, []Member{payer, other}, payer.ID)

	if len(shares) != 1 {
		t.Fatalf("expected 1 share, got %d", len(shares))
	}
	if shares[0].Amount != "50.0000000" {
		t.Errorf("lone non-payer owes %s, want 50.0000000", shares[0].Amount)
	}
}

func TestEqualSplitCompleteness(t *testing.T) {
	// sum(shares) == total - total/k across member counts and awkward totals.
	totals := []float64{10, 100, 0.0000003, 99.99, 1.0 / 3.0, 12345.6789}
	for k := 2; k <= 7; k++ {
		members := make([]Member, k)
		for i := range members {
			members[i] = Member{ID: uuid.New(), Name: "m" + strconv.Itoa(i)}
		}
		for _, total := range totals {
			shares := EqualSplit(total, members, members[0].ID)
			if len(shares) != k-1 {
				t.Fatalf("k=%d: expected %d shares, got %d", k, k-1, len(shares))
			}
			want := total - total/float64(k)
			if got := sumShares(t, shares); math.Abs(got-want) > money.Epsilon {
				t.Errorf("k=%d total=%v: shares sum to %v, want %v", k, total, got, want)
			}
		}
	}
}

func TestEqualSplitDustAbsorption(t *testing.T) {
	// 100/3 does not terminate in decimal; the dust must land on the last
	// non-payer, deterministically, in input order.
	payer := Member{ID: uuid.New(), Name: "P"}
	a := Member{ID: uuid.New(), Name: "A"}
	b := Member{ID: uuid.New(), Name: "B"}

	shares := EqualSplit(100, []Member{payer, a, b}, payer.ID)

	if shares[0].Amount != "33.3333333" {
		t.Errorf("first share = %s", shares[0].Amount)
	}
	if shares[1].Amount != "33.3333334" {
		t.Errorf("last share = %s, want the rounding dust", shares[1].Amount)
	}
}

func TestEqualSplitEdgeCases(t *testing.T) {
	payer := Member{ID: uuid.New(), Name: "P"}

	if got := EqualSplit(100, []Member{}, payer.ID); len(got) != 0 {
		t.Errorf("empty members: got %d shares, want 0", len(got))
	}
	if got := EqualSplit(100, []Member{payer}, payer.ID); len(got) != 0 {
		t.Errorf("payer only: got %d shares, want 0", len(got))
	}
}

func TestWeightedSplitScenario(t *testing.T) {
	// total=500, weights P=1 A=3 B=1 -> A owes 300, B owes 100.
	payer := Member{ID: uuid.New(), Name: "P", Weight: intPtr(1)}
	alice := Member{ID: uuid.New(), Name: "A", Weight: intPtr(3)}
	bob := Member{ID: uuid.New(), Name: "B", Weight: intPtr(1)}

	shares := WeightedSplit(500, []Member{payer, alice, bob}, payer.ID)

	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	if shares[0].Amount != "300.0000000" {
		t.Errorf("A share = %s, want 300.0000000", shares[0].Amount)
	}
	if shares[1].Amount != "100.0000000" {
		t.Errorf("B share = %s, want 100.0000000", shares[1].Amount)
	}
}

func TestWeightedSplitProportionality(t *testing.T) {
	payer := Member{ID: uuid.New(), Name: "P", Weight: intPtr(2)}
	a := Member{ID: uuid.New(), Name: "A", Weight: intPtr(5)}
	b := Member{ID: uuid.New(), Name: "B"} // unset -> 1
	total := 123.456789

	shares := WeightedSplit(total, []Member{payer, a, b}, payer.ID)

	wantA := total * 5 / 8
	wantB := total * 1 / 8
	if got := parseAmount(t, shares[0].Amount); math.Abs(got-wantA) > money.Epsilon {
		t.Errorf("A share = %v, want %v", got, wantA)
	}
	if got := parseAmount(t, shares[1].Amount); math.Abs(got-wantB) > money.Epsilon {
		t.Errorf("B share = %v, want %v", got, wantB)
	}
}

func TestWeightedSplitZeroWeight(t *testing.T) {
	// An explicit zero weight is honoured: the member owes nothing.
	payer := Member{ID: uuid.New(), Name: "P"}
	freeloader := Member{ID: uuid.New(), Name: "F", Weight: intPtr(0)}
	other := Member{ID: uuid.New(), Name: "O"}

	shares := WeightedSplit(100, []Member{payer, freeloader, other}, payer.ID)

	if shares[0].Amount != "0.0000000" {
		t.Errorf("zero-weight member owes %s, want 0.0000000", shares[0].Amount)
	}
	if shares[1].Amount != "50.0000000" {
		t.Errorf("unit-weight member owes %s, want 50.0000000", shares[1].Amount)
	}
}

func TestComputeSplitDispatch(t *testing.T) {
	payer := Member{ID: uuid.New(), Name: "P", Weight: intPtr(1)}
	a := Member{ID: uuid.New(), Name: "A", Weight: intPtr(3)}

	equal := ComputeSplit(100, []Member{payer, a}, payer.ID, ModeEqual)
	if equal[0].Amount != "50.0000000" {
		t.Errorf("equal mode share = %s", equal[0].Amount)
	}

	custom := ComputeSplit(100, []Member{payer, a}, payer.ID, ModeCustom)
	if custom[0].Amount != "75.0000000" {
		t.Errorf("custom mode share = %s", custom[0].Amount)
	}

	// Unknown mode falls back to equal.
	fallback := ComputeSplit(100, []Member{payer, a}, payer.ID, Mode("whatever"))
	if fallback[0].Amount != "50.0000000" {
		t.Errorf("fallback share = %s", fallback[0].Amount)
	}
}

func TestSharesStartUnpaid(t *testing.T) {
	payer := Member{ID: uuid.New(), Name: "P"}
	a := Member{ID: uuid.New(), Name: "A"}

	for _, mode := range []Mode{ModeEqual, ModeCustom} {
		for _, s := range ComputeSplit(10, []Member{payer, a}, payer.ID, mode) {
			if s.Paid || s.TxHash != "" {
				t.Errorf("mode %s: new share already marked paid", mode)
			}
		}
	}
}
