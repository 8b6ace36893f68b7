package cmd

import (
	"testing"

	"settlex/netting"
)

func TestParseCSVToRawDebts(t *testing.T) {
	content := [][]string{
		{"payer", "amount", "participants"},
		{"Bob", "300", "Alice, Bob, Carol"},
	}

	debts, err := ParseCSVToRawDebts(content)
	if err != nil {
		t.Fatalf("ParseCSVToRawDebts failed: %v", err)
	}
	if len(debts) != 2 {
		t.Fatalf("want 2 debts (payer owes nothing), got %v", debts)
	}
	for _, d := range debts {
		if d.To != "Bob" {
			t.Errorf("debt owed to %q, want Bob", d.To)
		}
		if d.Amount != 100 {
			t.Errorf("debt amount %v, want 100", d.Amount)
		}
	}

	payments := netting.ComputeNetPayments(debts)
	if len(payments) != 2 {
		t.Fatalf("want 2 net payments, got %v", payments)
	}
}

func TestParseCSVToRawDebtsErrors(t *testing.T) {
	cases := []struct {
		name    string
		content [][]string
	}{
		{"empty", nil},
		{"wrong columns", [][]string{{"h"}, {"Bob", "300"}}},
		{"bad amount", [][]string{{"h", "h", "h"}, {"Bob", "x", "Alice, Bob"}}},
		{"payer missing", [][]string{{"h", "h", "h"}, {"Bob", "300", "Alice, Carol"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCSVToRawDebts(tc.content); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
