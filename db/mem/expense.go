package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	dbt "settlex/db/db"
	"settlex/split"
)

// inMemoryExpenseDBWrapper is an in-memory implementation of
// dbt.ExpenseDBWrapper. It stores copies so callers can never mutate the
// authoritative record from the outside.
type inMemoryExpenseDBWrapper struct {
	expenses map[uuid.UUID]*dbt.Expense

	mu sync.RWMutex
}

// NewInMemoryExpenseDBWrapper creates and returns a new instance of
// inMemoryExpenseDBWrapper.
func NewInMemoryExpenseDBWrapper() dbt.ExpenseDBWrapper {
	return &inMemoryExpenseDBWrapper{
		expenses: make(map[uuid.UUID]*dbt.Expense),
	}
}

func copyExpense(e *dbt.Expense) *dbt.Expense {
	cp := *e
	cp.Members = make([]split.Member, len(e.Members))
	copy(cp.Members, e.Members)
	cp.Shares = make([]split.Share, len(e.Shares))
	copy(cp.Shares, e.Shares)
	return &cp
}

// CreateExpense stores a new expense. The payer must be one of the members.
func (db *inMemoryExpenseDBWrapper) CreateExpense(expense *dbt.Expense) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.expenses[expense.ID]; exists {
		return fmt.Errorf("expense with ID %s already exists", expense.ID)
	}
	if expense.Payer() == nil {
		return fmt.Errorf("expense %s: payer %s is not a member", expense.ID, expense.PayerID)
	}

	db.expenses[expense.ID] = copyExpense(expense)
	return nil
}

// GetExpense retrieves an expense by ID.
func (db *inMemoryExpenseDBWrapper) GetExpense(id uuid.UUID) (*dbt.Expense, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	expense, exists := db.expenses[id]
	if !exists {
		return nil, fmt.Errorf("expense with ID %s not found", id)
	}
	return copyExpense(expense), nil
}

// GetExpenseShares retrieves the current shares of an expense.
func (db *inMemoryExpenseDBWrapper) GetExpenseShares(id uuid.UUID) ([]split.Share, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	expense, exists := db.expenses[id]
	if !exists {
		return nil, fmt.Errorf("expense with ID %s not found", id)
	}

	sharesCopy := make([]split.Share, len(expense.Shares))
	copy(sharesCopy, expense.Shares)
	return sharesCopy, nil
}

// MarkSharePaid flips one member's share to paid against the authoritative
// record and recomputes the settled flag. The write lock covers the whole
// read-modify-write, so two participants paying concurrently cannot clobber
// each other's update.
func (db *inMemoryExpenseDBWrapper) MarkSharePaid(expenseID uuid.UUID, memberID uuid.UUID, txHash string) (*dbt.Expense, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	expense, exists := db.expenses[expenseID]
	if !exists {
		return nil, fmt.Errorf("expense with ID %s not found", expenseID)
	}

	foundIdx := -1
	for i, s := range expense.Shares {
		if s.MemberID == memberID {
			foundIdx = i
			break
		}
	}
	if foundIdx == -1 {
		return nil, fmt.Errorf("share for member %s not found in expense %s", memberID, expenseID)
	}

	expense.Shares[foundIdx].Paid = true
	expense.Shares[foundIdx].TxHash = txHash
	expense.Settled = dbt.AllPaid(expense.Shares)

	return copyExpense(expense), nil
}

// DeleteExpense deletes an expense and its shares.
func (db *inMemoryExpenseDBWrapper) DeleteExpense(id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.expenses[id]; !exists {
		return fmt.Errorf("expense with ID %s not found for deletion", id)
	}
	delete(db.expenses, id)
	return nil
}

// DataLoaderGetExpenseList batch-loads expenses by id. Missing ids are
// simply absent from the result map.
func (db *inMemoryExpenseDBWrapper) DataLoaderGetExpenseList(_ context.Context, expenseIds []uuid.UUID) (map[uuid.UUID]*dbt.Expense, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make(map[uuid.UUID]*dbt.Expense, len(expenseIds))
	for _, id := range expenseIds {
		if expense, exists := db.expenses[id]; exists {
			result[id] = copyExpense(expense)
		}
	}
	return result, nil
}

// DataLoaderGetShareList batch-loads share lists by expense id.
func (db *inMemoryExpenseDBWrapper) DataLoaderGetShareList(_ context.Context, expenseIds []uuid.UUID) (map[uuid.UUID][]split.Share, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make(map[uuid.UUID][]split.Share, len(expenseIds))
	for _, id := range expenseIds {
		if expense, exists := db.expenses[id]; exists {
			sharesCopy := make([]split.Share, len(expense.Shares))
			copy(sharesCopy, expense.Shares)
			result[id] = sharesCopy
		}
	}
	return result, nil
}
