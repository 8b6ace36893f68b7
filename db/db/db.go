package db

import (
	"context"

	"github.com/google/uuid"

	"settlex/split"
)

// ExpenseDBWrapper is the store contract for expenses and their shares.
//
// MarkSharePaid is the one mutation multiple participants can race on, so
// implementations must do a read-modify-write against the authoritative
// record (re-read current shares, flip the one share, recompute Settled,
// write) rather than overwriting with a possibly stale in-memory copy.
type ExpenseDBWrapper interface {
	// Create
	CreateExpense(expense *Expense) error
	// Read
	GetExpense(id uuid.UUID) (*Expense, error)
	GetExpenseShares(id uuid.UUID) ([]split.Share, error)
	// Update
	MarkSharePaid(expenseID uuid.UUID, memberID uuid.UUID, txHash string) (*Expense, error)
	// Delete
	DeleteExpense(id uuid.UUID) error
	// Data Loader
	DataLoaderGetExpenseList(ctx context.Context, expenseIds []uuid.UUID) (map[uuid.UUID]*Expense, error)
	DataLoaderGetShareList(ctx context.Context, expenseIds []uuid.UUID) (map[uuid.UUID][]split.Share, error)
}

// TripDBWrapper is the store contract for trips. A trip aggregates expense
// ids, not expenses; whether a trip is settled is derived from the linked
// expenses at read time.
type TripDBWrapper interface {
	// Create
	CreateTrip(info *TripInfo) error
	// Read
	GetTripInfo(id uuid.UUID) (*TripInfo, error)
	GetTrip(id uuid.UUID) (*Trip, error)
	GetTripExpenseIDs(id uuid.UUID) ([]uuid.UUID, error)
	// Update
	UpdateTripInfo(info *TripInfo) error
	TripMemberAdd(id uuid.UUID, member split.Member) error
	TripMemberRemove(id uuid.UUID, memberID uuid.UUID) error
	LinkExpense(tripID uuid.UUID, expenseID uuid.UUID) error
	UnlinkExpense(tripID uuid.UUID, expenseID uuid.UUID) error
	// Delete
	DeleteTrip(id uuid.UUID) error
	// Data Loader
	DataLoaderGetTripInfoList(ctx context.Context, tripIds []uuid.UUID) (map[uuid.UUID]*TripInfo, error)
	DataLoaderGetTripExpenseIDList(ctx context.Context, tripIds []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
}
