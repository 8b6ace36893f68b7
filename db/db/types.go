package db

import (
	"time"

	"github.com/google/uuid"

	"settlex/split"
)

// Address is a payment address on the external network.
type Address string

type ExpenseInfo struct {
	ID          uuid.UUID
	Title       string
	TotalAmount string // canonical 7-decimal amount string
	SplitMode   split.Mode
	PayerID     uuid.UUID
	Settled     bool
	CreatedAt   time.Time
}

type ExpenseData struct {
	Members []split.Member
	Shares  []split.Share
}

// Expense is one bill with its computed shares. Shares are computed once at
// creation time; afterwards they are only ever flipped to paid, never
// recomputed from persisted state or reset. Settled is true iff every share
// is paid.
type Expense struct {
	ExpenseInfo
	ExpenseData
}

type TripInfo struct {
	ID   uuid.UUID
	Name string
}

type TripData struct {
	Members []split.Member
	// ExpenseIDs reference expenses owned by the expense store; a trip
	// never embeds the expenses themselves.
	ExpenseIDs []uuid.UUID
}

type Trip struct {
	TripInfo
	TripData
}

// Payer returns the expense's paying member, or nil when PayerID does not
// reference any member.
func (e *Expense) Payer() *split.Member {
	for i := range e.Members {
		if e.Members[i].ID == e.PayerID {
			return &e.Members[i]
		}
	}
	return nil
}

// AllPaid reports whether every share in the slice is paid. An empty slice
// counts as paid: nobody owes anything.
func AllPaid(shares []split.Share) bool {
	for _, s := range shares {
		if !s.Paid {
			return false
		}
	}
	return true
}
