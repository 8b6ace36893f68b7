package mq

import (
	"github.com/google/uuid"

	dbt "settlex/db/db"
)

type Action int

const (
	ActionCreated Action = iota
	ActionPaid
	ActionFailed
	ActionCnt
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionPaid:
		return "paid"
	case ActionFailed:
		return "failed"
	}
	return "unknown"
}

// ExpenseMessage announces a change to an expense within a trip. The trip
// ID is the routing topic.
type ExpenseMessage struct {
	TripID      uuid.UUID
	ExpenseID   uuid.UUID
	Title       string
	TotalAmount string
	PayerName   string
}

func (m ExpenseMessage) GetTopic() uuid.UUID {
	return m.TripID
}

// PaymentMessage announces a share or settlement payment within a trip.
// For a net settlement payment ExpenseID is uuid.Nil.
type PaymentMessage struct {
	TripID     uuid.UUID
	ExpenseID  uuid.UUID
	MemberName string
	Wallet     dbt.Address
	Amount     string
	TxHash     string
}

func (m PaymentMessage) GetTopic() uuid.UUID {
	return m.TripID
}
