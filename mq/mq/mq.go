package mq

import "github.com/google/uuid"

// TopicProvider is anything that can name the topic it belongs to.
type TopicProvider interface {
	GetTopic() uuid.UUID
}

// SettlementMessageQueueWrapper hands out the per-action queues. A nil
// return means the backend does not carry that action for that message
// type.
type SettlementMessageQueueWrapper interface {
	GetExpenseMessageQueue(action Action) ExpenseMessageQueue
	GetPaymentMessageQueue(action Action) PaymentMessageQueue
}

type ExpenseMessageQueue interface {
	GetAction() Action
	Publish(msg ExpenseMessage) error
	Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan ExpenseMessage, error)
	DeSubscribe(id uuid.UUID) error
}

type PaymentMessageQueue interface {
	GetAction() Action
	Publish(msg PaymentMessage) error
	Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan PaymentMessage, error)
	DeSubscribe(id uuid.UUID) error
}
