// Package goch is the in-process message queue backend: a per-action
// fan-out over Go channels, used in tests and single-node deployments.
package goch

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"settlex/mq/mq"
)

type QueueError string

func (e QueueError) Error() string {
	return string(e)
}

const (
	ErrQueueFull    QueueError = "message queue is full"
	ErrQueueStopped QueueError = "message queue is stopped"
)

type subscriberEntry[M mq.TopicProvider] struct {
	topic uuid.UUID
	ch    chan M
}

// fanOutQueueCore delivers every published message to all subscribers of
// the message's topic. One goroutine owns delivery; Subscribe and
// DeSubscribe mutate the subscriber map under the mutex.
type fanOutQueueCore[M mq.TopicProvider] struct {
	publishChan chan M
	quit        chan struct{}
	stopOnce    sync.Once
	bufferSize  int

	mu          sync.RWMutex
	subscribers map[uuid.UUID]*subscriberEntry[M]
}

func newFanOutQueueCore[M mq.TopicProvider](bufferSize int) *fanOutQueueCore[M] {
	core := &fanOutQueueCore[M]{
		publishChan: make(chan M, bufferSize),
		quit:        make(chan struct{}),
		bufferSize:  bufferSize,
		subscribers: make(map[uuid.UUID]*subscriberEntry[M]),
	}
	go core.fanOutRoutine()
	return core
}

func (c *fanOutQueueCore[M]) fanOutRoutine() {
	for {
		select {
		case msg := <-c.publishChan:
			topic := msg.GetTopic()
			c.mu.RLock()
			for _, sub := range c.subscribers {
				if sub.topic != topic {
					continue
				}
				select {
				case sub.ch <- msg:
				default:
					// slow subscriber, drop rather than stall the fan-out
				}
			}
			c.mu.RUnlock()
		case <-c.quit:
			return
		}
	}
}

func (c *fanOutQueueCore[M]) Publish(msg M) error {
	select {
	case <-c.quit:
		return ErrQueueStopped
	default:
	}
	select {
	case c.publishChan <- msg:
		return nil
	default:
		if c.bufferSize > 0 {
			return ErrQueueFull
		}
	}
	// unbuffered: wait for the fan-out routine unless stopped meanwhile
	select {
	case c.publishChan <- msg:
		return nil
	case <-c.quit:
		return ErrQueueStopped
	}
}

func (c *fanOutQueueCore[M]) Subscribe(topic uuid.UUID) (uuid.UUID, <-chan M, error) {
	id := uuid.New()
	sub := &subscriberEntry[M]{
		topic: topic,
		ch:    make(chan M, 16),
	}

	c.mu.Lock()
	c.subscribers[id] = sub
	c.mu.Unlock()

	return id, sub.ch, nil
}

func (c *fanOutQueueCore[M]) DeSubscribe(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subscribers[id]
	if !ok {
		return fmt.Errorf("subscriber %s not found", id)
	}
	delete(c.subscribers, id)
	close(sub.ch)
	return nil
}

// Stop shuts the fan-out down and closes every subscriber channel.
func (c *fanOutQueueCore[M]) Stop() {
	c.stopOnce.Do(func() {
		close(c.quit)
		c.mu.Lock()
		for id, sub := range c.subscribers {
			delete(c.subscribers, id)
			close(sub.ch)
		}
		c.mu.Unlock()
	})
}

// ChannelExpenseMessageQueue implements mq.ExpenseMessageQueue in-process.
type ChannelExpenseMessageQueue struct {
	action mq.Action
	core   *fanOutQueueCore[mq.ExpenseMessage]
}

func NewChannelExpenseMessageQueue(action mq.Action, bufferSize int) *ChannelExpenseMessageQueue {
	return &ChannelExpenseMessageQueue{
		action: action,
		core:   newFanOutQueueCore[mq.ExpenseMessage](bufferSize),
	}
}

func (q *ChannelExpenseMessageQueue) GetAction() mq.Action {
	return q.action
}

func (q *ChannelExpenseMessageQueue) Publish(msg mq.ExpenseMessage) error {
	return q.core.Publish(msg)
}

func (q *ChannelExpenseMessageQueue) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan mq.ExpenseMessage, error) {
	return q.core.Subscribe(tripID)
}

func (q *ChannelExpenseMessageQueue) DeSubscribe(id uuid.UUID) error {
	return q.core.DeSubscribe(id)
}

func (q *ChannelExpenseMessageQueue) Stop() {
	q.core.Stop()
}

// ChannelPaymentMessageQueue implements mq.PaymentMessageQueue in-process.
type ChannelPaymentMessageQueue struct {
	action mq.Action
	core   *fanOutQueueCore[mq.PaymentMessage]
}

func NewChannelPaymentMessageQueue(action mq.Action, bufferSize int) *ChannelPaymentMessageQueue {
	return &ChannelPaymentMessageQueue{
		action: action,
		core:   newFanOutQueueCore[mq.PaymentMessage](bufferSize),
	}
}

func (q *ChannelPaymentMessageQueue) GetAction() mq.Action {
	return q.action
}

func (q *ChannelPaymentMessageQueue) Publish(msg mq.PaymentMessage) error {
	return q.core.Publish(msg)
}

func (q *ChannelPaymentMessageQueue) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan mq.PaymentMessage, error) {
	return q.core.Subscribe(tripID)
}

func (q *ChannelPaymentMessageQueue) DeSubscribe(id uuid.UUID) error {
	return q.core.DeSubscribe(id)
}

func (q *ChannelPaymentMessageQueue) Stop() {
	q.core.Stop()
}

// GoChanSettlementMessageQueueWrapper serves the per-action queues from
// in-process channels.
type GoChanSettlementMessageQueueWrapper struct {
	ExpenseMQArray [mq.ActionCnt]mq.ExpenseMessageQueue
	PaymentMQArray [mq.ActionCnt]mq.PaymentMessageQueue
}

func (wrapper *GoChanSettlementMessageQueueWrapper) GetExpenseMessageQueue(action mq.Action) mq.ExpenseMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return wrapper.ExpenseMQArray[action]
}

func (wrapper *GoChanSettlementMessageQueueWrapper) GetPaymentMessageQueue(action mq.Action) mq.PaymentMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return wrapper.PaymentMQArray[action]
}

// NewGoChanSettlementMessageQueueWrapper wires the queues each message
// type carries: expenses are only ever announced as created, payments can
// succeed or fail.
func NewGoChanSettlementMessageQueueWrapper() mq.SettlementMessageQueueWrapper {
	wrapper := GoChanSettlementMessageQueueWrapper{}
	wrapper.ExpenseMQArray[mq.ActionCreated] = NewChannelExpenseMessageQueue(mq.ActionCreated, 16)
	wrapper.PaymentMQArray[mq.ActionPaid] = NewChannelPaymentMessageQueue(mq.ActionPaid, 16)
	wrapper.PaymentMQArray[mq.ActionFailed] = NewChannelPaymentMessageQueue(mq.ActionFailed, 16)
	return &wrapper
}
