package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"settlex/mq/mq"
)

const (
	exchangeName = "settlement_events_exchange"
)

const (
	expenseCreatedRoutingKey = "expense.created"
	paymentPaidRoutingKey    = "payment.paid"
	paymentFailedRoutingKey  = "payment.failed"
)

func getRoutingKey(action mq.Action, msgType string) string {
	switch msgType {
	case "expense":
		if action == mq.ActionCreated {
			return expenseCreatedRoutingKey
		}
	case "payment":
		switch action {
		case mq.ActionPaid:
			return paymentPaidRoutingKey
		case mq.ActionFailed:
			return paymentFailedRoutingKey
		}
	}
	return ""
}

// rabbitQueueCore carries the broker plumbing shared by both message
// types: one channel, one bound queue, and the local consumer fan-out.
// Broker deliveries are filtered by topic on the consumer side, so every
// subscriber only sees its own trip.
type rabbitQueueCore[M mq.TopicProvider] struct {
	action     mq.Action
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	queueName  string
	routingKey string
	mu         sync.RWMutex
	consumers  map[uuid.UUID]*rabbitConsumer[M]
}

type rabbitConsumer[M any] struct {
	topic uuid.UUID
	ch    chan M
}

func newRabbitQueueCore[M mq.TopicProvider](action mq.Action, conn *amqp091.Connection, msgType string) (*rabbitQueueCore[M], error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	queueName := fmt.Sprintf("settlement_%s_%d_queue", msgType, action)
	routingKey := getRoutingKey(action, msgType)

	if err := DeclareQueueAndExchange(ch, queueName, exchangeName, routingKey); err != nil {
		ch.Close()
		return nil, err
	}

	return &rabbitQueueCore[M]{
		action:     action,
		conn:       conn,
		channel:    ch,
		queueName:  queueName,
		routingKey: routingKey,
		consumers:  make(map[uuid.UUID]*rabbitConsumer[M]),
	}, nil
}

func (q *rabbitQueueCore[M]) GetAction() mq.Action {
	return q.action
}

func (q *rabbitQueueCore[M]) Publish(msg M) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = q.channel.PublishWithContext(ctx,
		exchangeName,
		q.routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (q *rabbitQueueCore[M]) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan M, error) {
	msgs, err := q.channel.Consume(
		q.queueName,
		"",    // consumer
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	subscriberID := uuid.New()
	consumer := &rabbitConsumer[M]{topic: tripID, ch: make(chan M)}

	q.mu.Lock()
	q.consumers[subscriberID] = consumer
	q.mu.Unlock()

	go func() {
		defer func() {
			q.mu.Lock()
			if c, ok := q.consumers[subscriberID]; ok {
				close(c.ch)
				delete(q.consumers, subscriberID)
			}
			q.mu.Unlock()
		}()

		for d := range msgs {
			var msg M
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("Failed to unmarshal message on %s: %v", q.queueName, err)
				continue
			}
			if msg.GetTopic() != tripID {
				continue
			}

			q.mu.RLock()
			c, ok := q.consumers[subscriberID]
			q.mu.RUnlock()
			if !ok {
				return
			}

			select {
			case c.ch <- msg:
			case <-time.After(1 * time.Second):
				log.Printf("Timeout sending message to consumer %s. Skipping.", subscriberID)
			}
		}
	}()

	return subscriberID, consumer.ch, nil
}

func (q *rabbitQueueCore[M]) DeSubscribe(subscriberID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if c, ok := q.consumers[subscriberID]; ok {
		delete(q.consumers, subscriberID)
		close(c.ch)
		return nil
	}
	return fmt.Errorf("consumer with ID %s not found for queue %s", subscriberID, q.queueName)
}

// rabbitSettlementMessageQueueWrapper implements
// mq.SettlementMessageQueueWrapper on one broker connection.
type rabbitSettlementMessageQueueWrapper struct {
	ExpenseMQArray [mq.ActionCnt]*rabbitQueueCore[mq.ExpenseMessage]
	PaymentMQArray [mq.ActionCnt]*rabbitQueueCore[mq.PaymentMessage]
	conn           *amqp091.Connection
}

func NewRabbitSettlementMessageQueueWrapper(conn *amqp091.Connection) (mq.SettlementMessageQueueWrapper, error) {
	wrapper := &rabbitSettlementMessageQueueWrapper{
		conn: conn,
	}

	var err error

	wrapper.ExpenseMQArray[mq.ActionCreated], err = newRabbitQueueCore[mq.ExpenseMessage](mq.ActionCreated, conn, "expense")
	if err != nil {
		return nil, fmt.Errorf("failed to create expense created mq: %w", err)
	}

	wrapper.PaymentMQArray[mq.ActionPaid], err = newRabbitQueueCore[mq.PaymentMessage](mq.ActionPaid, conn, "payment")
	if err != nil {
		return nil, fmt.Errorf("failed to create payment paid mq: %w", err)
	}
	wrapper.PaymentMQArray[mq.ActionFailed], err = newRabbitQueueCore[mq.PaymentMessage](mq.ActionFailed, conn, "payment")
	if err != nil {
		return nil, fmt.Errorf("failed to create payment failed mq: %w", err)
	}

	return wrapper, nil
}

func (wrapper *rabbitSettlementMessageQueueWrapper) GetExpenseMessageQueue(action mq.Action) mq.ExpenseMessageQueue {
	if action < 0 || action >= mq.ActionCnt || wrapper.ExpenseMQArray[action] == nil {
		return nil
	}
	return wrapper.ExpenseMQArray[action]
}

func (wrapper *rabbitSettlementMessageQueueWrapper) GetPaymentMessageQueue(action mq.Action) mq.PaymentMessageQueue {
	if action < 0 || action >= mq.ActionCnt || wrapper.PaymentMQArray[action] == nil {
		return nil
	}
	return wrapper.PaymentMQArray[action]
}

// Close closes all channels and the broker connection.
func (wrapper *rabbitSettlementMessageQueueWrapper) Close() {
	for _, q := range wrapper.ExpenseMQArray {
		if q != nil && q.channel != nil {
			q.channel.Close()
		}
	}
	for _, q := range wrapper.PaymentMQArray {
		if q != nil && q.channel != nil {
			q.channel.Close()
		}
	}
	if wrapper.conn != nil {
		wrapper.conn.Close()
	}
}
