package gcppubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"

	"settlex/mq/mq"
)

const (
	tripIDAttribute = "tripId"
)

// subscriptionInfo holds details about an active Pub/Sub subscription.
type subscriptionInfo struct {
	gcpSubscription *pubsub.Subscription
	cancel          context.CancelFunc
}

// GenericPubSubService provides a generic implementation for GCP Pub/Sub
// operations over one topic.
type GenericPubSubService[M any] struct {
	client              *pubsub.Client
	topic               *pubsub.Topic
	activeSubscriptions map[uuid.UUID]*subscriptionInfo
	subscriptionsMutex  sync.Mutex
	ctx                 context.Context
}

// NewGenericPubSubService creates a generic service for a specific message
// type. It ensures the underlying Pub/Sub topic exists, creating it if
// necessary.
func NewGenericPubSubService[M any](ctx context.Context, client *pubsub.Client, topicID string) (*GenericPubSubService[M], error) {
	if client == nil {
		return nil, fmt.Errorf("GCP Pub/Sub client is nil")
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existence of topic %s: %w", topicID, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", topicID, err)
		}
		log.Printf("Created Pub/Sub topic: %s", topicID)
	}

	return &GenericPubSubService[M]{
		client:              client,
		topic:               topic,
		activeSubscriptions: make(map[uuid.UUID]*subscriptionInfo),
		ctx:                 ctx,
	}, nil
}

// Publish sends a message to the topic with the trip ID as an attribute so
// subscriptions can filter server-side.
func (s *GenericPubSubService[M]) Publish(msg mq.TopicProvider) error {
	typeName := reflect.TypeOf(msg).Name()
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", typeName, err)
	}

	pubsubMsg := &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			tripIDAttribute: msg.GetTopic().String(),
		},
	}

	result := s.topic.Publish(s.ctx, pubsubMsg)
	if _, err = result.Get(s.ctx); err != nil {
		return fmt.Errorf("failed to publish %s to topic %s: %w", typeName, s.topic.ID(), err)
	}
	return nil
}

// Subscribe creates a new filtered subscription on GCP and starts
// listening for messages matching the trip ID.
func (s *GenericPubSubService[M]) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan M, error) {
	subscriptionID := uuid.New()
	typeName := reflect.TypeOf(*new(M)).Name()

	gcpSubName := fmt.Sprintf("sub-%s-%s-%s", typeName, tripID.String(), subscriptionID.String())

	config := pubsub.SubscriptionConfig{
		Topic:            s.topic,
		Filter:           fmt.Sprintf("attributes.%s = \"%s\"", tripIDAttribute, tripID.String()),
		ExpirationPolicy: 24 * time.Hour,
		AckDeadline:      10 * time.Second,
	}

	gcpSub, err := s.client.CreateSubscription(s.ctx, gcpSubName, config)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create GCP subscription %s for %s: %w", gcpSubName, typeName, err)
	}

	msgChan := make(chan M, 5)
	receiveCtx, cancel := context.WithCancel(s.ctx)

	s.subscriptionsMutex.Lock()
	s.activeSubscriptions[subscriptionID] = &subscriptionInfo{
		gcpSubscription: gcpSub,
		cancel:          cancel,
	}
	s.subscriptionsMutex.Unlock()

	go func() {
		defer func() {
			s.subscriptionsMutex.Lock()
			delete(s.activeSubscriptions, subscriptionID)
			s.subscriptionsMutex.Unlock()

			// Delete the subscription from GCP to prevent resource leaks.
			if deleteErr := gcpSub.Delete(context.Background()); deleteErr != nil {
				log.Printf("Error deleting GCP subscription %s: %v", gcpSub.ID(), deleteErr)
			}
			close(msgChan)
		}()

		err := gcpSub.Receive(receiveCtx, func(ctx context.Context, pubsubMsg *pubsub.Message) {
			pubsubMsg.Ack()

			var msg M
			if err := json.Unmarshal(pubsubMsg.Data, &msg); err != nil {
				log.Printf("Error unmarshaling %s for %s: %v. Body: %s", typeName, subscriptionID, err, string(pubsubMsg.Data))
				return
			}

			select {
			case msgChan <- msg:
			case <-time.After(2 * time.Second):
				log.Printf("Timeout sending %s to msgChan for %s.", typeName, subscriptionID)
			case <-receiveCtx.Done():
				return
			}
		})

		if err != nil && err != context.Canceled {
			log.Printf("Error in Receive loop for %s subscription %s: %v", typeName, subscriptionID, err)
		}
	}()

	return subscriptionID, msgChan, nil
}

// DeSubscribe stops the message receiver and deletes the subscription from
// GCP.
func (s *GenericPubSubService[M]) DeSubscribe(id uuid.UUID) error {
	s.subscriptionsMutex.Lock()
	info, ok := s.activeSubscriptions[id]
	if ok {
		// Removed from the map inside the goroutine's defer block; here we
		// just trigger the cancellation.
		info.cancel()
	}
	s.subscriptionsMutex.Unlock()

	if !ok {
		return fmt.Errorf("subscription ID %s not found for %s service", id, reflect.TypeOf(*new(M)).Name())
	}
	return nil
}

// Close gracefully shuts down all active subscriptions for this service.
func (s *GenericPubSubService[M]) Close() {
	s.subscriptionsMutex.Lock()
	defer s.subscriptionsMutex.Unlock()

	for _, info := range s.activeSubscriptions {
		info.cancel()
	}
}

// --- expenseMQ implementation ---
type expenseMQ struct {
	genericService *GenericPubSubService[mq.ExpenseMessage]
	action         mq.Action
}

func NewExpenseMessageQueue(ctx context.Context, client *pubsub.Client, action mq.Action) (*expenseMQ, error) {
	topicID := fmt.Sprintf("settlement-expense-%s", action.String())
	gs, err := NewGenericPubSubService[mq.ExpenseMessage](ctx, client, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic service for Expense: %w", err)
	}
	return &expenseMQ{genericService: gs, action: action}, nil
}
func (q *expenseMQ) GetAction() mq.Action                 { return q.action }
func (q *expenseMQ) Publish(msg mq.ExpenseMessage) error  { return q.genericService.Publish(msg) }
func (q *expenseMQ) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan mq.ExpenseMessage, error) {
	return q.genericService.Subscribe(tripID)
}
func (q *expenseMQ) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

// --- paymentMQ implementation ---
type paymentMQ struct {
	genericService *GenericPubSubService[mq.PaymentMessage]
	action         mq.Action
}

func NewPaymentMessageQueue(ctx context.Context, client *pubsub.Client, action mq.Action) (*paymentMQ, error) {
	topicID := fmt.Sprintf("settlement-payment-%s", action.String())
	gs, err := NewGenericPubSubService[mq.PaymentMessage](ctx, client, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic service for Payment: %w", err)
	}
	return &paymentMQ{genericService: gs, action: action}, nil
}
func (q *paymentMQ) GetAction() mq.Action                { return q.action }
func (q *paymentMQ) Publish(msg mq.PaymentMessage) error { return q.genericService.Publish(msg) }
func (q *paymentMQ) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan mq.PaymentMessage, error) {
	return q.genericService.Subscribe(tripID)
}
func (q *paymentMQ) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

// --------- settlement message queue wrapper implementation ---------

type GCPSettlementMessageQueueWrapper struct {
	ExpenseMQArray [mq.ActionCnt]*expenseMQ
	PaymentMQArray [mq.ActionCnt]*paymentMQ
}

func (wrapper *GCPSettlementMessageQueueWrapper) GetExpenseMessageQueue(action mq.Action) mq.ExpenseMessageQueue {
	if action < 0 || action >= mq.ActionCnt || wrapper.ExpenseMQArray[action] == nil {
		return nil
	}
	return wrapper.ExpenseMQArray[action]
}

func (wrapper *GCPSettlementMessageQueueWrapper) GetPaymentMessageQueue(action mq.Action) mq.PaymentMessageQueue {
	if action < 0 || action >= mq.ActionCnt || wrapper.PaymentMQArray[action] == nil {
		return nil
	}
	return wrapper.PaymentMQArray[action]
}

// NewGCPSettlementMessageQueueWrapper creates a new MQ wrapper instance
// using GCP Pub/Sub.
func NewGCPSettlementMessageQueueWrapper(ctx context.Context, projectID string) (mq.SettlementMessageQueueWrapper, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Pub/Sub client for project %s: %w", projectID, err)
	}

	wrapper := &GCPSettlementMessageQueueWrapper{}

	wrapper.ExpenseMQArray[mq.ActionCreated], err = NewExpenseMessageQueue(ctx, client, mq.ActionCreated)
	if err != nil {
		return nil, err
	}

	wrapper.PaymentMQArray[mq.ActionPaid], err = NewPaymentMessageQueue(ctx, client, mq.ActionPaid)
	if err != nil {
		return nil, err
	}
	wrapper.PaymentMQArray[mq.ActionFailed], err = NewPaymentMessageQueue(ctx, client, mq.ActionFailed)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}
