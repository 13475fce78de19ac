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

	"splitsui/ledger/ledger"
	"splitsui/notify/notify"
)

const (
	addressAttribute = "address"
)

// subscriptionInfo holds details about an active Pub/Sub subscription.
type subscriptionInfo struct {
	gcpSubscription *pubsub.Subscription
	cancel          context.CancelFunc
}

// GenericPubSubService provides a generic implementation for GCP Pub/Sub
// operations, filtered per user address via a message attribute.
type GenericPubSubService[M notify.TopicProvider] struct {
	client              *pubsub.Client
	topic               *pubsub.Topic
	activeSubscriptions map[uuid.UUID]*subscriptionInfo
	subscriptionsMutex  sync.Mutex
	ctx                 context.Context
}

// NewGenericPubSubService creates a generic service for one message type,
// creating the underlying topic if needed.
func NewGenericPubSubService[M notify.TopicProvider](ctx context.Context, client *pubsub.Client, topicID string) (*GenericPubSubService[M], error) {
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

// Publish sends a message to the topic with its address as an attribute.
func (s *GenericPubSubService[M]) Publish(msg M) error {
	typeName := reflect.TypeOf(msg).Name()
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", typeName, err)
	}

	pubsubMsg := &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			addressAttribute: string(msg.GetTopic()),
		},
	}

	result := s.topic.Publish(s.ctx, pubsubMsg)
	if _, err := result.Get(s.ctx); err != nil {
		return fmt.Errorf("failed to publish %s to topic %s: %w", typeName, s.topic.ID(), err)
	}
	return nil
}

// Subscribe creates a filtered subscription on GCP and starts listening.
func (s *GenericPubSubService[M]) Subscribe(addr ledger.Address) (uuid.UUID, <-chan M, error) {
	subscriptionID := uuid.New()
	typeName := reflect.TypeOf(*new(M)).Name()

	gcpSubName := fmt.Sprintf("sub-%s-%s", typeName, subscriptionID.String())

	config := pubsub.SubscriptionConfig{
		Topic:            s.topic,
		Filter:           fmt.Sprintf("attributes.%s = \"%s\"", addressAttribute, addr),
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

			// delete the subscription from GCP to prevent resource leaks
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

// DeSubscribe stops the receiver and deletes the subscription from GCP.
func (s *GenericPubSubService[M]) DeSubscribe(id uuid.UUID) error {
	s.subscriptionsMutex.Lock()
	info, ok := s.activeSubscriptions[id]
	if ok {
		// removal from the map happens in the goroutine's defer block
		info.cancel()
	}
	s.subscriptionsMutex.Unlock()

	if !ok {
		return fmt.Errorf("subscription ID %s not found for %s service", id, reflect.TypeOf(*new(M)).Name())
	}
	return nil
}

// Close shuts down all active subscriptions for this service.
func (s *GenericPubSubService[M]) Close() {
	s.subscriptionsMutex.Lock()
	defer s.subscriptionsMutex.Unlock()

	for _, info := range s.activeSubscriptions {
		info.cancel()
	}
}

// --- outcomeMQ implementation ---

type outcomeMQ struct {
	genericService *GenericPubSubService[notify.OutcomeMessage]
}

func NewOutcomeMessageQueue(ctx context.Context, client *pubsub.Client) (*outcomeMQ, error) {
	gs, err := NewGenericPubSubService[notify.OutcomeMessage](ctx, client, "payment-outcome")
	if err != nil {
		return nil, fmt.Errorf("failed to create generic service for Outcome: %w", err)
	}
	return &outcomeMQ{genericService: gs}, nil
}

func (q *outcomeMQ) Publish(msg notify.OutcomeMessage) error { return q.genericService.Publish(msg) }
func (q *outcomeMQ) Subscribe(addr ledger.Address) (uuid.UUID, <-chan notify.OutcomeMessage, error) {
	return q.genericService.Subscribe(addr)
}
func (q *outcomeMQ) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

// --- requestChangeMQ implementation ---

type requestChangeMQ struct {
	genericService *GenericPubSubService[notify.RequestChangeMessage]
	change         notify.Change
}

func NewRequestChangeMessageQueue(ctx context.Context, client *pubsub.Client, change notify.Change) (*requestChangeMQ, error) {
	topicID := fmt.Sprintf("payment-request-%s", change.String())
	gs, err := NewGenericPubSubService[notify.RequestChangeMessage](ctx, client, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic service for RequestChange: %w", err)
	}
	return &requestChangeMQ{genericService: gs, change: change}, nil
}

func (q *requestChangeMQ) GetChange() notify.Change { return q.change }
func (q *requestChangeMQ) Publish(msg notify.RequestChangeMessage) error {
	return q.genericService.Publish(msg)
}
func (q *requestChangeMQ) Subscribe(addr ledger.Address) (uuid.UUID, <-chan notify.RequestChangeMessage, error) {
	return q.genericService.Subscribe(addr)
}
func (q *requestChangeMQ) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

// --- wrapper ---

type gcpPaymentMessageQueueWrapper struct {
	OutcomeMQ     notify.OutcomeMessageQueue
	ChangeMQArray [notify.ChangeCnt]notify.RequestChangeMessageQueue
	client        *pubsub.Client
}

func NewGCPPaymentMessageQueueWrapper(ctx context.Context, client *pubsub.Client) (notify.PaymentMessageQueueWrapper, error) {
	wrapper := &gcpPaymentMessageQueueWrapper{client: client}

	var err error
	wrapper.OutcomeMQ, err = NewOutcomeMessageQueue(ctx, client)
	if err != nil {
		return nil, err
	}
	for change := notify.Change(0); change < notify.ChangeCnt; change++ {
		wrapper.ChangeMQArray[change], err = NewRequestChangeMessageQueue(ctx, client, change)
		if err != nil {
			return nil, err
		}
	}
	return wrapper, nil
}

func (wrapper *gcpPaymentMessageQueueWrapper) GetOutcomeMessageQueue() notify.OutcomeMessageQueue {
	return wrapper.OutcomeMQ
}

func (wrapper *gcpPaymentMessageQueueWrapper) GetRequestChangeMessageQueue(change notify.Change) notify.RequestChangeMessageQueue {
	if change < 0 || change >= notify.ChangeCnt {
		return nil
	}
	return wrapper.ChangeMQArray[change]
}
