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

	"splitsui/ledger/ledger"
	"splitsui/notify/notify"
)

const (
	// every payment notification goes through this exchange
	exchangeName = "payment_events_exchange"
)

const (
	outcomeRoutingKey        = "outcome"
	requestCreatedRoutingKey = "request.created"
	requestUpdatedRoutingKey = "request.updated"
	requestRemovedRoutingKey = "request.removed"
)

func changeRoutingKey(change notify.Change) string {
	switch change {
	case notify.ChangeCreated:
		return requestCreatedRoutingKey
	case notify.ChangeUpdated:
		return requestUpdatedRoutingKey
	case notify.ChangeRemoved:
		return requestRemovedRoutingKey
	}
	return ""
}

// rabbitOutcomeMessageQueue implements notify.OutcomeMessageQueue over
// RabbitMQ. Address filtering happens on the consumer side: every
// subscriber consumes the queue and drops messages for other addresses.
type rabbitOutcomeMessageQueue struct {
	conn      *amqp091.Connection
	channel   *amqp091.Channel
	queueName string
	mu        sync.RWMutex
	consumers map[uuid.UUID]consumerEntry[notify.OutcomeMessage]
}

type consumerEntry[M notify.TopicProvider] struct {
	addr ledger.Address
	ch   chan M
}

func NewRabbitOutcomeMessageQueue(conn *amqp091.Connection) (notify.OutcomeMessageQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	queueName := "payment_outcome_queue"
	if err := DeclareQueueAndExchange(ch, queueName, exchangeName, outcomeRoutingKey); err != nil {
		ch.Close()
		return nil, err
	}

	return &rabbitOutcomeMessageQueue{
		conn:      conn,
		channel:   ch,
		queueName: queueName,
		consumers: make(map[uuid.UUID]consumerEntry[notify.OutcomeMessage]),
	}, nil
}

func (q *rabbitOutcomeMessageQueue) Publish(msg notify.OutcomeMessage) error {
	return publish(q.channel, outcomeRoutingKey, msg)
}

func (q *rabbitOutcomeMessageQueue) Subscribe(addr ledger.Address) (uuid.UUID, <-chan notify.OutcomeMessage, error) {
	return subscribe(q.channel, q.queueName, addr, &q.mu, q.consumers)
}

func (q *rabbitOutcomeMessageQueue) DeSubscribe(subscriberID uuid.UUID) error {
	return deSubscribe(subscriberID, q.queueName, &q.mu, q.consumers)
}

// rabbitRequestChangeMessageQueue implements
// notify.RequestChangeMessageQueue over RabbitMQ, one queue per change
// kind.
type rabbitRequestChangeMessageQueue struct {
	change     notify.Change
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	queueName  string
	routingKey string
	mu         sync.RWMutex
	consumers  map[uuid.UUID]consumerEntry[notify.RequestChangeMessage]
}

func NewRabbitRequestChangeMessageQueue(change notify.Change, conn *amqp091.Connection) (notify.RequestChangeMessageQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	queueName := fmt.Sprintf("payment_request_change_%d_queue", change)
	routingKey := changeRoutingKey(change)

	if err := DeclareQueueAndExchange(ch, queueName, exchangeName, routingKey); err != nil {
		ch.Close()
		return nil, err
	}

	return &rabbitRequestChangeMessageQueue{
		change:     change,
		conn:       conn,
		channel:    ch,
		queueName:  queueName,
		routingKey: routingKey,
		consumers:  make(map[uuid.UUID]consumerEntry[notify.RequestChangeMessage]),
	}, nil
}

func (q *rabbitRequestChangeMessageQueue) GetChange() notify.Change {
	return q.change
}

func (q *rabbitRequestChangeMessageQueue) Publish(msg notify.RequestChangeMessage) error {
	return publish(q.channel, q.routingKey, msg)
}

func (q *rabbitRequestChangeMessageQueue) Subscribe(addr ledger.Address) (uuid.UUID, <-chan notify.RequestChangeMessage, error) {
	return subscribe(q.channel, q.queueName, addr, &q.mu, q.consumers)
}

func (q *rabbitRequestChangeMessageQueue) DeSubscribe(subscriberID uuid.UUID) error {
	return deSubscribe(subscriberID, q.queueName, &q.mu, q.consumers)
}

func publish[M any](channel *amqp091.Channel, routingKey string, msg M) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = channel.PublishWithContext(ctx,
		exchangeName,
		routingKey,
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

func subscribe[M notify.TopicProvider](
	channel *amqp091.Channel,
	queueName string,
	addr ledger.Address,
	mu *sync.RWMutex,
	consumers map[uuid.UUID]consumerEntry[M],
) (uuid.UUID, <-chan M, error) {
	msgs, err := channel.Consume(
		queueName,
		"",    // consumer
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	subscriberID := uuid.New()
	outputChan := make(chan M)

	mu.Lock()
	consumers[subscriberID] = consumerEntry[M]{addr: addr, ch: outputChan}
	mu.Unlock()

	go func() {
		defer func() {
			mu.Lock()
			if entry, ok := consumers[subscriberID]; ok {
				close(entry.ch)
				delete(consumers, subscriberID)
			}
			mu.Unlock()
		}()

		for d := range msgs {
			var msg M
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("Failed to unmarshal message on %s: %v", queueName, err)
				continue
			}

			mu.RLock()
			entry, ok := consumers[subscriberID]
			mu.RUnlock()
			if !ok {
				// consumer unsubscribed while the message was in flight
				return
			}
			if entry.addr != msg.GetTopic() {
				continue
			}

			select {
			case entry.ch <- msg:
			case <-time.After(1 * time.Second):
				log.Printf("Timeout sending message to consumer %s on %s. Skipping.", subscriberID, queueName)
			}
		}
	}()

	return subscriberID, outputChan, nil
}

func deSubscribe[M notify.TopicProvider](
	subscriberID uuid.UUID,
	queueName string,
	mu *sync.RWMutex,
	consumers map[uuid.UUID]consumerEntry[M],
) error {
	mu.Lock()
	defer mu.Unlock()

	if entry, ok := consumers[subscriberID]; ok {
		delete(consumers, subscriberID)
		close(entry.ch)
		return nil
	}
	return fmt.Errorf("consumer with ID %s not found for queue %s", subscriberID, queueName)
}

// rabbitPaymentMessageQueueWrapper implements
// notify.PaymentMessageQueueWrapper for RabbitMQ.
type rabbitPaymentMessageQueueWrapper struct {
	OutcomeMQ     notify.OutcomeMessageQueue
	ChangeMQArray [notify.ChangeCnt]notify.RequestChangeMessageQueue
	conn          *amqp091.Connection
}

func NewRabbitPaymentMessageQueueWrapper(conn *amqp091.Connection) (notify.PaymentMessageQueueWrapper, error) {
	wrapper := &rabbitPaymentMessageQueueWrapper{conn: conn}

	var err error
	wrapper.OutcomeMQ, err = NewRabbitOutcomeMessageQueue(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create outcome mq: %w", err)
	}
	for change := notify.Change(0); change < notify.ChangeCnt; change++ {
		wrapper.ChangeMQArray[change], err = NewRabbitRequestChangeMessageQueue(change, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to create request change mq %d: %w", change, err)
		}
	}

	return wrapper, nil
}

func (wrapper *rabbitPaymentMessageQueueWrapper) GetOutcomeMessageQueue() notify.OutcomeMessageQueue {
	return wrapper.OutcomeMQ
}

func (wrapper *rabbitPaymentMessageQueueWrapper) GetRequestChangeMessageQueue(change notify.Change) notify.RequestChangeMessageQueue {
	if change < 0 || change >= notify.ChangeCnt {
		return nil
	}
	return wrapper.ChangeMQArray[change]
}

// Close closes all channels and the RabbitMQ connection.
func (wrapper *rabbitPaymentMessageQueueWrapper) Close() {
	if q, ok := wrapper.OutcomeMQ.(*rabbitOutcomeMessageQueue); ok && q.channel != nil {
		q.channel.Close()
	}
	for _, q := range wrapper.ChangeMQArray {
		if rq, ok := q.(*rabbitRequestChangeMessageQueue); ok && rq.channel != nil {
			rq.channel.Close()
		}
	}
	if wrapper.conn != nil {
		wrapper.conn.Close()
	}
}
