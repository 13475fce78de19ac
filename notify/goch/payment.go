package goch

import (
	"sync"

	"github.com/google/uuid"

	"splitsui/ledger/ledger"
	"splitsui/notify/notify"
)

type QueueError string

func (e QueueError) Error() string {
	return string(e)
}

const ErrQueueFull QueueError = "message queue is full"

const consumerBufferSize = 16

// subscriber is one attached consumer with its address filter.
type subscriber[M notify.TopicProvider] struct {
	addr ledger.Address
	ch   chan M
}

// fanout delivers each published message to every consumer subscribed
// to the message's topic address. Sends are non-blocking; a consumer
// that stops draining loses messages instead of stalling publishers.
type fanout[M notify.TopicProvider] struct {
	mu        sync.RWMutex
	consumers map[uuid.UUID]subscriber[M]
}

func newFanout[M notify.TopicProvider]() *fanout[M] {
	return &fanout[M]{consumers: make(map[uuid.UUID]subscriber[M])}
}

func (f *fanout[M]) Publish(msg M) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var lastErr error
	for _, sub := range f.consumers {
		if sub.addr != msg.GetTopic() {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			lastErr = ErrQueueFull
		}
	}
	return lastErr
}

func (f *fanout[M]) Subscribe(addr ledger.Address) (uuid.UUID, <-chan M, error) {
	id := uuid.New()
	ch := make(chan M, consumerBufferSize)

	f.mu.Lock()
	f.consumers[id] = subscriber[M]{addr: addr, ch: ch}
	f.mu.Unlock()

	return id, ch, nil
}

func (f *fanout[M]) DeSubscribe(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub, exists := f.consumers[id]
	if !exists {
		return QueueError("consumer " + id.String() + " not found")
	}
	delete(f.consumers, id)
	close(sub.ch)
	return nil
}

// ChannelOutcomeMessageQueue implements notify.OutcomeMessageQueue on
// in-process Go channels.
type ChannelOutcomeMessageQueue struct {
	*fanout[notify.OutcomeMessage]
}

func NewChannelOutcomeMessageQueue() *ChannelOutcomeMessageQueue {
	return &ChannelOutcomeMessageQueue{fanout: newFanout[notify.OutcomeMessage]()}
}

// ChannelRequestChangeMessageQueue implements
// notify.RequestChangeMessageQueue on in-process Go channels.
type ChannelRequestChangeMessageQueue struct {
	*fanout[notify.RequestChangeMessage]
	change notify.Change
}

func NewChannelRequestChangeMessageQueue(change notify.Change) *ChannelRequestChangeMessageQueue {
	return &ChannelRequestChangeMessageQueue{
		fanout: newFanout[notify.RequestChangeMessage](),
		change: change,
	}
}

func (q *ChannelRequestChangeMessageQueue) GetChange() notify.Change {
	return q.change
}

// GoChanPaymentMessageQueueWrapper bundles the in-process queues behind
// notify.PaymentMessageQueueWrapper. It backs tests and the dev server.
type GoChanPaymentMessageQueueWrapper struct {
	OutcomeMQ     notify.OutcomeMessageQueue
	ChangeMQArray [notify.ChangeCnt]notify.RequestChangeMessageQueue
}

func NewGoChanPaymentMessageQueueWrapper() notify.PaymentMessageQueueWrapper {
	wrapper := GoChanPaymentMessageQueueWrapper{
		OutcomeMQ: NewChannelOutcomeMessageQueue(),
	}
	wrapper.ChangeMQArray[notify.ChangeCreated] = NewChannelRequestChangeMessageQueue(notify.ChangeCreated)
	wrapper.ChangeMQArray[notify.ChangeUpdated] = NewChannelRequestChangeMessageQueue(notify.ChangeUpdated)
	wrapper.ChangeMQArray[notify.ChangeRemoved] = NewChannelRequestChangeMessageQueue(notify.ChangeRemoved)
	return &wrapper
}

func (wrapper *GoChanPaymentMessageQueueWrapper) GetOutcomeMessageQueue() notify.OutcomeMessageQueue {
	return wrapper.OutcomeMQ
}

func (wrapper *GoChanPaymentMessageQueueWrapper) GetRequestChangeMessageQueue(change notify.Change) notify.RequestChangeMessageQueue {
	if change < 0 || change >= notify.ChangeCnt {
		return nil
	}
	return wrapper.ChangeMQArray[change]
}
