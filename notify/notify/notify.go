package notify

import (
	"github.com/google/uuid"

	"splitsui/ledger/ledger"
)

// TopicProvider is anything that can name the address its message
// belongs to. Subscriptions are keyed by address so one user's stream
// never carries another user's events.
type TopicProvider interface {
	GetTopic() ledger.Address
}

type PaymentMessageQueueWrapper interface {
	GetOutcomeMessageQueue() OutcomeMessageQueue
	GetRequestChangeMessageQueue(change Change) RequestChangeMessageQueue
}

type OutcomeMessageQueue interface {
	Publish(msg OutcomeMessage) error
	Subscribe(addr ledger.Address) (uuid.UUID, <-chan OutcomeMessage, error)
	DeSubscribe(id uuid.UUID) error
}

type RequestChangeMessageQueue interface {
	GetChange() Change
	Publish(msg RequestChangeMessage) error
	Subscribe(addr ledger.Address) (uuid.UUID, <-chan RequestChangeMessage, error)
	DeSubscribe(id uuid.UUID) error
}
