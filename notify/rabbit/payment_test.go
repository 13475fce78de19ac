package rabbit_test

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"splitsui/notify/notify"
	rabbitMQ "splitsui/notify/rabbit"
)

// getTestConnection dials the broker, skipping the test when none is
// reachable so the suite stays runnable without infrastructure.
func getTestConnection(t *testing.T) *amqp.Connection {
	t.Helper()
	url := rabbitMQ.CreateAmqpURL()
	conn, err := amqp.Dial(url)
	if err != nil {
		t.Skipf("RabbitMQ not reachable at %s: %v", url, err)
	}
	return conn
}

func receiveMsgWithTimeout[T any](tb testing.TB, ch <-chan T, timeout time.Duration) (T, bool) {
	tb.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			var zero T
			return zero, false
		}
		return msg, true
	case <-time.After(timeout):
		var zero T
		return zero, false
	}
}

func TestRabbitOutcomeQueueRoundTrip(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	q, err := rabbitMQ.NewRabbitOutcomeMessageQueue(conn)
	if err != nil {
		t.Fatalf("create queue: %v", err)
	}

	id, ch, err := q.Subscribe("0xaaa")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer q.DeSubscribe(id)

	msg := notify.OutcomeMessage{Address: "0xaaa", Kind: "Multi-Send", Digest: "tx1", Status: "success"}
	if err := q.Publish(msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, ok := receiveMsgWithTimeout(t, ch, 5*time.Second)
	if !ok {
		t.Fatal("expected a message")
	}
	if got != msg {
		t.Errorf("got %+v, want %+v", got, msg)
	}
}

func TestRabbitRequestChangeQueueFiltersAddress(t *testing.T) {
	conn := getTestConnection(t)
	defer conn.Close()

	q, err := rabbitMQ.NewRabbitRequestChangeMessageQueue(notify.ChangeUpdated, conn)
	if err != nil {
		t.Fatalf("create queue: %v", err)
	}
	if q.GetChange() != notify.ChangeUpdated {
		t.Errorf("change = %d", q.GetChange())
	}

	id, ch, err := q.Subscribe("0xaaa")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer q.DeSubscribe(id)

	if err := q.Publish(notify.RequestChangeMessage{Address: "0xbbb", RequestID: "0xr1", Change: notify.ChangeUpdated}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, ok := receiveMsgWithTimeout(t, ch, time.Second); ok {
		t.Error("received a message addressed to someone else")
	}
}
