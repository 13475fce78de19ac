package notify

import (
	"context"

	"github.com/google/uuid"

	"splitsui/ledger/ledger"
)

// Subscriber is any queue a SubscribeProcessor can attach to. M is the
// message type the queue carries.
type Subscriber[M any] interface {
	Subscribe(addr ledger.Address) (uuid.UUID, <-chan M, error)
	DeSubscribe(id uuid.UUID) error
}

// SubscribeProcessor subscribes to service on the given address, feeds
// every message through transformFunc and forwards the results to
// outputStream until the context ends or the subscription closes.
// It owns outputStream and closes it on exit.
func SubscribeProcessor[S Subscriber[M], M any, O any](
	ctx context.Context,
	addr ledger.Address,
	service S,
	transformFunc func(msg M) (O, bool, error),
	outputStream chan<- O,
) {
	go func() {
		uid, inputCh, err := service.Subscribe(addr)
		if err != nil {
			close(outputStream)
			return
		}

		defer func() {
			_ = service.DeSubscribe(uid)
			close(outputStream)
		}()

		for {
			select {
			case msg, ok := <-inputCh:
				if !ok {
					return
				}

				output, skip, err := transformFunc(msg)
				if err != nil || skip {
					continue
				}

				select {
				case outputStream <- output:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}
