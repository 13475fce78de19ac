package web

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"splitsui/ledger/ledger"
	"splitsui/notify/notify"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// allow all origins for WebSocket connections
		// should only in dev
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// streamEvent is the envelope written to websocket clients. Event is
// "outcome" for submission results and "request.<change>" for
// reconciliation changes.
type streamEvent struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// streamEvents upgrades the connection and forwards every outcome and
// request-change message addressed to the path address until the client
// disconnects.
func (h *handler) streamEvents(c *gin.Context) {
	if h.svc.Notifier == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notifications not configured"})
		return
	}
	addr := ledger.Address(c.Param("address"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.svc.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := h.subscribeAll(ctx, addr)

	// the read pump only exists to notice the client going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			h.svc.Log.Debug("websocket write failed", zap.String("address", string(addr)), zap.Error(err))
			return
		}
	}
}

// subscribeAll attaches one processor per queue and merges their output
// into a single stream that closes once every processor has exited.
func (h *handler) subscribeAll(ctx context.Context, addr ledger.Address) <-chan streamEvent {
	sources := make([]chan streamEvent, 0, notify.ChangeCnt+1)

	outcomeCh := make(chan streamEvent)
	notify.SubscribeProcessor(ctx, addr, h.svc.Notifier.GetOutcomeMessageQueue(), outcomeToEvent, outcomeCh)
	sources = append(sources, outcomeCh)

	for change := notify.Change(0); change < notify.ChangeCnt; change++ {
		queue := h.svc.Notifier.GetRequestChangeMessageQueue(change)
		if queue == nil {
			continue
		}
		ch := make(chan streamEvent)
		notify.SubscribeProcessor(ctx, addr, queue, changeToEvent, ch)
		sources = append(sources, ch)
	}

	merged := make(chan streamEvent)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src <-chan streamEvent) {
			defer wg.Done()
			for ev := range src {
				select {
				case merged <- ev:
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged
}

func outcomeToEvent(msg notify.OutcomeMessage) (streamEvent, bool, error) {
	if msg.Address == "" {
		return streamEvent{}, true, nil
	}
	return streamEvent{Event: "outcome", Payload: msg}, false, nil
}

func changeToEvent(msg notify.RequestChangeMessage) (streamEvent, bool, error) {
	if msg.RequestID == "" {
		return streamEvent{}, true, nil
	}
	return streamEvent{Event: "request." + msg.Change.String(), Payload: msg}, false, nil
}
