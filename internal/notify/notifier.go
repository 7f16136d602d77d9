package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-candidate-tracker/pkg/logger"
)

// Channel is the single logical topic carrying candidate collection
// mutations. A database trigger publishes one payload per row change.
const Channel = "candidates_changes"

// Event is the decoded change payload. The shape is owned by the trigger;
// subscribers must treat it purely as an "invalidate and refetch" hint, never
// as the source of truth for the changed data. Raw always carries the
// payload bytes even when decoding fails.
type Event struct {
	Type   string          `json:"event"`
	Schema string          `json:"schema"`
	Table  string          `json:"table"`
	Row    json.RawMessage `json:"row"`
	Raw    []byte          `json:"-"`
}

// Notifier bridges Postgres LISTEN/NOTIFY to in-process subscribers.
// Delivery is best-effort and at-most-once: events published while the
// listening connection is down are lost, and there is no replay.
type Notifier struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	subs   map[int64]*Subscription
	nextID int64

	cancel context.CancelFunc
	done   chan struct{}
}

// Subscription is a handle for one registered callback. Cancel is
// idempotent and synchronous: once it returns, the callback will not be
// invoked again, and an in-flight delivery has finished.
type Subscription struct {
	mu     sync.Mutex
	closed bool
	cb     func(Event)
	remove func()
}

func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.remove()
}

// deliver holds the subscription lock across the callback so Cancel cannot
// return while a delivery is still running.
func (s *Subscription) deliver(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cb(ev)
}

func New(pool *pgxpool.Pool) *Notifier {
	return &Notifier{
		pool: pool,
		subs: make(map[int64]*Subscription),
		done: make(chan struct{}),
	}
}

// Start opens the listening loop in a background goroutine. The loop keeps
// a dedicated connection on LISTEN and reconnects with a short backoff when
// it drops.
func (n *Notifier) Start(ctx context.Context) {
	ctx, n.cancel = context.WithCancel(ctx)
	go n.listen(ctx)
}

// Close stops the listening loop and waits for it to exit. Existing
// subscriptions stay registered but receive no further events.
func (n *Notifier) Close() {
	if n.cancel != nil {
		n.cancel()
	}
	<-n.done
}

// Subscribe registers a callback invoked for every event on the channel,
// regardless of event shape. The channel is not owner-filtered; filtering
// belongs to the re-read that follows the hint.
func (n *Notifier) Subscribe(cb func(Event)) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	sub := &Subscription{cb: cb}
	sub.remove = func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
	n.subs[id] = sub
	return sub
}

func (n *Notifier) listen(ctx context.Context) {
	defer close(n.done)

	for {
		if err := n.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error("change listener disconnected, retrying", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (n *Notifier) listenOnce(ctx context.Context) error {
	conn, err := n.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		n.dispatch([]byte(notification.Payload))
	}
}

func (n *Notifier) dispatch(payload []byte) {
	ev := Event{Raw: payload}
	if err := json.Unmarshal(payload, &ev); err != nil {
		// Opaque payloads are still delivered as a bare hint.
		logger.Log.Warn("undecodable change payload", "error", err)
	}

	n.mu.Lock()
	subs := make([]*Subscription, 0, len(n.subs))
	for _, sub := range n.subs {
		subs = append(subs, sub)
	}
	n.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(ev)
	}
}
