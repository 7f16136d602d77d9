package notify

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-candidate-tracker/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestDispatchDecodesPayload(t *testing.T) {
	n := New(nil)

	var got Event
	n.Subscribe(func(ev Event) { got = ev })

	payload := `{"event":"insert","schema":"public","table":"candidates","row":{"id":"c1"}}`
	n.dispatch([]byte(payload))

	assert.Equal(t, "insert", got.Type)
	assert.Equal(t, "public", got.Schema)
	assert.Equal(t, "candidates", got.Table)
	assert.JSONEq(t, `{"id":"c1"}`, string(got.Row))
	assert.Equal(t, payload, string(got.Raw))
}

func TestDispatchDeliversOpaquePayload(t *testing.T) {
	n := New(nil)

	delivered := 0
	var got Event
	n.Subscribe(func(ev Event) {
		delivered++
		got = ev
	})

	n.dispatch([]byte("not json"))

	require.Equal(t, 1, delivered, "undecodable payloads still reach subscribers")
	assert.Equal(t, "not json", string(got.Raw))
	assert.Empty(t, got.Type)
}

func TestDispatchFansOut(t *testing.T) {
	n := New(nil)

	var mu sync.Mutex
	seen := map[int]int{}
	for i := 0; i < 3; i++ {
		i := i
		n.Subscribe(func(Event) {
			mu.Lock()
			seen[i]++
			mu.Unlock()
		})
	}

	n.dispatch([]byte(`{"event":"delete"}`))
	n.dispatch([]byte(`{"event":"update"}`))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 2, seen[i], "subscriber %d", i)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	n := New(nil)

	delivered := 0
	sub := n.Subscribe(func(Event) { delivered++ })

	n.dispatch([]byte(`{"event":"insert"}`))
	require.Equal(t, 1, delivered)

	sub.Cancel()
	sub.Cancel() // idempotent

	n.dispatch([]byte(`{"event":"insert"}`))
	assert.Equal(t, 1, delivered, "no delivery after Cancel")
}

func TestCancelWaitsForInflightDelivery(t *testing.T) {
	n := New(nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	finished := false

	sub := n.Subscribe(func(Event) {
		close(entered)
		<-release
		finished = true
	})

	go n.dispatch([]byte(`{"event":"insert"}`))
	<-entered

	cancelled := make(chan struct{})
	go func() {
		sub.Cancel()
		close(cancelled)
	}()

	select {
	case <-cancelled:
		t.Fatal("Cancel returned while a delivery was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("Cancel did not return after the delivery finished")
	}
	assert.True(t, finished)
}
