package v1

import (
	"io"

	"go-candidate-tracker/internal/notify"

	"github.com/gin-gonic/gin"
)

type EventsHandler struct {
	notifier *notify.Notifier
}

func NewEventsHandler(r *gin.RouterGroup, notifier *notify.Notifier) {
	handler := &EventsHandler{notifier: notifier}
	r.GET("/candidates/events", handler.Stream)
}

// Stream bridges the change channel to the client as server-sent events.
// Delivery is at-most-once with no replay: events arriving faster than the
// client drains them are dropped, and clients must treat each event as an
// invalidation hint followed by a refetch, never as the data itself.
func (h *EventsHandler) Stream(c *gin.Context) {
	events := make(chan notify.Event, 16)

	sub := h.notifier.Subscribe(func(ev notify.Event) {
		select {
		case events <- ev:
		default: // slow client, drop
		}
	})
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case ev := <-events:
			c.SSEvent("change", string(ev.Raw))
			return true
		}
	})
}
