package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"farmagro-system/internal/services/events"
)

type EventsHTTPHandler struct {
	publisher *events.Publisher
	redis     *redis.Client
}

func NewEventsHTTPHandler(redisClient *redis.Client) *EventsHTTPHandler {
	return &EventsHTTPHandler{
		publisher: events.NewPublisher(redisClient),
		redis:     redisClient,
	}
}

// Stream relays change events to the client over SSE. ?tables=bills,payments
// narrows the subscription; without it the client gets every table.
func (s *EventsHTTPHandler) Stream(c *gin.Context) {
	if s.redis == nil {
		fail(c, http.StatusServiceUnavailable, "Event streaming is not available")
		return
	}

	var tables []string
	if raw := c.Query("tables"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}

	sub := s.publisher.Subscribe(c.Request.Context(), tables...)
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ch := sub.Channel()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
