package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

// Subscriber is the read side of the SSE hub.
type Subscriber interface {
	Subscribe(topic string) (<-chan sse.Event, func())
	SubscriberCount(topic string) int
	TotalSubscribers() int
}

// StreamStats reports how many clients are listening.
type StreamStats struct {
	TeamSubscribers  int `json:"team_subscribers"`
	TotalSubscribers int `json:"total_subscribers"`
}

// EventsHandler streams attendance events. Managers receive the team topic,
// everyone else only their own events.
type EventsHandler interface {
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	hub        Subscriber
	jwtService jwt.Service
	now        Clock
}

func NewEventsHandler(hub Subscriber, jwtService jwt.Service, now Clock) EventsHandler {
	return &eventsHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
		now:        now,
	}
}

// GetSSEToken handles GET /events/token
func (h *eventsHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(identity.EmployeeID, identity.Role)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, auth.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stats handles GET /events/stats
func (h *eventsHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	response.Success(w, StreamStats{
		TeamSubscribers:  h.hub.SubscriberCount(sse.TopicTeam),
		TotalSubscribers: h.hub.TotalSubscribers(),
	})
}

// Stream handles GET /events/stream?token=
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token comes in the query string
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	identity, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	topic := identity.EmployeeID
	if identity.Role.CanManage() {
		topic = sse.TopicTeam
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(topic)
	defer cleanup()

	slog.Debug("SSE client connected", "employee_id", identity.EmployeeID, "topic", topic)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"topic\":%q}\n\n", topic)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode SSE event", "type", event.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", h.now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
