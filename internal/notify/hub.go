package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"tandaro-api/internal/pkg/config"

	"github.com/google/uuid"
)

// Event is the wire shape of a driver push message.
type Event struct {
	Type          string     `json:"type"`
	ReservationID uuid.UUID  `json:"reservation_id"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	SentAt        time.Time  `json:"sent_at"`
}

const (
	EventJobAssigned   = "job_assigned"
	EventJobUnassigned = "job_unassigned"
)

// Hub tracks the websocket connections of logged-in drivers. One driver may
// hold several connections (phone and tablet); events fan out to all of them.
type Hub struct {
	cfg config.NotifyConfig

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

func NewHub(cfg config.NotifyConfig) *Hub {
	return &Hub{
		cfg:     cfg,
		clients: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.driverID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.driverID] = set
	}
	set[c] = struct{}{}

	slog.Info("driver connected", "driver_id", c.driverID, "connections", len(set))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.driverID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.driverID)
	}

	slog.Info("driver disconnected", "driver_id", c.driverID)
}

// NotifyAssigned implements commands.AssignmentNotifier.
func (h *Hub) NotifyAssigned(driverID, reservationID uuid.UUID, startTime time.Time) {
	h.push(driverID, Event{
		Type:          EventJobAssigned,
		ReservationID: reservationID,
		StartTime:     &startTime,
		SentAt:        time.Now(),
	})
}

func (h *Hub) NotifyUnassigned(driverID, reservationID uuid.UUID) {
	h.push(driverID, Event{
		Type:          EventJobUnassigned,
		ReservationID: reservationID,
		SentAt:        time.Now(),
	})
}

// push never blocks the caller: a client whose buffer is full is skipped,
// the driver's job list stays correct via the normal fetch path.
func (h *Hub) push(driverID uuid.UUID, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal push event", "error", err.Error())
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[driverID] {
		select {
		case c.send <- data:
		default:
			slog.Warn("driver push buffer full, dropping event",
				"driver_id", driverID,
				"event", event.Type)
		}
	}
}
