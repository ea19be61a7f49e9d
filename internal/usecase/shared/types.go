package shared

import (
	"time"

	"github.com/google/uuid"
)

const (
	IdemStatusProcessing = "processing"
	IdemStatusCompleted  = "completed"
)

// IdempotencyRecord mirrors one row of idempotency_keys.
type IdempotencyRecord struct {
	Key           uuid.UUID
	UserID        uuid.UUID
	Endpoint      string
	RequestHash   string
	Status        string
	ReservationID *uuid.UUID
	ExpiresAt     time.Time
}

func (r IdempotencyRecord) IsProcessing() bool {
	return r.Status == IdemStatusProcessing
}

func (r IdempotencyRecord) IsCompleted() bool {
	return r.Status == IdemStatusCompleted
}
