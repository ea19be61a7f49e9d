package response

import (
	"github.com/google/uuid"

	"tandaro-api/internal/usecase/queries"
)

type DriverResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

func FromDriverViews(views []*queries.DriverView) []*DriverResponse {
	out := make([]*DriverResponse, len(views))
	for i, v := range views {
		out[i] = &DriverResponse{ID: v.ID, Name: v.Name, Email: v.Email, Phone: v.Phone}
	}
	return out
}

// BulkAssignResponse reports a partial outcome: assigned and failed
// reservations in one body.
type BulkAssignResponse struct {
	Assigned []uuid.UUID         `json:"assigned"`
	Failed   []BulkAssignFailure `json:"failed"`
}

type BulkAssignFailure struct {
	ReservationID uuid.UUID `json:"reservationId"`
	Reason        string    `json:"reason"`
}
