package request

import (
	"strings"
	"time"

	"tandaro-api/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	VehicleID        uuid.UUID `json:"vehicle_id" binding:"required"`
	StartTime        time.Time `json:"start_time" binding:"required"`
	DurationHours    float64   `json:"duration_hours" binding:"required,gt=0"`
	PickupLocation   string    `json:"pickup_location" binding:"required"`
	DeliveryLocation string    `json:"delivery_location" binding:"required"`
	Note             *string   `json:"note,omitempty"`
}

func (r *CreateBookingRequest) ToCommand() commands.CreateBookingRequest {
	note := ""
	if r.Note != nil {
		note = strings.TrimSpace(*r.Note)
	}
	return commands.CreateBookingRequest{
		VehicleID:        r.VehicleID,
		StartTime:        r.StartTime,
		DurationHours:    r.DurationHours,
		PickupLocation:   strings.TrimSpace(r.PickupLocation),
		DeliveryLocation: strings.TrimSpace(r.DeliveryLocation),
		Note:             note,
	}
}
