package response

import (
	"time"

	"github.com/google/uuid"

	"tandaro-api/internal/usecase/queries"
)

type VehicleResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	PricePerHourCents int64     `json:"pricePerHourCents"`
	CapacityNote      string    `json:"capacityNote"`
	ImageURL          *string   `json:"imageUrl,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func FromVehicleView(v *queries.VehicleView) *VehicleResponse {
	return &VehicleResponse{
		ID:                v.ID,
		Name:              v.Name,
		Description:       v.Description,
		PricePerHourCents: v.PricePerHourCents,
		CapacityNote:      v.CapacityNote,
		ImageURL:          v.ImageURL,
		IsActive:          v.IsActive,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func FromVehicleViews(views []*queries.VehicleView) []*VehicleResponse {
	out := make([]*VehicleResponse, len(views))
	for i, v := range views {
		out[i] = FromVehicleView(v)
	}
	return out
}
