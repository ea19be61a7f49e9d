package request

import (
	"tandaro-api/internal/usecase/commands"
)

type CreateVehicleRequest struct {
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	PricePerHourCents int64   `json:"price_per_hour_cents" binding:"required,gte=0"`
	CapacityNote      string  `json:"capacity_note"`
	ImageURL          *string `json:"image_url,omitempty"`
}

func (r *CreateVehicleRequest) ToCommand() commands.CreateVehicleRequest {
	return commands.CreateVehicleRequest{
		Name:              r.Name,
		Description:       r.Description,
		PricePerHourCents: r.PricePerHourCents,
		CapacityNote:      r.CapacityNote,
		ImageURL:          r.ImageURL,
	}
}

// UpdateVehicleRequest is a partial update: absent fields keep their value.
type UpdateVehicleRequest struct {
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	PricePerHourCents *int64  `json:"price_per_hour_cents,omitempty" binding:"omitempty,gte=0"`
	CapacityNote      *string `json:"capacity_note,omitempty"`
	ImageURL          *string `json:"image_url,omitempty"`
	IsActive          *bool   `json:"is_active,omitempty"`
}

func (r *UpdateVehicleRequest) ToCommand() commands.UpdateVehicleRequest {
	return commands.UpdateVehicleRequest{
		Name:              r.Name,
		Description:       r.Description,
		PricePerHourCents: r.PricePerHourCents,
		CapacityNote:      r.CapacityNote,
		ImageURL:          r.ImageURL,
		IsActive:          r.IsActive,
	}
}
