package response

import (
	"time"

	"github.com/google/uuid"

	"tandaro-api/internal/usecase/queries"
)

type DriverApplicationResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	LicenseNumber string     `json:"licenseNumber"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	DecidedBy     *uuid.UUID `json:"decidedBy,omitempty"`
	DecidedAt     *time.Time `json:"decidedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func FromDriverApplicationView(v *queries.DriverApplicationView) *DriverApplicationResponse {
	return &DriverApplicationResponse{
		ID:            v.ID,
		Name:          v.Name,
		Email:         v.Email,
		Phone:         v.Phone,
		LicenseNumber: v.LicenseNumber,
		Message:       v.Message,
		Status:        v.Status,
		DecidedBy:     v.DecidedBy,
		DecidedAt:     v.DecidedAt,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func FromDriverApplicationViews(views []*queries.DriverApplicationView) []*DriverApplicationResponse {
	out := make([]*DriverApplicationResponse, len(views))
	for i, v := range views {
		out[i] = FromDriverApplicationView(v)
	}
	return out
}
