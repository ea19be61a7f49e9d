package request

import (
	"strings"

	"tandaro-api/internal/usecase/commands"
)

type ApplyAsDriverRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
	Message       string `json:"message"`
}

func (r *ApplyAsDriverRequest) ToCommand() commands.ApplyAsDriverRequest {
	return commands.ApplyAsDriverRequest{
		Name:          strings.TrimSpace(r.Name),
		Email:         strings.TrimSpace(r.Email),
		Phone:         strings.TrimSpace(r.Phone),
		LicenseNumber: strings.TrimSpace(r.LicenseNumber),
		Message:       strings.TrimSpace(r.Message),
	}
}
