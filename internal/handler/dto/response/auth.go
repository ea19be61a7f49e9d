package response

import (
	"github.com/google/uuid"

	"tandaro-api/internal/usecase/queries"
)

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

type RegisterResponse struct {
	ID uuid.UUID `json:"id"`
}

type CurrentUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Role  string    `json:"role"`
}

func FromAuthorizedUserView(v *queries.AuthorizedUserView) *CurrentUserResponse {
	return &CurrentUserResponse{
		ID:    v.ID,
		Email: v.Email,
		Name:  v.Name,
		Phone: v.Phone,
		Role:  v.Role,
	}
}
