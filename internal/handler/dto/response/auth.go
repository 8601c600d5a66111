package response

import (
	"time"

	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
}

type RegisterResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func FromLoginResult(r *commands.LoginResult) *LoginResponse {
	return &LoginResponse{
		AccessToken: r.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   r.ExpiresIn,
		UserID:      r.UserID,
		Role:        r.Role.String(),
	}
}

func FromRegisterResult(r *commands.RegisterResult) *RegisterResponse {
	return &RegisterResponse{
		ID:    r.UserID,
		Email: r.Email,
		Role:  r.Role.String(),
	}
}

func FromAuthorizedUserView(v *queries.AuthorizedUserView) *UserResponse {
	return &UserResponse{
		ID:        v.ID,
		Email:     v.Email,
		Role:      v.Role,
		LastLogin: v.LastLogin,
		CreatedAt: v.CreatedAt,
	}
}
