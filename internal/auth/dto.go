package auth

import (
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the browser token. The remote API token stays server side.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Email       string     `json:"email"`
	Role        enums.Role `json:"role"`
}

// Profile is the signed-in user as shown by /auth/me.
type Profile struct {
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
	IssuedAt time.Time  `json:"issued_at"`
}
