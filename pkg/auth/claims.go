package auth

import (
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a browser token.
type AccessTokenPayload struct {
	JTI   string
	Email string
	Role  enums.Role
}

// AccessTokenClaims is the typed JWT handed to the browser. The jti doubles as the
// Redis session key; the remote API token never leaves the server.
type AccessTokenClaims struct {
	Email string     `json:"email"`
	Role  enums.Role `json:"role"`
	jwt.RegisteredClaims
}
