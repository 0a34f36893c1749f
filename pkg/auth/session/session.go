package session

import (
	"strings"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/enums"
)

// Session is the signed-in user as seen by every service call. It is passed by value
// and never mutated after login.
type Session struct {
	AccessID string     `json:"access_id"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
	APIToken string     `json:"api_token"`
	IssuedAt time.Time  `json:"issued_at"`
}

// Anonymous is the zero session used for logged-out visitors.
var Anonymous = Session{}

// Identity is the partition key for per-user state (cart, toasts).
func (s Session) Identity() string {
	return strings.TrimSpace(s.Email)
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return s.Identity() != ""
}

// Bearer returns the remote API token, empty for anonymous sessions.
func (s Session) Bearer() string {
	return s.APIToken
}

func (s Session) HasRole(roles ...enums.Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
