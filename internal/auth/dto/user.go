package dto

import (
	"time"

	"github.com/quizmentor/auth-service/internal/auth/domain"
)

// UserOutput is the profile shape returned to callers. It never carries the
// password hash or failure counters.
type UserOutput struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewUserOutput sanitizes a domain user for the wire.
func NewUserOutput(u *domain.User) *UserOutput {
	return &UserOutput{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		Status:    u.AccountStatus,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

type SessionOutput struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
