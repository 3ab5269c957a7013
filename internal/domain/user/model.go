package user

import (
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// User mirrors the identity provider's user with the role this system
// authorizes against.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Role     types.UserRole `json:"role"`

	types.BaseModel
}
