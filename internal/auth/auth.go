package auth

import (
	"context"

	"github.com/lettercounsel/lettercounsel/internal/types"
)

// Claims is the identity extracted from a validated access token.
type Claims struct {
	UserID string
	Email  string
	Role   types.UserRole
}

// Provider validates access tokens issued by the identity provider.
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
	// AssignRole writes the role into the provider's user metadata so it
	// rides along in every subsequent token.
	AssignRole(ctx context.Context, userID string, role types.UserRole) error
}
