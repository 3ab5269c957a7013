package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lettercounsel/lettercounsel/internal/config"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/nedpals/supabase-go"
)

type supabaseAuth struct {
	authConfig config.AuthConfig
	client     *supabase.Client
	logger     *logger.Logger
}

func NewSupabaseAuth(cfg *config.Configuration, log *logger.Logger) Provider {
	client := supabase.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	return &supabaseAuth{
		authConfig: cfg.Auth,
		client:     client,
		logger:     log,
	}
}

func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint("Unexpected signing method").
				WithReportableDetails(map[string]interface{}{
					"signing_method": token.Method.Alg(),
				}).
				Mark(ierr.ErrPermissionDenied)
		}
		return []byte(s.authConfig.Secret), nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}

	email, ok := claims["email"].(string)
	if !ok {
		return nil, ierr.NewError("token missing email").
			WithHint("Token missing email").
			Mark(ierr.ErrPermissionDenied)
	}

	// Role rides in app_metadata; tokens minted before a role was assigned
	// fall back to subscriber.
	role := types.UserRoleSubscriber
	if appMetadata, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if r, ok := appMetadata["role"].(string); ok && types.UserRole(r).Valid() {
			role = types.UserRole(r)
		}
	}

	return &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
	}, nil
}

func (s *supabaseAuth) AssignRole(ctx context.Context, userID string, role types.UserRole) error {
	if !role.Valid() {
		return ierr.NewError("invalid role").
			WithHint("Unknown user role").
			WithReportableDetails(map[string]interface{}{
				"role": role,
			}).
			Mark(ierr.ErrValidation)
	}

	params := supabase.AdminUserParams{
		AppMetadata: map[string]interface{}{
			"role": string(role),
		},
	}

	resp, err := s.client.Admin.UpdateUser(ctx, userID, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to assign role to user").
			Mark(ierr.ErrSystem)
	}

	s.logger.Debugw("assigned role to user",
		"user_id", userID,
		"role", role,
		"response", resp,
	)
	return nil
}
