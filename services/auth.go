package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MRaysa/AI-chatbot-server/logger"
	"github.com/MRaysa/AI-chatbot-server/models"
)

// AuthService maps verified identities onto local user records.
type AuthService struct {
	verifier IdentityVerifier
	users    UserStore
}

func NewAuthService(verifier IdentityVerifier, users UserStore) *AuthService {
	return &AuthService{verifier: verifier, users: users}
}

// VerifyAndSyncUser verifies the ID token and creates the local user on
// first sight, or refreshes profile fields and the login timestamp on every
// later sight.
func (s *AuthService) VerifyAndSyncUser(ctx context.Context, idToken string) (*models.User, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("%w: id token is required", ErrInvalidInput)
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.users.GetUserByUID(ctx, identity.UID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if user == nil {
		user = &models.User{
			UID:         identity.UID,
			Email:       identity.Email,
			DisplayName: identity.DisplayName,
			PhotoURL:    identity.PhotoURL,
			Provider:    identity.Provider,
			Plan:        models.PlanFree,
			CreatedAt:   now,
			UpdatedAt:   now,
			LastLoginAt: now,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		logger.Get().Info("created user", zap.String("uid", user.UID), zap.String("provider", string(user.Provider)))
		return user, nil
	}

	updated := *user
	if identity.DisplayName != "" {
		updated.DisplayName = identity.DisplayName
	}
	if identity.PhotoURL != "" {
		updated.PhotoURL = identity.PhotoURL
	}
	updated.LastLoginAt = now
	updated.UpdatedAt = now

	if err := s.users.ReplaceUser(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *AuthService) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, uid)
	}
	return user, nil
}

// UpdateProfile sets the display name and/or avatar URL. At least one field
// must be provided.
func (s *AuthService) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) (*models.User, error) {
	if strings.TrimSpace(displayName) == "" && strings.TrimSpace(photoURL) == "" {
		return nil, fmt.Errorf("%w: at least one of displayName or photoURL is required", ErrInvalidInput)
	}

	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, uid)
	}

	updated := *user
	if displayName != "" {
		updated.DisplayName = displayName
	}
	if photoURL != "" {
		updated.PhotoURL = photoURL
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.users.ReplaceUser(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
