package firebase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/MRaysa/AI-chatbot-server/config"
	"github.com/MRaysa/AI-chatbot-server/logger"
	"github.com/MRaysa/AI-chatbot-server/models"
)

// Verifier validates Firebase ID tokens and resolves the account they
// belong to.
type Verifier struct {
	client *auth.Client
}

// NewVerifier initializes the Firebase Admin SDK and returns a token
// verifier backed by its Auth client.
func NewVerifier(ctx context.Context, cfg *config.Config) (*Verifier, error) {
	var opts []option.ClientOption

	switch {
	case cfg.GoogleApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleApplicationCredentials))
	case cfg.FirebaseServiceAccountJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %v", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase auth client: %v", err)
	}

	logger.Get().Info("firebase auth client initialized")
	return &Verifier{client: client}, nil
}

// Verify checks an ID token and returns the verified identity, including
// profile fields fetched from the Firebase user record.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("error verifying id token: %v", err)
	}

	record, err := v.client.GetUser(ctx, token.UID)
	if err != nil {
		return nil, fmt.Errorf("error fetching firebase user %s: %v", token.UID, err)
	}

	identity := &models.Identity{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
		Provider:    providerFor(record.ProviderUserInfo),
	}
	return identity, nil
}

func providerFor(infos []*auth.UserInfo) models.AuthProvider {
	for _, info := range infos {
		if strings.Contains(info.ProviderID, "google") {
			return models.AuthProviderGoogle
		}
	}
	return models.AuthProviderEmail
}
