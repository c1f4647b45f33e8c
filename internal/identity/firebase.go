package identity

import (
	"context"
	"fmt"

	"rewear/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FirebaseVerifier 以 Firebase Admin SDK 驗證 ID token；
// 設定 FIREBASE_AUTH_EMULATOR_HOST 時 SDK 會自動改連 emulator
type FirebaseVerifier struct {
	client *auth.Client
	logger *zap.Logger
}

func NewFirebaseAuthClient(logger *zap.Logger, conf *config.Configuration) (*auth.Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if conf.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Firebase.CredentialsFile))
	}
	var firebaseConfig *firebase.Config
	if conf.Firebase.ProjectID != "" {
		firebaseConfig = &firebase.Config{ProjectID: conf.Firebase.ProjectID}
	}

	app, err := firebase.NewApp(ctx, firebaseConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}
	logger.Info("Firebase auth client ready", zap.String("projectId", conf.Firebase.ProjectID))
	return client, nil
}

func NewFirebaseVerifier(logger *zap.Logger, client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, logger: logger}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		v.logger.Debug("verify id token failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromClaims(decoded.UID, decoded.Claims), nil
}

func (v *FirebaseVerifier) LookupByEmail(ctx context.Context, email string) (*Identity, error) {
	record, err := v.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &Identity{
		Subject:       record.UID,
		Email:         record.Email,
		EmailVerified: record.EmailVerified,
		Name:          record.DisplayName,
		Picture:       record.PhotoURL,
	}, nil
}

func identityFromClaims(uid string, claims map[string]interface{}) *Identity {
	id := &Identity{Subject: uid}
	if v, ok := claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := claims["email_verified"].(bool); ok {
		id.EmailVerified = v
	}
	if v, ok := claims["name"].(string); ok {
		id.Name = v
	}
	if v, ok := claims["picture"].(string); ok {
		id.Picture = v
	}
	return id
}
