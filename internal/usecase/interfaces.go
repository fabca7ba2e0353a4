package usecase

import (
	"context"

	"persianconnect/internal/infrastructure/firebase"
)

type IdentityClient interface {
	VerifyToken(ctx context.Context, token string) (*firebase.Identity, error)
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SignInWithEmailPassword(email, password string) (string, error)
}
