package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/domain/repository"
	"persianconnect/internal/infrastructure/firebase"
	"persianconnect/pkg/errors"
	"persianconnect/pkg/logger"
)

// AuthUseCase reconciles externally verified identities with locally cached
// profiles, including allowlist-based admin promotion.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	identity  IdentityClient
	allowlist map[string]bool
}

func NewAuthUseCase(userRepo repository.UserRepository, identity IdentityClient, allowlist []string) *AuthUseCase {
	allowed := make(map[string]bool, len(allowlist))
	for _, entry := range allowlist {
		allowed[strings.ToLower(entry)] = true
	}

	return &AuthUseCase{
		userRepo:  userRepo,
		identity:  identity,
		allowlist: allowed,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Username string
	Name     string
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// Authenticate resolves a bearer credential to a synchronized profile.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, errors.Unauthorized("Authorization required", nil)
	}

	identity, err := uc.identity.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	return uc.SyncProfile(ctx, identity)
}

// SyncProfile lazily creates the profile on first sight of an identity and
// re-applies allowlist promotion on every call. It is idempotent and safe to
// run unconditionally. Storage failures degrade to unauthenticated rather
// than surfacing internals.
func (uc *AuthUseCase) SyncProfile(ctx context.Context, identity *firebase.Identity) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, identity.UID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			user, cerr := uc.createProfile(ctx, identity, "", "")
			if cerr != nil {
				return nil, errors.Unauthorized("Could not create profile", cerr)
			}
			return user, nil
		}
		logger.Error("Profile lookup failed for %s, treating as unauthenticated: %v", identity.UID, err)
		return nil, errors.Unauthorized("Could not resolve profile", err)
	}

	if uc.allowlisted(identity) && user.Role != entity.RoleAdmin {
		user.Role = entity.RoleAdmin
		user.UpdatedAt = time.Now()
		if err := uc.userRepo.Update(ctx, user); err != nil {
			// Promotion is retried on the next request anyway.
			logger.Error("Failed to persist admin promotion for %s: %v", user.ID, err)
		} else {
			logger.Info("Promoted %s to admin via allowlist", user.ID)
		}
	}

	return user, nil
}

func (uc *AuthUseCase) createProfile(ctx context.Context, identity *firebase.Identity, preferredUsername, name string) (*entity.User, error) {
	username := preferredUsername
	if username == "" {
		derived, err := uc.deriveUsername(ctx, identity)
		if err != nil {
			return nil, err
		}
		username = derived
	}

	role := entity.RoleUser
	if uc.allowlisted(identity) {
		role = entity.RoleAdmin
	}

	now := time.Now()
	user := &entity.User{
		ID:        identity.UID,
		Email:     strings.ToLower(identity.Email),
		Username:  username,
		Name:      name,
		Role:      role,
		Provider:  identity.Provider,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		logger.Error("Failed to persist new profile for %s: %v", identity.UID, err)
		return nil, errors.Internal("Failed to create profile", err)
	}

	logger.Info("Created profile %s (username %s, role %s)", user.ID, user.Username, user.Role)
	return user, nil
}

// deriveUsername takes the email local part and disambiguates collisions with
// a short random suffix checked against the username lookup key.
func (uc *AuthUseCase) deriveUsername(ctx context.Context, identity *firebase.Identity) (string, error) {
	base := strings.ToLower(strings.SplitN(identity.Email, "@", 2)[0])
	base = sanitizeUsername(base)
	if base == "" {
		base = "user"
	}

	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		_, err := uc.userRepo.GetByUsername(ctx, candidate)
		if errors.Is(err, "NOT_FOUND") {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, "NOT_FOUND") {
			return "", errors.Internal("Failed to check username availability", err)
		}
		candidate = base + "_" + uuid.NewString()[:4]
	}
	// Five random collisions in a row is not a real scenario; take the last.
	return candidate, nil
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (uc *AuthUseCase) allowlisted(identity *firebase.Identity) bool {
	if identity.Email != "" && uc.allowlist[strings.ToLower(identity.Email)] {
		return true
	}
	return uc.allowlist[strings.ToLower(identity.UID)]
}

// Register creates the identity with the auth provider and bootstraps the
// local profile in one call.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if existing, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, errors.Conflict("Email already in use")
	}
	if input.Username != "" {
		if existing, err := uc.userRepo.GetByUsername(ctx, input.Username); err == nil && existing != nil {
			return nil, errors.Conflict("Username already in use")
		}
	}

	uid, err := uc.identity.CreateUser(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		return nil, errors.Upstream("Failed to create user with authentication provider", err)
	}

	identity := &firebase.Identity{UID: uid, Email: input.Email, Provider: "password"}
	user, err := uc.createProfile(ctx, identity, input.Username, input.Name)
	if err != nil {
		return nil, err
	}

	token, err := uc.identity.SignInWithEmailPassword(input.Email, input.Password)
	if err != nil {
		return nil, errors.Upstream("Failed to generate authentication token", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	token, err := uc.identity.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	user, err := uc.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	if user.Blocked {
		return nil, errors.Forbidden("Account is blocked", nil)
	}

	return &AuthResult{User: user, Token: token}, nil
}

type UpdateProfileInput struct {
	Name string
}

// UpdateProfile changes the mutable profile fields; identity, role and
// lookup-keyed fields stay untouched.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
