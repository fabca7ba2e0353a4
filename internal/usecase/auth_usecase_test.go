package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persianconnect/internal/domain/entity"
	"persianconnect/internal/infrastructure/firebase"
)

func TestAuthenticateCreatesProfileOnFirstSight(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	identity := newFakeIdentityClient()
	uc := NewAuthUseCase(r.users, identity, nil)

	identity.register("tok", &firebase.Identity{
		UID:      "uid-1",
		Email:    "New.Seller@Example.com",
		Provider: "google.com",
	})

	user, err := uc.Authenticate(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.ID)
	assert.Equal(t, "new.seller@example.com", user.Email)
	assert.Equal(t, "new.seller", user.Username)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.Equal(t, "google.com", user.Provider)

	// Second call resolves the same stored profile instead of recreating it.
	again, err := uc.Authenticate(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, user.Username, again.Username)
}

func TestAuthenticateRejectsMissingOrInvalidToken(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	uc := NewAuthUseCase(r.users, newFakeIdentityClient(), nil)

	_, err := uc.Authenticate(ctx, "")
	assert.True(t, isCode(err, "UNAUTHORIZED"))

	_, err = uc.Authenticate(ctx, "garbage")
	assert.True(t, isCode(err, "UNAUTHORIZED"))
}

func TestSyncProfilePromotesAllowlistedUser(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	identity := newFakeIdentityClient()
	uc := NewAuthUseCase(r.users, identity, []string{"Boss@Example.com"})

	identity.register("tok", &firebase.Identity{
		UID:      "uid-boss",
		Email:    "boss@example.com",
		Provider: "password",
	})

	user, err := uc.Authenticate(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)
}

func TestSyncProfilePromotesExistingUserOnLaterAllowlisting(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	identity := newFakeIdentityClient()

	// Profile created before the allowlist entry existed.
	r.seedUser(ctx, "uid-late", "late@example.com", "late", entity.RoleUser)

	uc := NewAuthUseCase(r.users, identity, []string{"uid-late"})
	identity.register("tok", &firebase.Identity{UID: "uid-late", Email: "late@example.com"})

	user, err := uc.Authenticate(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)

	stored, err := r.users.GetByID(ctx, "uid-late")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, stored.Role)
}

func TestSyncProfileDisambiguatesUsernameCollision(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	identity := newFakeIdentityClient()
	uc := NewAuthUseCase(r.users, identity, nil)

	r.seedUser(ctx, "uid-existing", "ali@other.com", "ali", entity.RoleUser)

	identity.register("tok", &firebase.Identity{UID: "uid-2", Email: "ali@example.com"})

	user, err := uc.Authenticate(ctx, "tok")
	require.NoError(t, err)
	assert.NotEqual(t, "ali", user.Username)
	assert.Contains(t, user.Username, "ali_")
}

func TestRegisterRejectsDuplicateEmailAndUsername(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	identity := newFakeIdentityClient()
	uc := NewAuthUseCase(r.users, identity, nil)

	r.seedUser(ctx, "uid-1", "taken@example.com", "taken", entity.RoleUser)

	_, err := uc.Register(ctx, RegisterInput{
		Email:    "taken@example.com",
		Password: "secret123",
		Username: "fresh",
	})
	require.Error(t, err)
	assert.True(t, isCode(err, "CONFLICT"))

	_, err = uc.Register(ctx, RegisterInput{
		Email:    "fresh@example.com",
		Password: "secret123",
		Username: "taken",
	})
	require.Error(t, err)
	assert.True(t, isCode(err, "CONFLICT"))
}

func TestRegisterCreatesProfileAndReturnsToken(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	identity := newFakeIdentityClient()
	uc := NewAuthUseCase(r.users, identity, nil)

	result, err := uc.Register(ctx, RegisterInput{
		Email:    "seller@example.com",
		Password: "secret123",
		Username: "seller",
		Name:     "Sara",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "seller", result.User.Username)
	assert.Equal(t, "Sara", result.User.Name)
	assert.Equal(t, "password", result.User.Provider)

	stored, err := r.users.GetByUsername(ctx, "seller")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, stored.ID)
}

func TestLoginRejectsBlockedUser(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	identity := newFakeIdentityClient()
	uc := NewAuthUseCase(r.users, identity, nil)

	_, err := uc.Register(ctx, RegisterInput{
		Email:    "blocked@example.com",
		Password: "secret123",
		Username: "blocked",
	})
	require.NoError(t, err)

	user, err := r.users.GetByUsername(ctx, "blocked")
	require.NoError(t, err)
	user.Blocked = true
	require.NoError(t, r.users.Update(ctx, user))

	_, err = uc.Login(ctx, "blocked@example.com", "secret123")
	require.Error(t, err)
	assert.True(t, isCode(err, "FORBIDDEN"))
}

func TestUpdateProfileChangesOnlyMutableFields(t *testing.T) {
	ctx := context.Background()
	r := newRepos()
	uc := NewAuthUseCase(r.users, newFakeIdentityClient(), nil)

	seeded := r.seedUser(ctx, "uid-1", "seller@example.com", "seller", entity.RoleUser)

	updated, err := uc.UpdateProfile(ctx, seeded.ID, UpdateProfileInput{Name: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, seeded.Email, updated.Email)
	assert.Equal(t, seeded.Username, updated.Username)
	assert.Equal(t, seeded.Role, updated.Role)
}
