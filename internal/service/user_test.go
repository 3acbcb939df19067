package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/taskauth-api/internal/auth"
	"github.com/BuzzLyutic/taskauth-api/internal/model"
	"github.com/BuzzLyutic/taskauth-api/internal/repo"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newUserService(t *testing.T) (*UserService, *repo.MemoryStore) {
	t.Helper()
	store := repo.NewMemoryStore()
	tokens := auth.NewTokenService(testSecret, 30*time.Minute)
	return NewUserService(store, auth.NewBcryptHasher(bcrypt.MinCost), tokens, nil), store
}

func TestUserService_Register(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  A@X.com ", "pw123456")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "pw123456", u.HashedPassword)
	assert.NotEmpty(t, u.HashedPassword)

	_, err = svc.Register(ctx, "a@x.com", "another-pw")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = svc.Register(ctx, "long@x.com", strings.Repeat("p", 73))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, "   ", "pw123456")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		tok, err := svc.Login(ctx, "a@x.com", "pw123456")
		require.NoError(t, err)
		assert.NotEmpty(t, tok.AccessToken)
		assert.Equal(t, "bearer", tok.TokenType)
		assert.Equal(t, 1800, tok.ExpiresIn)
	})

	t.Run("wrong password", func(t *testing.T) {
		tok, err := svc.Login(ctx, "a@x.com", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Empty(t, tok.AccessToken)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_Resolve(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	b, err := svc.Register(ctx, "b@x.com", "pw123456")
	require.NoError(t, err)

	tokA, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	tokB, err := svc.Login(ctx, "b@x.com", "pw123456")
	require.NoError(t, err)

	gotA, err := svc.Resolve(ctx, tokA.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, a.ID, gotA.ID)

	gotB, err := svc.Resolve(ctx, tokB.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, b.ID, gotB.ID)
	assert.NotEqual(t, gotA.ID, gotB.ID)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "garbage")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("subject without account", func(t *testing.T) {
		ghost, err := svc.tokens.Issue("ghost@x.com", 0)
		require.NoError(t, err)
		_, err = svc.Resolve(ctx, ghost)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("inactive user", func(t *testing.T) {
		_, err := store.CreateUser(ctx, model.User{Email: "off@x.com", HashedPassword: "x", IsActive: false})
		require.NoError(t, err)
		tok, err := svc.tokens.Issue("off@x.com", 0)
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, tok)
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}
