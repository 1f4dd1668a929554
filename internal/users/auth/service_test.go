// Copyright (c) 2026 Libris. All rights reserved.
// Author: dev@libris.app

package auth_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libris-app/libris/internal/platform/apperr"
	"github.com/libris-app/libris/internal/platform/sec"
	"github.com/libris-app/libris/internal/users/auth"
)

// # In-Memory Fakes

type fakeUserRepository struct {
	users map[string]*auth.User // keyed by username
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*auth.User{}}
}

func (repository *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	for _, user := range repository.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	if user, ok := repository.users[username]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	repository.users[user.Username] = user
	return nil
}

type fakeRevokedTokenRepository struct {
	revoked map[string]bool
}

func newFakeRevokedTokenRepository() *fakeRevokedTokenRepository {
	return &fakeRevokedTokenRepository{revoked: map[string]bool{}}
}

func (repository *fakeRevokedTokenRepository) Revoke(_ context.Context, tokenID string) error {
	repository.revoked[tokenID] = true
	return nil
}

func (repository *fakeRevokedTokenRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return repository.revoked[tokenID], nil
}

// fakeTokenProvider issues opaque strings and remembers the claims behind them.
type fakeTokenProvider struct {
	issued map[string]*sec.AuthClaims
}

func newFakeTokenProvider() *fakeTokenProvider {
	return &fakeTokenProvider{issued: map[string]*sec.AuthClaims{}}
}

func (provider *fakeTokenProvider) Sign(userID, username, tokenID string) (string, error) {
	token := fmt.Sprintf("token-%d", len(provider.issued))
	provider.issued[token] = &sec.AuthClaims{UserID: userID, Username: username, TokenID: tokenID}
	return token, nil
}

func (provider *fakeTokenProvider) Verify(tokenString string) (*sec.AuthClaims, error) {
	if claims, ok := provider.issued[tokenString]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("unknown token")
}

func newTestService() (*auth.Service, *fakeUserRepository, *fakeRevokedTokenRepository) {
	users := newFakeUserRepository()
	revoked := newFakeRevokedTokenRepository()
	service := auth.NewService(users, revoked, newFakeTokenProvider(), slog.Default())
	return service, users, revoked
}

// # Registration

/*
TestService_CreateUser verifies enrollment, hashing, and the duplicate-username guard.
*/
func TestService_CreateUser(t *testing.T) {
	t.Run("creates_account_with_hashed_password", func(t *testing.T) {
		service, users, _ := newTestService()

		genre := "refactoring"
		user, err := service.CreateUser(context.Background(), auth.CreateUserInput{
			Username:      "mellas",
			Password:      "correct horse battery",
			FavoriteGenre: &genre,
		})
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "mellas", user.Username)
		assert.NotEqual(t, "correct horse battery", user.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("correct horse battery", user.PasswordHash))
		assert.Len(t, users.users, 1)
	})

	t.Run("rejects_duplicate_username", func(t *testing.T) {
		service, _, _ := newTestService()

		_, err := service.CreateUser(context.Background(), auth.CreateUserInput{
			Username: "mellas", Password: "correct horse battery",
		})
		require.NoError(t, err)

		_, err = service.CreateUser(context.Background(), auth.CreateUserInput{
			Username: "mellas", Password: "another password 42",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "CONFLICT", ae.Code)
	})

	t.Run("rejects_short_password", func(t *testing.T) {
		service, users, _ := newTestService()

		_, err := service.CreateUser(context.Background(), auth.CreateUserInput{
			Username: "mellas", Password: "short",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		assert.Empty(t, users.users)
	})
}

// # Authentication

/*
TestService_Login verifies the credential check and token issuance flow.
*/
func TestService_Login(t *testing.T) {
	t.Run("issues_verifiable_token", func(t *testing.T) {
		service, _, _ := newTestService()

		_, err := service.CreateUser(context.Background(), auth.CreateUserInput{
			Username: "mellas", Password: "correct horse battery",
		})
		require.NoError(t, err)

		session, err := service.Login(context.Background(), auth.LoginInput{
			Username: "mellas", Password: "correct horse battery",
		})
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "mellas", session.User.Username)

		claims, err := service.VerifyToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.User.ID, claims.UserID)
		assert.Equal(t, "mellas", claims.Username)
	})

	t.Run("rejects_wrong_password", func(t *testing.T) {
		service, _, _ := newTestService()

		_, err := service.CreateUser(context.Background(), auth.CreateUserInput{
			Username: "mellas", Password: "correct horse battery",
		})
		require.NoError(t, err)

		_, err = service.Login(context.Background(), auth.LoginInput{
			Username: "mellas", Password: "wrong password",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
		assert.Equal(t, "wrong credentials", ae.Message)
	})

	t.Run("rejects_unknown_user_with_same_message", func(t *testing.T) {
		service, _, _ := newTestService()

		_, err := service.Login(context.Background(), auth.LoginInput{
			Username: "ghost", Password: "whatever password",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "wrong credentials", ae.Message)
	})
}

// # Revocation

/*
TestService_Logout verifies that a revoked token stops verifying while other
tokens for the same user keep working.
*/
func TestService_Logout(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.CreateUser(context.Background(), auth.CreateUserInput{
		Username: "mellas", Password: "correct horse battery",
	})
	require.NoError(t, err)

	first, err := service.Login(context.Background(), auth.LoginInput{
		Username: "mellas", Password: "correct horse battery",
	})
	require.NoError(t, err)

	second, err := service.Login(context.Background(), auth.LoginInput{
		Username: "mellas", Password: "correct horse battery",
	})
	require.NoError(t, err)

	claims, err := service.VerifyToken(context.Background(), first.Token)
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), claims))

	_, err = service.VerifyToken(context.Background(), first.Token)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)

	// Revocation is per token, not per user
	_, err = service.VerifyToken(context.Background(), second.Token)
	assert.NoError(t, err)
}

/*
TestService_Me verifies identity resolution for both authenticated and
anonymous callers.
*/
func TestService_Me(t *testing.T) {
	service, _, _ := newTestService()

	created, err := service.CreateUser(context.Background(), auth.CreateUserInput{
		Username: "mellas", Password: "correct horse battery",
	})
	require.NoError(t, err)

	user, err := service.Me(context.Background(), &sec.AuthClaims{UserID: created.ID, Username: "mellas"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "mellas", user.Username)

	user, err = service.Me(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, user)
}
