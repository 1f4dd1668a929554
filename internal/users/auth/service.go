// Copyright (c) 2026 Libris. All rights reserved.
// Author: dev@libris.app

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/libris-app/libris/internal/platform/apperr"
	"github.com/libris-app/libris/internal/platform/sec"
	"github.com/libris-app/libris/internal/platform/validate"
	"github.com/libris-app/libris/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and checking security tokens.
type TokenProvider interface {
	// Sign creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - tokenID: Unique identifier of this token, used for revocation.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	Sign(userID, username, tokenID string) (string, error)

	// Verify parses a token string and validates its signature.
	//
	// # Returns
	//   - The embedded claims, or an err for any malformed or forged token.
	Verify(tokenString string) (*sec.AuthClaims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	revokedTokens  RevokedTokenRepository
	tokenProvider  TokenProvider
	logger         *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	revokedRepo RevokedTokenRepository,
	tokenProv TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		revokedTokens:  revokedRepo,
		tokenProvider:  tokenProv,
		logger:         logger,
	}
}

// # Registration Flow

// CreateUserInput holds the data required to enroll a new member.
type CreateUserInput struct {
	Username      string
	Password      string
	FavoriteGenre *string
}

/*
CreateUser validates, hashes, and persists a brand new user account.

Description: Enrollment of a new member, handling per-user password hashing.

Parameters:
  - context: context.Context
  - input: CreateUserInput

Returns:
  - *User: Created entity
  - err: Validation, Conflict (if the username is taken) or storage errors
*/
func (service *Service) CreateUser(context context.Context, input CreateUserInput) (*User, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		MaxLen(FieldUsername, input.Username, UsernameMaxLength).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxLen(FieldPassword, input.Password, PasswordMaxLength)

	if input.FavoriteGenre != nil {
		validator.MaxLen(FieldFavoriteGenre, *input.FavoriteGenre, GenreMaxLength)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:            uuidv7.New(),
		Username:      input.Username,
		PasswordHash:  hashedPassword,
		FavoriteGenre: input.FavoriteGenre,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_created", slog.String("username", user.Username))
	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginSession represents a successfully authenticated login.
type LoginSession struct {
	Token string
	User  *User
}

/*
Login validates user credentials and issues a security token.

Description: Verifies identity, performs constant-time password comparison,
and signs a token carrying a fresh revocation ID. The token has no expiry;
it remains valid until explicitly revoked via [Service.Logout].

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready token and account
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.userRepository.FindByUsername(context, input.Username)

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("wrong credentials")
	}

	// Constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("wrong credentials")
	}

	// Each issued token gets its own revocation ID
	token, err := service.tokenProvider.Sign(user.ID, user.Username, uuidv7.New())
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.Info("user_logged_in", slog.String("username", user.Username))
	return &LoginSession{
		Token: token,
		User:  user,
	}, nil
}

/*
VerifyToken checks a bearer token's signature and revocation state.

Description: A token is accepted only when its signature verifies AND its
revocation ID is absent from the denylist. Either failure yields the same
client-safe Unauthorized err.

Parameters:
  - context: context.Context
  - tokenString: string

Returns:
  - *sec.AuthClaims: The authenticated identity
  - err: Unauthorized or denylist connectivity failures
*/
func (service *Service) VerifyToken(context context.Context, tokenString string) (*sec.AuthClaims, error) {
	claims, err := service.tokenProvider.Verify(tokenString)
	if err != nil {
		return nil, apperr.Unauthorized("missing or invalid token")
	}

	revoked, err := service.revokedTokens.IsRevoked(context, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_revocation_check_failed: %w", err)
	}
	if revoked {
		return nil, apperr.Unauthorized("missing or invalid token")
	}

	return claims, nil
}

/*
Logout permanently revokes the caller's token.

Description: Places the token's revocation ID on the denylist. The operation
is idempotent; revoking an already-revoked token succeeds.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, claims *sec.AuthClaims) error {
	if err := service.revokedTokens.Revoke(context, claims.TokenID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.logger.Info("user_logged_out", slog.String("username", claims.Username))
	return nil
}

// # Identity Resolution

/*
Me resolves the account behind a set of verified claims.

Description: An anonymous caller (nil claims) is not an error here; the
resolver surfaces it as a null result, mirroring how clients probe their
own login state.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims

Returns:
  - *User: The caller's account, or nil when anonymous
  - err: Database retrieval failures
*/
func (service *Service) Me(context context.Context, claims *sec.AuthClaims) (*User, error) {
	if claims == nil {
		return nil, nil
	}
	return service.userRepository.FindByID(context, claims.UserID)
}
