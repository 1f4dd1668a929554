// Copyright (c) 2026 Libris. All rights reserved.
// Author: dev@libris.app

package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/libris-app/libris/internal/platform/constants"
)

// RedisRevokedTokenRepository implements RevokedTokenRepository using Redis.
type RedisRevokedTokenRepository struct {
	client *redis.Client
}

// NewRevokedTokenRepository creates a new Redis-backed RevokedTokenRepository.
func NewRevokedTokenRepository(client *redis.Client) *RedisRevokedTokenRepository {
	return &RedisRevokedTokenRepository{client: client}
}

/*
Revoke denylists the token ID.

Description: The entry never expires. Tokens themselves are unbounded in
time, so a revocation must outlive every copy of the token string.

Parameters:
  - context: context.Context
  - tokenID: string

Returns:
  - error: Execution errors
*/
func (repository *RedisRevokedTokenRepository) Revoke(context context.Context, tokenID string) error {

	// Use constants for key prefix
	key := constants.RedisPrefixRevokedToken + tokenID

	// No TTL: a revoked token stays revoked forever
	if err := repository.client.Set(context, key, "1", 0).Err(); err != nil {
		return fmt.Errorf("redis_revoked_token_set_failed: %w", err)
	}

	// Return nil on success
	return nil
}

/*
IsRevoked reports whether the token ID is present on the denylist.

Parameters:
  - context: context.Context
  - tokenID: string

Returns:
  - bool: true if the token has been revoked
  - error: Connectivity errors
*/
func (repository *RedisRevokedTokenRepository) IsRevoked(context context.Context, tokenID string) (bool, error) {

	// Use constants for key prefix
	key := constants.RedisPrefixRevokedToken + tokenID

	// Existence check is enough; the value carries no information
	count, err := repository.client.Exists(context, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revoked_token_exists_failed: %w", err)
	}

	// Return the result
	return count > 0, nil
}
