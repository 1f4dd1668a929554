// Copyright (c) 2026 Libris. All rights reserved.
// Author: dev@libris.app

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error
}

// # Volatile Data Access

// RevokedTokenRepository defines the contract for the token denylist.
//
// Issued tokens carry no expiry, so revocation is the only way a token ever
// stops working. Entries are keyed by the token's unique ID (jti claim).
type RevokedTokenRepository interface {

	/*
		Revoke permanently denylists the token with the given ID.

		Parameters:
		  - context: context.Context
		  - tokenID: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, tokenID string) error

	/*
		IsRevoked reports whether the token ID is on the denylist.

		Parameters:
		  - context: context.Context
		  - tokenID: string

		Returns:
		  - bool: Presence on the denylist
		  - error: Retrieval failures
	*/
	IsRevoked(context context.Context, tokenID string) (bool, error)
}
