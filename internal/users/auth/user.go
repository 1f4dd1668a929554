// Copyright (c) 2026 Libris. All rights reserved.
// Author: dev@libris.app

/*
Package auth implements the user identity and token management layer.

It handles account registration with per-user password hashing, credential
verification, and the lifecycle of RSA-signed bearer tokens (revocation
state lives in Redis).

# Architecture

This layer is the "Truth" of the system for identity. Entities defined here
have no external dependencies and encapsulate all business rules related to
user accounts and token validity.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member of the Libris platform.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"` // Explicitly omitted from JSON for security.
	FavoriteGenre *string   `json:"favorite_genre"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername      = "username"
	FieldPassword      = "password"
	FieldFavoriteGenre = "favorite_genre"
	FieldToken         = "token"
	FieldUser          = "user"
)
