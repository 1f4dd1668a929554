// Copyright (c) 2026 Libris. All rights reserved.
// Author: dev@libris.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/libris-app/libris/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// Unique-constraint and schema violations keep the store's message so callers
// can diagnose what was rejected.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Store-level failures (uniqueness, FK, check constraints) surface
	// the Postgres message as the failure detail.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return apperr.Persistence(pgErr)
	}

	// 3. Anything else (connectivity, cancellation) stays hidden.
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). Used to turn a lost insert race into a retry.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
