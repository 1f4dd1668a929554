// Copyright (c) 2026 Libris. All rights reserved.
// Author: dev@libris.app

package auth

// Input constraints for account enrollment.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 64
	PasswordMinLength = 8
	PasswordMaxLength = 128
	GenreMaxLength    = 100
)
