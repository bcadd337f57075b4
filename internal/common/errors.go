// Package common defines shared constants and sentinel errors used across
// client and server layers of docvault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Transport-level failure (connection refused, timeout, DNS). Never retried
	// by the session layer.
	ErrUnavailable = errors.New("server unavailable")

	// A 401-class response that was not (or could not be) recovered by renewal.
	ErrUnauthorized = errors.New("unauthorized")

	// The refresh endpoint rejected the refresh credential or could not be
	// reached. Always ends the session.
	ErrRenewalFailed = errors.New("credential renewal failed")

	// Login or registration was rejected by the authentication service.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Caller-supplied input rejected before any network call.
	ErrValidation = errors.New("validation error")

	// A stored secret could not be decrypted or decoded.
	ErrCorruptSecret = errors.New("corrupt secret")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
