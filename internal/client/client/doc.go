// Package client talks to the docvault authentication service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract for the authentication endpoints (see
//     the AuthService interface): Login, Register, Refresh, Logout and
//     LoginWithGoogle.
//  2. A concrete JSON-over-HTTP implementation (see AuthClient) that maps
//     HTTP status codes to the sentinel errors of package common.
//
// AuthClient must be given an undecorated *http.Client: the refresh call is
// made by the session's renewal coordinator and must never itself be subject
// to renewal.
//
// # Error Handling
//
// Failures are reported as *StatusError (non-2xx responses) or wrap
// common.ErrUnavailable (transport failures). Match with errors.Is:
// common.ErrInvalidCredentials, common.ErrUnauthorized,
// common.ErrValidation, common.ErrUnavailable.
package client
