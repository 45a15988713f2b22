// Package auth implements the cloud account login and token lifecycle.
//
// The login is a PKCE-hardened authorization-code flow that the vendor
// drives through HTTP redirects rather than a browser:
//
//  1. GET the authorization URL (code challenge attached) and capture
//     the requestId from the 302 Location header.
//  2. POST the credentials form; the 302 Location carries the
//     authorization code.
//  3. POST the code plus the original verifier to the token endpoint.
//  4. GET the user profile with the access token as a bearer credential.
//
// Failures split three ways: ErrCommunication for transport problems
// (retryable), ErrAuthentication for rejections (needs a new login),
// ErrProtocol for responses that do not have the documented shape.
//
// Tokens carry their issue time; RefreshAt gives the instant the
// session's one-shot refresh job must fire, a fixed margin before
// expiry.
package auth
