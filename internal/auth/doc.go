// Package auth issues and verifies the bearer tokens that gate the people
// API.
//
// Sign-in itself happens at an external identity provider. Once it has
// vouched for a user, a session token is minted for that Identity with
// GenerateAccessToken (see cmd/datacollector-token) and presented as
// "Authorization: Bearer <jwt>". Tokens are HS256, carry a uuid jti and
// session id, and are checked by signature and expiry only.
package auth
