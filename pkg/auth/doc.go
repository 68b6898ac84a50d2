// Package auth implements token issuance and verification for the lead
// management services.
//
// Every service shares the same HS256 signing secret: the auth service mints
// tokens, and each downstream service verifies them locally without calling
// back to the issuer. A verified token is reconstructed into a Principal
// carrying the subject ID, email, and role that were fixed at issuance time.
// Tokens cannot be revoked before expiry; a role change server-side takes
// effect only once outstanding tokens expire.
//
// Role-based authorization is expressed as data: an allow-list guard over the
// Principal's role (see pkg/middleware), and an explicit creation table
// stating which roles may provision which (CanCreate).
package auth
