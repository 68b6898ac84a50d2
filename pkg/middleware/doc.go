// Package middleware provides the request-pipeline checks shared by every
// service: bearer token verification and the role-based access guard.
//
// The guard is always composed after verification. An unauthenticated request
// fails on the missing or invalid token, never on the role.
package middleware
