// Package auth groups the identity subsystem: the user model, credential
// verification, and bearer token issuance.
//
// Authentication state lives entirely in signed tokens; there is no session
// table, so token verification is the sole source of truth for who a caller
// is.
package auth
