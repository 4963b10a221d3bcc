// Package soulauth is the authentication backend for the Soul image
// search app. It reconciles a user across one local (email+password)
// and three federated (Google, GitHub, Facebook) identity sources into
// a single canonical account, issues a signed 7-day bearer token, and
// delivers it to the SPA across a popup window boundary.
//
// # Components
//
//   - Hasher: bcrypt password hashing and verification.
//   - Issuer: signed, expiring JWT bearer tokens bound to a user id.
//   - Resolver: finds or creates the canonical User for a federated
//     profile and links the provider id to it.
//   - Gateway: the HTTP layer exposing /api/register, /api/login, the
//     three /auth/{provider} start/callback pairs, and the cross-window
//     handoff page.
//
// # Identity Model
//
// A User is keyed by a unique email. A local password hash and up to
// three provider ids hang off the same record; a federated login whose
// email matches an existing account links into that account rather
// than creating a second one. Registration always creates a fresh
// account and never links, even when the email belongs to a
// federated-only user. That asymmetry is inherited behavior; the login
// path reports "login using the method you originally signed up with"
// in the reverse direction.
//
// # Handoff
//
// Federated login runs in a popup. The callback does not redirect the
// popup into the SPA; it renders a page that posts {token, user} (or
// {error}) to window.opener at the configured frontend origin and then
// closes itself. See handoff.go.
//
// Tokens carry no revocation or refresh mechanism: a token stays valid
// for its full 7-day lifetime regardless of later account changes.
package soulauth
