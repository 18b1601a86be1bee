// Package auth is the authentication and session-lifecycle subsystem of the
// Loreleaf federated wiki platform: signed session tokens, credential
// verification, password-reset and email-verification workflows, and the
// per-user surfaces gated by them (profile updates, notifications).
//
// Sessions:
//   - TokenService mints HS256 tokens carrying sub/iss/iat/exp claims; the
//     signing secret is re-read from Config on every call so the package has
//     no mutable global state. All session state lives in the token held by
//     the client, never in the process.
//   - SessionCookie/ClearSessionCookie translate tokens into a strict cookie
//     (HttpOnly, SameSite=Strict, Secure outside development) whose lifetime
//     is provisioned independently of the token expiry inside it.
//
// Single-use tokens:
//   - Password reset and email verification both issue opaque tokens that
//     are consumed by a transactional delete-returning, so a token resolves
//     at most once even under concurrent completion attempts.
//
// Error policy:
//   - Security-sensitive failures collapse into undifferentiated errors
//     (ErrInvalidLogin, ErrInvalidToken); the real cause only reaches the
//     logs. Reset requests never surface failure at all.
package auth
