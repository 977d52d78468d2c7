// Package auth issues and verifies access tokens and checks role permissions.
//
// Passwords are hashed with bcrypt. Tokens are HS256 JWTs whose subject is the
// username and whose roles claim lists role names; the user is still reloaded
// on every request so deactivation takes effect before the token expires.
package auth
