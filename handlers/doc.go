// Package handlers contains the built-in HTTP handlers: the refresh-token
// rotation endpoint and logout.
//
// POST /auth/refresh consumes the refresh cookie and issues a new access
// token in the body plus rotated refresh and CSRF cookies. Every refresh
// token is single-use; presenting one twice revokes all of the user's
// sessions. POST /auth/logout revokes the current session (or all of them
// with {"all": true}) and clears the cookies.
package handlers
