// Package internal contains the request-processing core: the App dispatch
// pipeline, route registry, Context, middleware chain composition, the
// error taxonomy, and the server runtime.
//
// The root gate package re-exports the public surface as type aliases;
// application code should import github.com/dmitrymomot/gate instead of
// this package.
//
// # Dispatch pipeline
//
// App.ServeHTTP is the single dispatch boundary. Per request it:
//
//  1. wraps the response writer for status/size tracking,
//  2. injects a fresh identity/tenant scope into the request context,
//  3. runs global middleware, route middleware, and the terminal handler
//     through the chi mux,
//  4. converts returned HTTPErrors (and recovered panics) into envelope
//     responses,
//  5. unconditionally clears the identity/tenant scope before returning.
//
// Identity and tenant state is always request-scoped: it lives in a holder
// placed on the request context at step 2, never in package-level
// variables, so concurrent in-flight requests cannot observe each other's
// principals.
//
// # Route registry
//
// Patterns use ":name" parameter segments. The registry rejects duplicate
// (method, pattern) pairs and any pair of patterns for one method that
// could match the same concrete path, so matching never depends on
// registration order or precedence rules.
package internal
