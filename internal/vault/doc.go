// Package vault holds the local user's own credentials.
//
// The share engine reads secrets from a vault but never writes to one.
// File keeps secrets in a 0600 TOML file under the user's data directory;
// Memory is used by tests and embedders that manage secrets themselves.
package vault
