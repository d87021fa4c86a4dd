// Package directory maps user identifiers to public keys.
//
// Identifiers are either a user id or an email address. Emails are stored
// lower-case and compared case-insensitively. The directory lives in the
// shared store so every installation pointed at the same store sees the
// same users and keys.
package directory
