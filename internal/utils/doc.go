// Package utils provides shared utility functions for credshare.
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//   - DefaultDisplayName: derives a display name for a new user
//
// # String Utilities
//
//   - IsValidEmail, NormalizeEmail: directory identifiers
//   - ShortID: abbreviated ids for table output
//
// # I/O, Terminal and Parsing Utilities
//
//   - ReadStdin: reads a piped secret value
//   - ReadHiddenConfirmed: reads a secret value twice from the terminal without echo
//   - ParseDuration: Go durations plus a day suffix (7d)
package utils
