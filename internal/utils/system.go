package utils

import (
	"os"
	"os/user"
	"strings"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// DefaultDisplayName derives a display name from the local part of an email,
// falling back to the system username.
func DefaultDisplayName(email string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	if username, err := GetUsername(); err == nil && username != "" {
		return username
	}
	return "user"
}
