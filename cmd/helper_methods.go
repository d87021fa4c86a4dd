package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	"github.com/PolarWolf314/credshare/internal/ui"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
// Calling cleanup more than once is safe; commands that print tables call it
// before writing to stdout.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			if quiet {
				log.SetOutput(os.Stdout)
			}

			finalMsg := ""
			if s.FinalMSG != "" {
				finalMsg = ui.EnsureNewline(s.FinalMSG)
				// Clear FinalMSG so s.Stop() doesn't print it.
				s.FinalMSG = ""
			}

			if quiet {
				s.Stop()
			}

			// Print final message to stdout (for tests to capture).
			if finalMsg != "" {
				fmt.Print(finalMsg)
			}
		})
	}

	return s, cleanup
}

func success(msg string, args ...any) string {
	return ui.Success.Sprint("✓") + " " + fmt.Sprintf(msg, args...)
}

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}

func hint(command string) string {
	return "\n" + ui.Info.Sprint("→") + " Run " + ui.Code.Sprint(command)
}

// formatError maps a workflow error to a message for the user.
func formatError(err error) string {
	prefix := ui.Error.Sprint("✗") + " "
	switch {
	case errors.Is(err, kerrors.ErrNotInitialized):
		return prefix + "credshare has not been initialized for this user" + hint("credshare init --email <you@example.com>")
	case errors.Is(err, kerrors.ErrKeyStorage):
		return prefix + "Your local keys are missing or damaged: " + err.Error() +
			"\n" + ui.Info.Sprint("→") + " Restore them from backup, or remove the key directory and run " + ui.Code.Sprint("credshare init")
	case errors.Is(err, kerrors.ErrStoreUnavailable):
		return prefix + "Could not reach the shared store: " + err.Error()

	// Always the same text, so a caller cannot tell a revoked share from a missing one.
	case errors.Is(err, kerrors.ErrShareNotAccessible):
		return prefix + "Share not found or no longer accessible"

	case errors.Is(err, kerrors.ErrSecretNotFound):
		return prefix + "No matching secret in your vault" + hint("credshare vault list")
	case errors.Is(err, kerrors.ErrRecipientNotFound):
		return prefix + "No such user in the directory" + hint("credshare users")
	case errors.Is(err, kerrors.ErrSelfShareRejected):
		return prefix + "You cannot share a secret with yourself"
	case errors.Is(err, kerrors.ErrSelfRequestRejected):
		return prefix + "You cannot request a secret from yourself"
	case errors.Is(err, kerrors.ErrEncryptionFailure):
		return prefix + "Could not encrypt for the recipient; their published key may be invalid"
	case errors.Is(err, kerrors.ErrDecryptionFailure):
		return prefix + "Could not decrypt this share; it was probably encrypted for a previous key" +
			"\n" + ui.Info.Sprint("→") + " Ask the owner to share it again"
	case errors.Is(err, kerrors.ErrRequestNotFound):
		return prefix + "Request not found"
	case errors.Is(err, kerrors.ErrRequestAlreadyResolved):
		return prefix + "This request has already been resolved"
	case errors.Is(err, kerrors.ErrUnauthorized):
		return prefix + "Not authorized: " + err.Error()
	case errors.Is(err, kerrors.ErrEmailTaken):
		return prefix + "That email is already registered to another user"
	default:
		return prefix + err.Error()
	}
}

// isUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
func isUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrNotInitialized),
		errors.Is(err, kerrors.ErrShareNotAccessible),
		errors.Is(err, kerrors.ErrSecretNotFound),
		errors.Is(err, kerrors.ErrRecipientNotFound),
		errors.Is(err, kerrors.ErrSelfShareRejected),
		errors.Is(err, kerrors.ErrSelfRequestRejected),
		errors.Is(err, kerrors.ErrRequestNotFound),
		errors.Is(err, kerrors.ErrRequestAlreadyResolved),
		errors.Is(err, kerrors.ErrEmailTaken),
		errors.Is(err, kerrors.ErrInvalidEmail),
		errors.Is(err, kerrors.ErrInvalidPermission),
		errors.Is(err, kerrors.ErrInvalidDecision),
		errors.Is(err, kerrors.ErrInvalidDateFormat):
		return false
	default:
		return true
	}
}

// fail sets the spinner's final message for err and returns err only when it
// should end the process with a non-zero status.
func fail(s *spinner.Spinner, err error) error {
	s.FinalMSG = formatError(err)
	if isUnexpectedError(err) {
		return err
	}
	return nil
}
