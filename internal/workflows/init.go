package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/credshare/internal/configs"
	"github.com/PolarWolf314/credshare/internal/directory"
	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	"github.com/PolarWolf314/credshare/internal/secrets"
	"github.com/PolarWolf314/credshare/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	Common

	// Email identifies the user to others. Required on first run.
	Email string

	// DisplayName defaults to the local part of the email.
	DisplayName string

	// StoreDriver and StoreDSN override the configured store when set.
	StoreDriver string
	StoreDSN    string

	// DefaultTTL sets the default share lifetime ("72h", "7d").
	DefaultTTL string
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	UserID      string
	Email       string
	DisplayName string
	Fingerprint string
	StoreDriver string

	// KeyCreated is false when an existing keypair was reused.
	KeyCreated bool
}

// Init creates or updates the local user's config, generates their keypair
// on first run and publishes it to the shared directory. Running it again
// re-registers the user, which also republishes the current key.
//
// Returns ErrInvalidEmail if the email is malformed.
// Returns ErrEmailTaken if another user already registered the email.
// Returns ErrKeyStorage if existing key material is damaged.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	log := opts.logger()

	config, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, fmt.Errorf("ensuring user config: %w", err)
	}

	email := utils.NormalizeEmail(opts.Email)
	if email == "" {
		email = config.User.Email
	}
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrInvalidEmail, opts.Email)
	}
	config.User.Email = email

	if name := strings.TrimSpace(opts.DisplayName); name != "" {
		config.User.DisplayName = name
	}
	if config.User.DisplayName == "" {
		config.User.DisplayName = utils.DefaultDisplayName(email)
	}
	if opts.StoreDriver != "" {
		config.Store.Driver = strings.ToLower(opts.StoreDriver)
		config.Store.DSN = opts.StoreDSN
	} else if opts.StoreDSN != "" {
		config.Store.DSN = opts.StoreDSN
	}
	if opts.DefaultTTL != "" {
		config.Sharing.DefaultTTL = opts.DefaultTTL
	}
	config.ApplyDefaults()
	if _, err := config.DefaultTTL(); err != nil {
		return nil, err
	}
	driver, _, err := config.ResolveStore()
	if err != nil {
		return nil, err
	}

	keys := secrets.NewKeyManager(configs.UserCredshareSettings.UserKeysPath, config.Sharing.KeyBits)
	created := !keys.HasKeypair(config.User.UUID)
	_, public, err := keys.GetOrCreateKeypair(config.User.UUID)
	if err != nil {
		return nil, err
	}
	if created {
		log.Infof("Generated %d-bit keypair %s", config.Sharing.KeyBits, shortFingerprint(public.Fingerprint))
	}

	st, err := openStore(config, log)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	entry, err := directory.New(st, now).Register(ctx, directory.Registration{
		UserID:       config.User.UUID,
		Email:        email,
		DisplayName:  config.User.DisplayName,
		PublicKeyPEM: public.PEM,
	})
	if err != nil {
		return nil, err
	}

	if err := configs.SaveUserConfig(config); err != nil {
		return nil, err
	}
	log.Infof("Registered %s as %s", entry.Email, entry.UserID)

	return &InitResult{
		UserID:      entry.UserID,
		Email:       entry.Email,
		DisplayName: entry.DisplayName,
		Fingerprint: public.Fingerprint,
		StoreDriver: driver,
		KeyCreated:  created,
	}, nil
}
