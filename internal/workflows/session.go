package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PolarWolf314/credshare/internal/configs"
	"github.com/PolarWolf314/credshare/internal/directory"
	kerrors "github.com/PolarWolf314/credshare/internal/errors"
	logger "github.com/PolarWolf314/credshare/internal/logging"
	"github.com/PolarWolf314/credshare/internal/requests"
	"github.com/PolarWolf314/credshare/internal/secrets"
	"github.com/PolarWolf314/credshare/internal/shares"
	"github.com/PolarWolf314/credshare/internal/store"
	"github.com/PolarWolf314/credshare/internal/vault"
)

// Common holds the output flags every workflow accepts.
type Common struct {
	// Verbose enables verbose logging output.
	Verbose bool

	// Debug enables debug output, including SQL traces.
	Debug bool
}

func (c Common) logger() logger.Logger {
	return logger.Logger{Verbose: c.Verbose, Debug: c.Debug}
}

// now is the clock used by every session.
var now = time.Now

// session is everything a command needs for the local user.
type session struct {
	config    *configs.UserConfig
	store     *store.Store
	keys      *secrets.KeyManager
	key       *secrets.PrivateKey
	public    secrets.PublicKeyMaterial
	directory *directory.Directory
	vault     *vault.File
	engine    *shares.Engine
	requests  *requests.Workflow
	log       logger.Logger
}

// loadInitializedConfig returns the user config, or ErrNotInitialized if
// init has not been run.
func loadInitializedConfig() (*configs.UserConfig, error) {
	config, err := configs.LoadUserConfig()
	if err != nil {
		return nil, err
	}
	if config.User.UUID == "" || config.User.Email == "" {
		return nil, kerrors.ErrNotInitialized
	}
	return config, nil
}

func openStore(config *configs.UserConfig, log logger.Logger) (*store.Store, error) {
	driver, dsn, err := config.ResolveStore()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreUnavailable, err)
	}
	log.Debugf("Opening %s store", driver)
	st, err := store.Open(store.Config{Driver: driver, DSN: dsn, Logger: log})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreUnavailable, err)
	}
	return st, nil
}

// openSession loads config, keys, store, directory and vault for the local
// user. A key storage failure aborts the session.
func openSession(ctx context.Context, c Common) (*session, error) {
	log := c.logger()

	config, err := loadInitializedConfig()
	if err != nil {
		return nil, err
	}
	userID := config.User.UUID

	keys := secrets.NewKeyManager(configs.UserCredshareSettings.UserKeysPath, config.Sharing.KeyBits)
	if !keys.HasKeypair(userID) {
		return nil, fmt.Errorf("%w: no keypair for %s", kerrors.ErrNotInitialized, config.User.Email)
	}
	key, public, err := keys.GetOrCreateKeypair(userID)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded keypair %s", public.Fingerprint)

	st, err := openStore(config, log)
	if err != nil {
		return nil, err
	}

	dir := directory.New(st, now)
	self, err := dir.Resolve(ctx, userID)
	if errors.Is(err, kerrors.ErrRecipientNotFound) {
		st.Close()
		return nil, fmt.Errorf("%w: %s is not registered in this store", kerrors.ErrNotInitialized, config.User.Email)
	}
	if err != nil {
		st.Close()
		return nil, err
	}
	if self.KeyFingerprint != public.Fingerprint {
		log.WarnfAlways("Your published key (%s) differs from your local key (%s). Run 'credshare init' to republish it.",
			shortFingerprint(self.KeyFingerprint), shortFingerprint(public.Fingerprint))
	}

	v, err := vault.OpenFile(config.Vault.Path, userID)
	if err != nil {
		st.Close()
		return nil, err
	}

	engine, err := shares.NewEngine(shares.Options{
		CallerID:    userID,
		CallerEmail: config.User.Email,
		Store:       st,
		Directory:   dir,
		Vault:       v,
		Key:         key,
		Now:         now,
		Logger:      log,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	if err := dir.Touch(ctx, userID); err != nil {
		log.Warnf("Failed to record activity: %v", err)
	}

	return &session{
		config:    config,
		store:     st,
		keys:      keys,
		key:       key,
		public:    public,
		directory: dir,
		vault:     v,
		engine:    engine,
		requests:  requests.NewWorkflow(engine, st, dir, v, log),
		log:       log,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warnf("Failed to close store: %v", err)
	}
}

func shortFingerprint(fp string) string {
	if len(fp) <= 16 {
		return fp
	}
	return fp[:16]
}
