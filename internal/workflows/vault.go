package workflows

import (
	"context"

	"github.com/PolarWolf314/credshare/internal/vault"
)

// VaultAddOptions configures the vault add workflow.
type VaultAddOptions struct {
	Common
	Title string
	Value string
	Notes string
}

// VaultAdd stores a new secret in the caller's local vault.
func VaultAdd(ctx context.Context, opts VaultAddOptions) (vault.Secret, error) {
	config, err := loadInitializedConfig()
	if err != nil {
		return vault.Secret{}, err
	}
	v, err := vault.OpenFile(config.Vault.Path, config.User.UUID)
	if err != nil {
		return vault.Secret{}, err
	}
	secret, err := v.Add(ctx, opts.Title, opts.Value, opts.Notes)
	if err != nil {
		return vault.Secret{}, err
	}
	opts.logger().Infof("Added %q to %s", secret.Title, v.Path())
	return secret, nil
}

// VaultListOptions configures the vault list workflow.
type VaultListOptions struct {
	Common
}

// VaultList returns the caller's vault secrets by title. Values are left in
// place; callers decide whether to print them.
func VaultList(ctx context.Context, opts VaultListOptions) ([]vault.Secret, error) {
	config, err := loadInitializedConfig()
	if err != nil {
		return nil, err
	}
	v, err := vault.OpenFile(config.Vault.Path, config.User.UUID)
	if err != nil {
		return nil, err
	}
	return v.ListSecrets(ctx)
}
