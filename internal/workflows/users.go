package workflows

import (
	"context"

	"github.com/PolarWolf314/credshare/internal/directory"
)

// UsersOptions configures the users workflow.
type UsersOptions struct {
	Common
}

// UsersResult lists everyone in the directory.
type UsersResult struct {
	Users []directory.Entry

	// Self is the caller's user id.
	Self string
}

// Users lists the directory so callers can find a recipient.
func Users(ctx context.Context, opts UsersOptions) (*UsersResult, error) {
	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	list, err := s.directory.List(ctx)
	if err != nil {
		return nil, err
	}
	return &UsersResult{Users: list, Self: s.config.User.UUID}, nil
}
