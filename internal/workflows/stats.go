package workflows

import (
	"context"

	"github.com/PolarWolf314/credshare/internal/stats"
	"github.com/PolarWolf314/credshare/internal/utils"
)

// StatsOptions configures the stats workflow.
type StatsOptions struct {
	Common

	// Window is the recent activity period ("24h", "30d"). Empty means seven days.
	Window string
}

// Stats summarizes the caller's shares, requests and recent activity.
func Stats(ctx context.Context, opts StatsOptions) (*stats.Report, error) {
	var window = stats.DefaultWindow
	if opts.Window != "" {
		w, err := utils.ParseDuration(opts.Window)
		if err != nil {
			return nil, err
		}
		window = w
	}

	s, err := openSession(ctx, opts.Common)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return stats.Generate(ctx, s.store, s.config.User.UUID, window, now())
}
