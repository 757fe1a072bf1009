package configwatcher

import "github.com/bft-labs/bulk/pkg/log"

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger for watcher diagnostics.
//
// Usage:
//
//	w := configwatcher.New(configwatcher.DefaultConfig(), configwatcher.WithLogger(logger))
//	if err := w.Start(ctx, path, reload); err != nil {
//	    return err
//	}
//	defer w.Shutdown(context.Background())
func WithLogger(logger log.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}
