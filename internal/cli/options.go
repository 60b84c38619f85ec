package cli

import (
	"github.com/aretw0/arbor/internal/config"
)

// RunOptions contains the configuration shared by the CLI commands.
type RunOptions struct {
	// Dir holds the view documents. Overrides the config file.
	Dir string
	// View is the document rendered. Empty picks the entry view of Dir.
	View string
	// Demo renders the built-in demo app instead of a view.
	Demo       bool
	ConfigPath string
	// ContainerID persists frames under this ID. Empty disables persistence.
	ContainerID string
	Fresh       bool
	JSON        bool
	Headless    bool
	Debug       bool
}

// loadConfig reads the config file and applies the options that override it.
func loadConfig(opts RunOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Dir != "" {
		cfg.Views = opts.Dir
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
