package cli

import (
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/osvaldoandrade/edgeboot/internal/infra/filesystem"
	"github.com/osvaldoandrade/edgeboot/internal/infra/schema"
	"github.com/spf13/cobra"
)

var errInvalidConfig = errors.New("invalid configuration")

type fileConfig struct {
	RemoteURL   *string  `json:"remote_url"`
	CheckoutDir *string  `json:"checkout_dir"`
	ExecRoot    *string  `json:"exec_root"`
	Depth       *int     `json:"depth"`
	Profile     *string  `json:"profile"`
	Entrypoint  []string `json:"entrypoint"`
	Ports       []int    `json:"ports"`
	PruneStale  *bool    `json:"prune_stale"`
	Lock        *bool    `json:"lock"`
	LogLevel    *string  `json:"log_level"`
	LogFormat   *string  `json:"log_format"`
}

// applyConfigFile fills options from the config file. A value already given
// by flag or environment wins over the file.
func applyConfigFile(cmd *cobra.Command, opts *RootOptions) error {
	data, err := filesystem.ConfigSource{}.ReadConfig(cmd.Context(), opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	validator, err := schema.NewConfigValidator()
	if err != nil {
		return err
	}
	if err := validator.Validate(cmd.Context(), data); err != nil {
		return fmt.Errorf("%w: %s: %w", errInvalidConfig, opts.ConfigPath, err)
	}

	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%w: decode %s: %w", errInvalidConfig, opts.ConfigPath, err)
	}

	unset := func(flag, env string) bool {
		return !cmd.Flags().Changed(flag) && !envSet(env)
	}
	if cfg.RemoteURL != nil && unset("remote", envRemoteURL) {
		opts.RemoteURL = *cfg.RemoteURL
	}
	if cfg.CheckoutDir != nil && unset("checkout", envCheckoutDir) {
		opts.CheckoutDir = *cfg.CheckoutDir
	}
	if cfg.ExecRoot != nil && unset("exec-root", envExecRoot) {
		opts.ExecRoot = *cfg.ExecRoot
	}
	if cfg.Depth != nil && unset("depth", envDepth) {
		opts.Depth = *cfg.Depth
	}
	if cfg.Profile != nil && unset("profile", envProfile) {
		opts.Profile = *cfg.Profile
	}
	if len(cfg.Entrypoint) > 0 && !envSet(envEntrypoint) {
		opts.Entrypoint = cfg.Entrypoint
	}
	if len(cfg.Ports) > 0 && unset("ports", envPorts) {
		opts.Ports = cfg.Ports
	}
	if cfg.PruneStale != nil && unset("prune-stale", envPruneStale) {
		opts.PruneStale = *cfg.PruneStale
	}
	if cfg.Lock != nil && unset("lock", envLock) {
		opts.Lock = *cfg.Lock
	}
	if cfg.LogLevel != nil && unset("log-level", envLogLevel) {
		opts.LogLevel = *cfg.LogLevel
	}
	if cfg.LogFormat != nil && unset("log-format", envLogFormat) {
		opts.LogFormat = *cfg.LogFormat
	}
	return nil
}
