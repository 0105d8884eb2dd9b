package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
	"github.com/osvaldoandrade/edgeboot/internal/infra/ident"
	"github.com/osvaldoandrade/edgeboot/internal/platform"
	"github.com/spf13/cobra"
)

const (
	envRemoteURL   = "EDGEBOOT_REMOTE_URL"
	envCheckoutDir = "EDGEBOOT_CHECKOUT_DIR"
	envExecRoot    = "EDGEBOOT_EXEC_ROOT"
	envDepth       = "EDGEBOOT_DEPTH"
	envProfile     = "EDGEBOOT_PROFILE"
	envEntrypoint  = "EDGEBOOT_ENTRYPOINT"
	envPorts       = "EDGEBOOT_PORTS"
	envPruneStale  = "EDGEBOOT_PRUNE_STALE"
	envLock        = "EDGEBOOT_LOCK"
	envConfig      = "EDGEBOOT_CONFIG"
	envLogLevel    = "EDGEBOOT_LOG_LEVEL"
	envLogFormat   = "EDGEBOOT_LOG_FORMAT"
)

const (
	defaultCheckoutDir = "/tmp/repo"
	defaultExecRoot    = "/app"
)

type RootOptions struct {
	RemoteURL   string
	CheckoutDir string
	ExecRoot    string
	Depth       int
	Profile     string
	Entrypoint  []string
	Ports       []int
	PruneStale  bool
	Lock        bool
	ConfigPath  string
	JSONOutput  bool
	LogLevel    string
	LogFormat   string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithOptions(defaultRootOptions())
}

// defaultRootOptions reads the EDGEBOOT_* environment; flags parsed later
// override it.
func defaultRootOptions() *RootOptions {
	return &RootOptions{
		RemoteURL:   envDefault(envRemoteURL, ""),
		CheckoutDir: envDefault(envCheckoutDir, defaultCheckoutDir),
		ExecRoot:    envDefault(envExecRoot, defaultExecRoot),
		Depth:       envIntDefault(envDepth, domain.DefaultCloneDepth),
		Profile:     envDefault(envProfile, string(domain.DefaultProfile)),
		Entrypoint:  strings.Fields(envDefault(envEntrypoint, "")),
		Ports:       envIntsDefault(envPorts, nil),
		PruneStale:  envBoolDefault(envPruneStale, false),
		Lock:        envBoolDefault(envLock, true),
		ConfigPath:  envDefault(envConfig, ""),
		LogLevel:    envDefault(envLogLevel, "info"),
		LogFormat:   envDefault(envLogFormat, "text"),
	}
}

func newRootCmdWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "edgeboot",
		Short:         "Fetch or update the application checkout, then run it",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.ConfigPath) != "" {
				if err := applyConfigFile(cmd, opts); err != nil {
					return err
				}
			}
			logger, err := newLogger(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.RemoteURL, "remote", opts.RemoteURL, "URL of the application repository")
	flags.StringVar(&opts.CheckoutDir, "checkout", opts.CheckoutDir, "Directory holding the checkout")
	flags.StringVar(&opts.ExecRoot, "exec-root", opts.ExecRoot, "Directory the application runs from (may equal --checkout)")
	flags.IntVar(&opts.Depth, "depth", opts.Depth, "History depth of the initial clone (0 for full history)")
	flags.StringVar(&opts.Profile, "profile", opts.Profile, "Application profile (app, middleware)")
	flags.IntSliceVar(&opts.Ports, "ports", opts.Ports, "Ports the application declares (defaults to the profile's)")
	flags.BoolVar(&opts.PruneStale, "prune-stale", opts.PruneStale, "Delete previously staged files that left the checkout")
	flags.BoolVar(&opts.Lock, "lock", opts.Lock, "Hold <checkout>.lock while syncing and staging")
	flags.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to a JSON config file")
	flags.BoolVar(&opts.JSONOutput, "json", false, "Emit JSON output")
	flags.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")

	cmd.AddCommand(
		newRunCmd(opts),
		newSyncCmd(opts),
		newStageCmd(opts),
		newLaunchCmd(opts),
		newStatusCmd(opts),
	)

	return cmd
}

func newLogger(opts *RootOptions, out io.Writer) (*slog.Logger, error) {
	runID, err := ident.NewRunIDGenerator().NewID()
	if err != nil {
		return nil, err
	}
	logger, err := platform.ConfigureLogger(opts.LogLevel, opts.LogFormat, out, slog.String("run_id", runID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	return logger, nil
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBoolDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envIntDefault(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envIntsDefault(key string, fallback []int) []int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fallback
		}
		out = append(out, parsed)
	}
	return out
}

func envSet(key string) bool {
	return strings.TrimSpace(os.Getenv(key)) != ""
}
