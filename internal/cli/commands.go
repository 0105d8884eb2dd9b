package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	bootstrapapp "github.com/osvaldoandrade/edgeboot/internal/app/bootstrap"
	checkoutapp "github.com/osvaldoandrade/edgeboot/internal/app/checkout"
	launchapp "github.com/osvaldoandrade/edgeboot/internal/app/launch"
	"github.com/osvaldoandrade/edgeboot/internal/app/paths"
	stageapp "github.com/osvaldoandrade/edgeboot/internal/app/stage"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
	"github.com/osvaldoandrade/edgeboot/internal/infra/filesystem"
	"github.com/osvaldoandrade/edgeboot/internal/infra/gitrepo"
	"github.com/osvaldoandrade/edgeboot/internal/infra/lockfile"
	"github.com/osvaldoandrade/edgeboot/internal/infra/process"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *RootOptions) *cobra.Command {
	var skipSync bool
	cmd := &cobra.Command{
		Use:   "run [-- command args...]",
		Short: "Sync the checkout, stage it into the execution root and run the application",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(opts, args)
			if err != nil {
				return err
			}
			plan.SkipSync = skipSync
			return runSequence(cmd, opts, plan)
		},
	}
	cmd.Flags().BoolVar(&skipSync, "skip-sync", false, "Launch the execution root as is")
	return cmd
}

func newLaunchCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "launch [-- command args...]",
		Short: "Run the application from the execution root without syncing",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(opts, args)
			if err != nil {
				return err
			}
			plan.SkipSync = true
			return runSequence(cmd, opts, plan)
		},
	}
}

func newSyncCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Clone or pull the checkout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := repositoryRef(opts)
			if err != nil {
				return err
			}
			service := newCheckoutService(opts)
			var result domain.SyncResult
			err = withCheckoutLock(cmd.Context(), opts, ref.CheckoutPath, func() error {
				spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
				label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).dim("Syncing " + ref.RemoteURL)
				return withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label, func() error {
					var syncErr error
					result, syncErr = service.Sync(cmd.Context(), ref)
					return syncErr
				})
			})
			if err != nil {
				return err
			}
			return writeSyncResult(cmd, result, opts.JSONOutput)
		},
	}
}

func newStageCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stage",
		Short: "Copy the checkout into the execution root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := repositoryRef(opts)
			if err != nil {
				return err
			}
			execRoot, err := executionRoot(opts, ref.CheckoutPath)
			if err != nil {
				return err
			}
			service := newStageService(opts)
			var report domain.StageReport
			err = withCheckoutLock(cmd.Context(), opts, ref.CheckoutPath, func() error {
				var stageErr error
				report, stageErr = service.Stage(cmd.Context(), ref.CheckoutPath, execRoot, stageapp.Options{PruneStale: opts.PruneStale})
				return stageErr
			})
			if err != nil {
				return err
			}
			return writeStageReport(cmd, report, opts.JSONOutput)
		},
	}
}

func newStatusCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the checkout state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := newCheckoutService(opts)
			status, err := service.Status(cmd.Context(), domain.RepositoryRef{
				RemoteURL:    opts.RemoteURL,
				CheckoutPath: opts.CheckoutDir,
			})
			if err != nil {
				return err
			}
			return writeStatus(cmd, status, opts.JSONOutput)
		},
	}
}

func runSequence(cmd *cobra.Command, opts *RootOptions, plan bootstrapapp.Plan) error {
	var seqOpts bootstrapapp.SequenceOptions
	if opts.Lock {
		seqOpts.Locker = lockfile.NewLocker()
	}
	seq := bootstrapapp.NewSequenceWithOptions(
		newCheckoutService(opts),
		newStageService(opts),
		newLaunchService(opts),
		opts.logger,
		seqOpts,
	)
	code, err := seq.Run(cmd.Context(), plan)
	if err != nil {
		return err
	}
	if code != 0 {
		return applicationExit(code)
	}
	return nil
}

func buildPlan(opts *RootOptions, args []string) (bootstrapapp.Plan, error) {
	profile, err := domain.ParseProfile(opts.Profile)
	if err != nil {
		return bootstrapapp.Plan{}, fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	ref, err := repositoryRef(opts)
	if err != nil {
		return bootstrapapp.Plan{}, err
	}
	execRoot, err := executionRoot(opts, ref.CheckoutPath)
	if err != nil {
		return bootstrapapp.Plan{}, err
	}

	command := profile.Command()
	if len(args) > 0 {
		command = args
	} else if len(opts.Entrypoint) > 0 {
		command = opts.Entrypoint
	}
	ports := profile.Ports()
	if len(opts.Ports) > 0 {
		ports = opts.Ports
	}

	return bootstrapapp.Plan{
		Repository: ref,
		ExecRoot:   execRoot,
		Process:    domain.ProcessSpec{Command: command},
		Ports:      ports,
		Stage:      stageapp.Options{PruneStale: opts.PruneStale},
	}, nil
}

func repositoryRef(opts *RootOptions) (domain.RepositoryRef, error) {
	checkout, err := paths.Normalize(opts.CheckoutDir)
	if err != nil {
		return domain.RepositoryRef{}, err
	}
	if opts.Depth < 0 {
		return domain.RepositoryRef{}, fmt.Errorf("%w: depth must not be negative", errInvalidConfig)
	}
	return domain.RepositoryRef{
		RemoteURL:    strings.TrimSpace(opts.RemoteURL),
		CheckoutPath: checkout,
	}, nil
}

func executionRoot(opts *RootOptions, checkout string) (string, error) {
	if strings.TrimSpace(opts.ExecRoot) == "" {
		return checkout, nil
	}
	return paths.Normalize(opts.ExecRoot)
}

func newCheckoutService(opts *RootOptions) *checkoutapp.Service {
	storeOpts := gitrepo.StoreOptions{Depth: opts.Depth}
	if strings.EqualFold(strings.TrimSpace(opts.LogLevel), "debug") {
		storeOpts.Progress = progressWriter{logger: opts.logger}
	}
	return checkoutapp.NewService(gitrepo.NewStoreWithOptions(storeOpts), opts.logger)
}

func newStageService(opts *RootOptions) *stageapp.Service {
	return stageapp.NewService(filesystem.NewTreeCopier(), filesystem.ManifestStore{}, opts.logger)
}

func newLaunchService(opts *RootOptions) *launchapp.Service {
	return launchapp.NewService(process.NewRunner(), opts.logger)
}

func withCheckoutLock(ctx context.Context, opts *RootOptions, checkout string, fn func() error) error {
	if !opts.Lock {
		return fn()
	}
	lock, err := lockfile.NewLocker().Acquire(ctx, checkout)
	if err != nil {
		return fmt.Errorf("acquire checkout lock: %w", err)
	}
	defer func() {
		if err := lock.Release(); err != nil && opts.logger != nil {
			opts.logger.Warn("release checkout lock", "err", err)
		}
	}()
	return fn()
}

type syncOutput struct {
	Path   string `json:"path"`
	State  string `json:"state"`
	Action string `json:"action"`
	Head   string `json:"head,omitempty"`
}

func writeSyncResult(cmd *cobra.Command, result domain.SyncResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, syncOutput{
			Path:   result.Path,
			State:  string(result.State),
			Action: string(result.Action),
			Head:   result.HeadHash,
		})
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Path", result.Path); err != nil {
		return err
	}
	if err := writeKV(out, ui, "State", ui.ok(string(result.State))); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Action", string(result.Action)); err != nil {
		return err
	}
	return writeKV(out, ui, "Head", headOrNone(ui, result.HeadHash))
}

type stageOutput struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Skipped   bool   `json:"skipped"`
	Copied    int    `json:"copied"`
	Unchanged int    `json:"unchanged"`
	Pruned    int    `json:"pruned"`
}

func writeStageReport(cmd *cobra.Command, report domain.StageReport, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, stageOutput{
			Source:    report.Source,
			Target:    report.Target,
			Skipped:   report.Skipped,
			Copied:    report.Copied,
			Unchanged: report.Unchanged,
			Pruned:    report.Pruned,
		})
	}

	ui := newRenderer(out, asJSON)
	if report.Skipped {
		return writeKV(out, ui, "Staging", ui.dim("skipped (execution root is the checkout)"))
	}
	rows := [][2]string{
		{"Source", report.Source},
		{"Target", report.Target},
		{"Copied", strconv.Itoa(report.Copied)},
		{"Unchanged", strconv.Itoa(report.Unchanged)},
		{"Pruned", strconv.Itoa(report.Pruned)},
	}
	for _, row := range rows {
		if err := writeKV(out, ui, row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}

type statusOutput struct {
	Path    string `json:"path"`
	State   string `json:"state"`
	Remote  string `json:"remote,omitempty"`
	Head    string `json:"head,omitempty"`
	Shallow bool   `json:"shallow"`
}

func writeStatus(cmd *cobra.Command, status domain.CheckoutStatus, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, statusOutput{
			Path:    status.Path,
			State:   string(status.State),
			Remote:  status.RemoteURL,
			Head:    status.HeadHash,
			Shallow: status.Shallow,
		})
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Path", status.Path); err != nil {
		return err
	}
	state := ui.warn(string(status.State))
	if status.State == domain.CheckoutPresent {
		state = ui.ok(string(status.State))
	}
	if err := writeKV(out, ui, "State", state); err != nil {
		return err
	}
	if status.State != domain.CheckoutPresent {
		return nil
	}
	if err := writeKV(out, ui, "Remote", status.RemoteURL); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Head", headOrNone(ui, status.HeadHash)); err != nil {
		return err
	}
	return writeKV(out, ui, "Shallow", strconv.FormatBool(status.Shallow))
}

func headOrNone(ui renderer, head string) string {
	if head == "" {
		return ui.dim("(none)")
	}
	return ui.accent(head)
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeKV(out io.Writer, ui renderer, key, value string) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", ui.key(key), value)
	return err
}

// progressWriter turns git sideband progress into debug log lines.
type progressWriter struct {
	logger *slog.Logger
}

func (w progressWriter) Write(p []byte) (int, error) {
	if w.logger == nil {
		return len(p), nil
	}
	for _, line := range strings.FieldsFunc(string(p), func(r rune) bool { return r == '\n' || r == '\r' }) {
		if line = strings.TrimSpace(line); line != "" {
			w.logger.Debug("git progress", "line", line)
		}
	}
	return len(p), nil
}
