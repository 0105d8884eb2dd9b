package edgebootsdk

import (
	"context"

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
)

type (
	CheckoutStatus = domain.CheckoutStatus
	SyncResult     = domain.SyncResult
	StageReport    = domain.StageReport
	Phase          = domain.Phase
)

// Client runs the bootstrap steps in-process, for hosts that embed edgeboot
// instead of exec'ing the CLI.
type Client struct {
	cfg      Config
	ref      domain.RepositoryRef
	execRoot string

	checkout *checkoutapp.Service
	stage    *stageapp.Service
	launch   *launchapp.Service
	locker   *lockfile.Locker
}

func New(cfg Config) (*Client, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	checkoutDir, err := paths.Normalize(normalized.CheckoutDir)
	if err != nil {
		return nil, err
	}
	execRoot, err := paths.Normalize(normalized.ExecRoot)
	if err != nil {
		return nil, err
	}

	logger := normalized.Logger
	store := gitrepo.NewStoreWithOptions(gitrepo.StoreOptions{Depth: normalized.Depth})
	client := &Client{
		cfg:      normalized,
		ref:      domain.RepositoryRef{RemoteURL: normalized.RemoteURL, CheckoutPath: checkoutDir},
		execRoot: execRoot,
		checkout: checkoutapp.NewService(store, logger),
		stage:    stageapp.NewService(filesystem.NewTreeCopier(), filesystem.ManifestStore{}, logger),
		launch:   launchapp.NewService(process.NewRunner(), logger),
	}
	if normalized.Lock {
		client.locker = lockfile.NewLocker()
	}
	return client, nil
}

func (c *Client) Status(ctx context.Context) (CheckoutStatus, error) {
	return c.checkout.Status(ctx, c.ref)
}

func (c *Client) Sync(ctx context.Context) (SyncResult, error) {
	var result SyncResult
	err := c.locked(ctx, func() error {
		var err error
		result, err = c.checkout.Sync(ctx, c.ref)
		return err
	})
	return result, err
}

func (c *Client) Stage(ctx context.Context) (StageReport, error) {
	var report StageReport
	err := c.locked(ctx, func() error {
		var err error
		report, err = c.stage.Stage(ctx, c.ref.CheckoutPath, c.execRoot, stageapp.Options{PruneStale: c.cfg.PruneStale})
		return err
	})
	return report, err
}

// Run syncs, stages and launches, blocking until the application exits.
// observer may be nil.
func (c *Client) Run(ctx context.Context, observer func(from, to Phase, err error)) (int, error) {
	return c.run(ctx, false, observer)
}

// Launch starts the application from the execution root without syncing.
func (c *Client) Launch(ctx context.Context) (int, error) {
	return c.run(ctx, true, nil)
}

func (c *Client) run(ctx context.Context, skipSync bool, observer func(from, to Phase, err error)) (int, error) {
	opts := bootstrapapp.SequenceOptions{Observer: observer}
	if c.locker != nil {
		opts.Locker = c.locker
	}
	seq := bootstrapapp.NewSequenceWithOptions(c.checkout, c.stage, c.launch, c.cfg.Logger, opts)
	return seq.Run(ctx, bootstrapapp.Plan{
		Repository: c.ref,
		ExecRoot:   c.execRoot,
		Process:    domain.ProcessSpec{Command: c.cfg.Command},
		Ports:      c.cfg.Ports,
		Stage:      stageapp.Options{PruneStale: c.cfg.PruneStale},
		SkipSync:   skipSync,
	})
}

func (c *Client) locked(ctx context.Context, fn func() error) error {
	if c.locker == nil {
		return fn()
	}
	lock, err := c.locker.Acquire(ctx, c.ref.CheckoutPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			c.cfg.Logger.Warn("release checkout lock", "err", err)
		}
	}()
	return fn()
}
