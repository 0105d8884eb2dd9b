package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type Sequence struct {
	sync     Synchronizer
	stage    Stager
	launch   Launcher
	locker   Locker
	logger   *slog.Logger
	observer PhaseObserver
}

type SequenceOptions struct {
	// Locker, when set, serializes sync and staging against other
	// bootstraps sharing the checkout path.
	Locker   Locker
	Observer PhaseObserver
}

func NewSequence(sync Synchronizer, stage Stager, launch Launcher, logger *slog.Logger) *Sequence {
	return NewSequenceWithOptions(sync, stage, launch, logger, SequenceOptions{})
}

func NewSequenceWithOptions(sync Synchronizer, stage Stager, launch Launcher, logger *slog.Logger, opts SequenceOptions) *Sequence {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequence{
		sync:     sync,
		stage:    stage,
		launch:   launch,
		locker:   opts.Locker,
		logger:   logger,
		observer: opts.Observer,
	}
}

// Run executes sync, staging and launch in order. On success it blocks for
// the lifetime of the application and returns its exit code. Any failure
// before the application starts ends the run in ABORTED.
func (s *Sequence) Run(ctx context.Context, plan Plan) (int, error) {
	machine := domain.NewPhaseMachine()

	root, err := s.prepare(ctx, plan, machine)
	if err != nil {
		return 0, err
	}

	spec := plan.Process
	spec.Dir = root

	proc, err := s.launch.Start(ctx, spec, plan.Ports)
	if err != nil {
		return 0, s.fail(machine, domain.PhaseLaunchFailed, err)
	}
	s.advance(machine, domain.PhaseRunning, nil)
	return proc.Wait(ctx)
}

// prepare syncs and stages under the checkout lock and returns the
// execution root.
func (s *Sequence) prepare(ctx context.Context, plan Plan, machine *domain.PhaseMachine) (string, error) {
	source := plan.Repository.CheckoutPath
	target := plan.ExecRoot
	if target == "" {
		target = source
	}

	if s.locker != nil && !plan.SkipSync {
		lock, err := s.locker.Acquire(ctx, source)
		if err != nil {
			return "", s.fail(machine, domain.PhaseSyncFailed, fmt.Errorf("acquire checkout lock: %w", err), domain.PhaseSyncing)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				s.logger.Warn("release checkout lock", "err", err)
			}
		}()
	}

	if plan.SkipSync {
		s.advance(machine, domain.PhaseSynced, nil)
		s.advance(machine, domain.PhaseStaging, nil)
		s.advance(machine, domain.PhaseStaged, nil)
		return target, nil
	}

	s.advance(machine, domain.PhaseSyncing, nil)
	if _, err := s.sync.Sync(ctx, plan.Repository); err != nil {
		return "", s.fail(machine, domain.PhaseSyncFailed, err)
	}
	s.advance(machine, domain.PhaseSynced, nil)

	s.advance(machine, domain.PhaseStaging, nil)
	if _, err := s.stage.Stage(ctx, source, target, plan.Stage); err != nil {
		if !errors.Is(err, domain.ErrStageFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrStageFailure, err)
		}
		return "", s.fail(machine, domain.PhaseStageFailed, err)
	}
	s.advance(machine, domain.PhaseStaged, nil)
	return target, nil
}

// fail moves the machine through any lead-in phases, into the failure
// phase and then ABORTED, and returns err.
func (s *Sequence) fail(machine *domain.PhaseMachine, failed domain.Phase, err error, leadIn ...domain.Phase) error {
	for _, phase := range leadIn {
		s.advance(machine, phase, nil)
	}
	s.advance(machine, failed, err)
	s.advance(machine, domain.PhaseAborted, err)
	return err
}

func (s *Sequence) advance(machine *domain.PhaseMachine, to domain.Phase, cause error) {
	from := machine.Current()
	if err := machine.Advance(to); err != nil {
		s.logger.Error("phase machine", "err", err)
		return
	}
	if cause != nil {
		s.logger.Error("bootstrap phase", "from", string(from), "to", string(to), "err", cause)
	} else {
		s.logger.Info("bootstrap phase", "from", string(from), "to", string(to))
	}
	if s.observer != nil {
		s.observer(from, to, cause)
	}
}
