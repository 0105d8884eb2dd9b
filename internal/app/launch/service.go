package launch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/osvaldoandrade/edgeboot/internal/app/paths"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type Service struct {
	runner ProcessRunner
	logger *slog.Logger
}

func NewService(runner ProcessRunner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runner: runner, logger: logger}
}

// Start validates spec and starts the application in spec.Dir. An error
// means the application never ran.
func (s *Service) Start(ctx context.Context, spec domain.ProcessSpec, ports []int) (Process, error) {
	command := trimCommand(spec.Command)
	if len(command) == 0 {
		return nil, ErrEntryPointRequired
	}

	dir, err := paths.Normalize(spec.Dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("execution root: %w: %w", domain.ErrLaunchFailure, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("execution root %s is not a directory: %w", dir, domain.ErrLaunchFailure)
	}

	spec.Command = command
	spec.Dir = dir
	if spec.Env == nil {
		spec.Env = os.Environ()
	}

	s.logger.Info("launching application", "command", spec.String(), "dir", dir, "ports", ports)
	proc, err := s.runner.Start(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLaunchFailure, err)
	}
	return &loggedProcess{Process: proc, logger: s.logger}, nil
}

// Launch starts the application and blocks until it exits, returning the
// application's own exit code.
func (s *Service) Launch(ctx context.Context, spec domain.ProcessSpec, ports []int) (int, error) {
	proc, err := s.Start(ctx, spec, ports)
	if err != nil {
		return 0, err
	}
	return proc.Wait(ctx)
}

type loggedProcess struct {
	Process
	logger *slog.Logger
}

func (p *loggedProcess) Wait(ctx context.Context) (int, error) {
	code, err := p.Process.Wait(ctx)
	if err != nil {
		p.logger.Error("waiting for application", "err", err)
		return code, err
	}
	level := slog.LevelInfo
	if code != 0 {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "application exited", "code", code)
	return code, nil
}

func trimCommand(command []string) []string {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil
	}
	out := append([]string{}, command...)
	out[0] = strings.TrimSpace(out[0])
	return out
}
