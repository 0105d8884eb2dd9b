package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/osvaldoandrade/edgeboot/internal/app/launch"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

var forwardedSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

// Runner starts the application as a child process and stays in front of
// it: signals received by edgeboot are relayed, and the child's exit status
// becomes edgeboot's.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewRunner() *Runner {
	return &Runner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

type Process struct {
	cmd     *exec.Cmd
	signals chan os.Signal
	done    chan error
}

// Start launches the child. Signals are captured from this point on, so
// Wait must be called to relay them and release the subscription.
func (r *Runner) Start(ctx context.Context, spec domain.ProcessSpec) (launch.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(spec.Command) == 0 {
		return nil, errors.New("empty command")
	}

	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	signals := make(chan os.Signal, len(forwardedSignals))
	signal.Notify(signals, forwardedSignals...)

	if err := cmd.Start(); err != nil {
		signal.Stop(signals)
		return nil, fmt.Errorf("start %s: %w", spec.Command[0], err)
	}

	p := &Process{cmd: cmd, signals: signals, done: make(chan error, 1)}
	go func() {
		p.done <- cmd.Wait()
	}()
	return p, nil
}

// Wait blocks until the child exits and returns its exit code, 128+n when
// it was killed by signal n. Cancelling ctx sends SIGTERM to the child and
// keeps waiting.
func (p *Process) Wait(ctx context.Context) (int, error) {
	defer signal.Stop(p.signals)

	ctxDone := ctx.Done()
	for {
		select {
		case sig := <-p.signals:
			_ = p.cmd.Process.Signal(sig)
		case <-ctxDone:
			_ = p.cmd.Process.Signal(syscall.SIGTERM)
			ctxDone = nil
		case err := <-p.done:
			return exitCode(p.cmd, err)
		}
	}
}

func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

func exitCode(cmd *exec.Cmd, err error) (int, error) {
	state := cmd.ProcessState
	if state == nil {
		return 0, fmt.Errorf("wait: %w", err)
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal()), nil
	}
	return state.ExitCode(), nil
}
