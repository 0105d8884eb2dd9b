package process

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func run(ctx context.Context, t *testing.T, runner *Runner, spec domain.ProcessSpec) (int, error) {
	t.Helper()
	proc, err := runner.Start(ctx, spec)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	return proc.Wait(ctx)
}

func TestRunReturnsExitCode(t *testing.T) {
	requireShell(t)
	runner := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	code, err := run(context.Background(), t, runner, domain.ProcessSpec{Command: []string{"sh", "-c", "exit 3"}})
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
}

func TestRunUsesWorkingDirectory(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out bytes.Buffer
	runner := &Runner{Stdout: &out, Stderr: &bytes.Buffer{}}

	code, err := run(context.Background(), t, runner, domain.ProcessSpec{
		Command: []string{"sh", "-c", "ls; echo $EDGEBOOT_TEST"},
		Dir:     dir,
		Env:     append(os.Environ(), "EDGEBOOT_TEST=yes"),
	})
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "main.py") || !strings.Contains(out.String(), "yes") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunMissingEntryPoint(t *testing.T) {
	runner := &Runner{}
	_, err := runner.Start(context.Background(), domain.ProcessSpec{Command: []string{"edgeboot-definitely-missing"}})
	if err == nil {
		t.Fatalf("expected start error")
	}
}

func TestRunTerminatesChildOnCancel(t *testing.T) {
	requireShell(t)
	runner := &Runner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	code, err := run(ctx, t, runner, domain.ProcessSpec{Command: []string{"sleep", "30"}})
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if code != 128+15 {
		t.Fatalf("expected SIGTERM exit code, got %d", code)
	}
}
