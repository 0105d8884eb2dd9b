package edgebootsdk

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree returned error: %v", err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	if _, err := wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "edgeboot", Email: "edgeboot@example.com", When: time.Now()},
	}); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
}

func TestClientRunPicksUpUpstreamChanges(t *testing.T) {
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		t.Skip("git-upload-pack not available")
	}
	remoteDir := t.TempDir()
	remote, err := git.PlainInit(remoteDir, false)
	if err != nil {
		t.Fatalf("PlainInit returned error: %v", err)
	}
	commitFile(t, remote, remoteDir, "main.py", "v1\n")

	base := t.TempDir()
	execRoot := filepath.Join(base, "app")
	client, err := New(Config{
		RemoteURL:   "file://" + remoteDir,
		CheckoutDir: filepath.Join(base, "repo"),
		ExecRoot:    execRoot,
		Command:     []string{"true"},
		Lock:        true,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	run := func(want string) {
		t.Helper()
		code, err := client.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		data, err := os.ReadFile(filepath.Join(execRoot, "main.py"))
		if err != nil {
			t.Fatalf("read staged main.py: %v", err)
		}
		if string(data) != want {
			t.Fatalf("expected staged %q, got %q", want, data)
		}
	}

	run("v1\n")
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if !status.Shallow {
		t.Fatalf("expected a shallow checkout by default")
	}

	commitFile(t, remote, remoteDir, "main.py", "v2\n")
	run("v2\n")
	run("v2\n")

	result, err := client.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.Action != "up_to_date" {
		t.Fatalf("expected up_to_date on unchanged remote, got %s", result.Action)
	}
}
