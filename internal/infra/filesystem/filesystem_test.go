package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return out
}

func TestCopyTreeCopiesFilesAndSkipsGit(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "app")
	writeTree(t, src, map[string]string{
		"main.py":         "v1\n",
		"lib/util.py":     "x = 1\n",
		".git/HEAD":       "ref: refs/heads/main\n",
		".env.example":    "PORT=8000\n",
		"middleware/a.py": "a\n",
	})

	result, err := NewTreeCopier().CopyTree(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("CopyTree returned error: %v", err)
	}
	if result.Copied != 4 || result.Unchanged != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	got := readTree(t, dst)
	want := map[string]string{
		"main.py":         "v1\n",
		"lib/util.py":     "x = 1\n",
		".env.example":    "PORT=8000\n",
		"middleware/a.py": "a\n",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	files := append([]string{}, result.Files...)
	sort.Strings(files)
	if !reflect.DeepEqual(files, []string{".env.example", "lib/util.py", "main.py", "middleware/a.py"}) {
		t.Fatalf("unexpected file list %v", files)
	}
}

func TestCopyTreeOverwritesAndIsIdempotent(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{"main.py": "v2\n", "new.py": "n\n"})
	writeTree(t, dst, map[string]string{"main.py": "v1\n", "local.cfg": "keep\n"})

	copier := NewTreeCopier()
	ctx := context.Background()
	first, err := copier.CopyTree(ctx, src, dst)
	if err != nil {
		t.Fatalf("CopyTree returned error: %v", err)
	}
	if first.Copied != 2 {
		t.Fatalf("expected 2 copied, got %+v", first)
	}
	afterFirst := readTree(t, dst)

	second, err := copier.CopyTree(ctx, src, dst)
	if err != nil {
		t.Fatalf("CopyTree returned error: %v", err)
	}
	if second.Copied != 0 || second.Unchanged != 2 {
		t.Fatalf("expected all files unchanged, got %+v", second)
	}
	if !reflect.DeepEqual(afterFirst, readTree(t, dst)) {
		t.Fatalf("second copy changed the execution root")
	}
	if afterFirst["main.py"] != "v2\n" || afterFirst["local.cfg"] != "keep\n" {
		t.Fatalf("unexpected content %v", afterFirst)
	}
}

func TestCopyTreeUnchangedSymlink(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{"config/app.yaml": "a: 1\n"})
	if err := os.Symlink("config/app.yaml", filepath.Join(src, "app.yaml")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	copier := NewTreeCopier()
	ctx := context.Background()
	first, err := copier.CopyTree(ctx, src, dst)
	if err != nil {
		t.Fatalf("CopyTree returned error: %v", err)
	}
	if first.Copied != 2 || first.Unchanged != 0 {
		t.Fatalf("expected file and link copied, got %+v", first)
	}
	link, err := os.Readlink(filepath.Join(dst, "app.yaml"))
	if err != nil || link != "config/app.yaml" {
		t.Fatalf("expected staged link to config/app.yaml, got %q (%v)", link, err)
	}

	second, err := copier.CopyTree(ctx, src, dst)
	if err != nil {
		t.Fatalf("CopyTree returned error: %v", err)
	}
	if second.Copied != 0 || second.Unchanged != 2 {
		t.Fatalf("expected file and link unchanged, got %+v", second)
	}
}

func TestCopyTreePreservesMode(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	script := filepath.Join(src, "start.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewTreeCopier().CopyTree(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyTree returned error: %v", err)
	}
	info, err := os.Stat(filepath.Join(dst, "start.sh"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected mode 0755, got %v", info.Mode().Perm())
	}
}

func TestCopyTreeMissingSource(t *testing.T) {
	_, err := NewTreeCopier().CopyTree(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := ManifestStore{}
	ctx := context.Background()

	files, err := store.LoadManifest(ctx, dir)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if files != nil {
		t.Fatalf("expected no manifest, got %v", files)
	}

	if err := store.SaveManifest(ctx, dir, []string{"main.py", "lib/util.py"}); err != nil {
		t.Fatalf("SaveManifest returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, domain.StagingManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if string(data) != `{"files":["lib/util.py","main.py"],"version":1}`+"\n" {
		t.Fatalf("unexpected manifest bytes %q", data)
	}

	files, err = store.LoadManifest(ctx, dir)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"lib/util.py", "main.py"}) {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestRemoveFileRefusesEscape(t *testing.T) {
	dir := t.TempDir()
	store := ManifestStore{}
	if err := store.RemoveFile(context.Background(), dir, "../outside"); err == nil {
		t.Fatalf("expected escape to be refused")
	}

	writeTree(t, dir, map[string]string{"gone.py": "x"})
	if err := store.RemoveFile(context.Background(), dir, "gone.py"); err != nil {
		t.Fatalf("RemoveFile returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.py")); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, got %v", err)
	}
	if err := store.RemoveFile(context.Background(), dir, "gone.py"); err != nil {
		t.Fatalf("expected removing a missing file to succeed, got %v", err)
	}
}
