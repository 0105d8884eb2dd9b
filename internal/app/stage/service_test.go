package stage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type fakeCopier struct {
	result domain.CopyResult
	err    error
	calls  int
	src    string
	dst    string
}

func (f *fakeCopier) CopyTree(ctx context.Context, src, dst string) (domain.CopyResult, error) {
	f.calls++
	f.src = src
	f.dst = dst
	return f.result, f.err
}

type fakeManifests struct {
	previous []string
	saved    []string
	removed  []string
	loadErr  error
	saveErr  error
}

func (f *fakeManifests) LoadManifest(ctx context.Context, dir string) ([]string, error) {
	return f.previous, f.loadErr
}

func (f *fakeManifests) SaveManifest(ctx context.Context, dir string, files []string) error {
	f.saved = files
	return f.saveErr
}

func (f *fakeManifests) RemoveFile(ctx context.Context, dir, rel string) error {
	f.removed = append(f.removed, rel)
	return nil
}

func TestStageSkipsSamePath(t *testing.T) {
	copier := &fakeCopier{}
	svc := NewService(copier, &fakeManifests{}, nil)

	report, err := svc.Stage(context.Background(), "app", "./app/", Options{})
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if !report.Skipped {
		t.Fatalf("expected staging to be skipped")
	}
	if copier.calls != 0 {
		t.Fatalf("expected no copy, got %d calls", copier.calls)
	}
}

func TestStageRejectsNestedPaths(t *testing.T) {
	svc := NewService(&fakeCopier{}, &fakeManifests{}, nil)
	_, err := svc.Stage(context.Background(), "/tmp/repo", "/tmp/repo/app", Options{})
	if !errors.Is(err, domain.ErrStageFailure) {
		t.Fatalf("expected ErrStageFailure, got %v", err)
	}
}

func TestStageCopiesAndRecordsManifest(t *testing.T) {
	copier := &fakeCopier{result: domain.CopyResult{Files: []string{"main.py", "lib/util.py"}, Copied: 1, Unchanged: 1}}
	manifests := &fakeManifests{previous: []string{"old.py"}}
	svc := NewService(copier, manifests, nil)

	report, err := svc.Stage(context.Background(), "/tmp/repo", "/app", Options{})
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if report.Copied != 1 || report.Unchanged != 1 || report.Pruned != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if copier.src != filepath.Clean("/tmp/repo") || copier.dst != filepath.Clean("/app") {
		t.Fatalf("unexpected copy paths %q -> %q", copier.src, copier.dst)
	}
	if !reflect.DeepEqual(manifests.saved, []string{"main.py", "lib/util.py"}) {
		t.Fatalf("unexpected manifest %v", manifests.saved)
	}
	if len(manifests.removed) != 0 {
		t.Fatalf("expected no pruning without PruneStale, got %v", manifests.removed)
	}
}

func TestStagePrunesStaleFiles(t *testing.T) {
	copier := &fakeCopier{result: domain.CopyResult{Files: []string{"main.py"}}}
	manifests := &fakeManifests{previous: []string{"main.py", "gone.py", "lib/gone.py"}}
	svc := NewService(copier, manifests, nil)

	report, err := svc.Stage(context.Background(), "/tmp/repo", "/app", Options{PruneStale: true})
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if report.Pruned != 2 {
		t.Fatalf("expected 2 pruned files, got %d", report.Pruned)
	}
	if !reflect.DeepEqual(manifests.removed, []string{"gone.py", "lib/gone.py"}) {
		t.Fatalf("unexpected removals %v", manifests.removed)
	}
}

func TestStageWrapsCopyFailure(t *testing.T) {
	copyErr := errors.New("no space left on device")
	svc := NewService(&fakeCopier{err: copyErr}, &fakeManifests{}, nil)

	_, err := svc.Stage(context.Background(), "/tmp/repo", "/app", Options{})
	if !errors.Is(err, domain.ErrStageFailure) {
		t.Fatalf("expected ErrStageFailure, got %v", err)
	}
	if !errors.Is(err, copyErr) {
		t.Fatalf("expected wrapped copy error, got %v", err)
	}
}

func TestStageWrapsManifestFailure(t *testing.T) {
	svc := NewService(&fakeCopier{}, &fakeManifests{saveErr: errors.New("read-only")}, nil)
	_, err := svc.Stage(context.Background(), "/tmp/repo", "/app", Options{})
	if !errors.Is(err, domain.ErrStageFailure) {
		t.Fatalf("expected ErrStageFailure, got %v", err)
	}
}
