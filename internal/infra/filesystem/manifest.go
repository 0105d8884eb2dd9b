package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/osvaldoandrade/edgeboot/internal/app/paths"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

const manifestVersion = 1

type stagingManifest struct {
	Version int      `json:"version"`
	Files   []string `json:"files"`
}

// ManifestStore keeps the list of staged files next to them in the
// execution root.
type ManifestStore struct{}

func (ManifestStore) LoadManifest(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, domain.StagingManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read staging manifest: %w", err)
	}

	var manifest stagingManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode staging manifest: %w", err)
	}
	if manifest.Version != manifestVersion {
		return nil, fmt.Errorf("unsupported staging manifest version %d", manifest.Version)
	}
	return manifest.Files, nil
}

func (ManifestStore) SaveManifest(ctx context.Context, dir string, files []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := append([]string{}, files...)
	sort.Strings(sorted)

	data, err := json.Marshal(stagingManifest{Version: manifestVersion, Files: sorted})
	if err != nil {
		return fmt.Errorf("encode staging manifest: %w", err)
	}
	value := jsontext.Value(data)
	if err := value.Canonicalize(); err != nil {
		return fmt.Errorf("canonicalize staging manifest: %w", err)
	}

	path := filepath.Join(dir, domain.StagingManifestName)
	if err := os.WriteFile(path, append([]byte(value), '\n'), 0o644); err != nil {
		return fmt.Errorf("write staging manifest: %w", err)
	}
	return nil
}

// RemoveFile deletes rel below dir. Paths that escape dir are refused.
func (ManifestStore) RemoveFile(ctx context.Context, dir, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(dir, filepath.FromSlash(rel))
	if target == dir || !paths.Within(dir, target) {
		return fmt.Errorf("refusing to remove %q outside %s", rel, dir)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", rel, err)
	}
	return nil
}
