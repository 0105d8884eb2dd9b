package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Clone fetches url into path, limited to the configured depth. path must
// be missing or an empty directory. A directory created here is removed
// again if the clone fails.
func (s *Store) Clone(ctx context.Context, url, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	created, err := ensureClonePath(path)
	if err != nil {
		return err
	}

	auth, err := authForURL(url)
	if err != nil {
		return err
	}

	_, err = git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:          url,
		Auth:         auth,
		RemoteName:   defaultRemoteName,
		Depth:        s.options.Depth,
		SingleBranch: true,
		Tags:         git.NoTags,
		Progress:     s.options.Progress,
	})
	if err != nil {
		if created {
			_ = os.RemoveAll(path)
		} else {
			_ = clearDir(path)
		}
		return classifyRemoteErr("clone git repo", err)
	}

	return nil
}

func ensureClonePath(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("clone path is a file: %w", os.ErrExist)
		}
		empty, err := isEmptyDir(path)
		if err != nil {
			return false, err
		}
		if !empty {
			return false, fmt.Errorf("clone path is not empty: %w", os.ErrExist)
		}
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("check clone path: %w", err)
	}

	parent := filepath.Dir(path)
	if parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return false, fmt.Errorf("create parent directory: %w", err)
		}
	}

	return true, nil
}

// clearDir empties a directory that was empty before the clone started.
func clearDir(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
