package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

// Inspect reports whether path holds a checkout of remoteURL. A missing
// path or an empty directory is ABSENT; anything else that is not a
// non-bare clone of remoteURL is ErrSyncCorruptLocal. An empty remoteURL
// skips the remote check.
func (s *Store) Inspect(ctx context.Context, path, remoteURL string) (domain.CheckoutStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.CheckoutStatus{}, err
	}

	status := domain.CheckoutStatus{Path: path, State: domain.CheckoutAbsent}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return status, nil
		}
		return domain.CheckoutStatus{}, fmt.Errorf("check checkout path: %w", err)
	}
	if !info.IsDir() {
		return domain.CheckoutStatus{}, fmt.Errorf("checkout path is a file: %w", domain.ErrSyncCorruptLocal)
	}

	empty, err := isEmptyDir(path)
	if err != nil {
		return domain.CheckoutStatus{}, err
	}
	if empty {
		return status, nil
	}

	repo, err := git.PlainOpen(path)
	if err != nil {
		return domain.CheckoutStatus{}, fmt.Errorf("open git repo: %w: %w", domain.ErrSyncCorruptLocal, err)
	}
	if _, err := repo.Worktree(); err != nil {
		return domain.CheckoutStatus{}, fmt.Errorf("open worktree: %w: %w", domain.ErrSyncCorruptLocal, err)
	}

	remote, err := repo.Remote(defaultRemoteName)
	if err != nil {
		return domain.CheckoutStatus{}, fmt.Errorf("read git remote: %w: %w", domain.ErrSyncCorruptLocal, err)
	}
	if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
		status.RemoteURL = cfg.URLs[0]
	}
	if remoteURL != "" && !sameRemote(status.RemoteURL, remoteURL) {
		return domain.CheckoutStatus{}, fmt.Errorf("origin is %q, expected %q: %w", status.RemoteURL, remoteURL, domain.ErrSyncCorruptLocal)
	}

	ref, err := repo.Head()
	if err == nil {
		status.HeadHash = ref.Hash().String()
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return domain.CheckoutStatus{}, fmt.Errorf("read HEAD: %w: %w", domain.ErrSyncCorruptLocal, err)
	}

	shallow, err := repo.Storer.Shallow()
	if err != nil {
		return domain.CheckoutStatus{}, fmt.Errorf("read shallow list: %w", err)
	}
	status.Shallow = len(shallow) > 0
	status.State = domain.CheckoutPresent
	return status, nil
}

func isEmptyDir(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, fmt.Errorf("read checkout path: %w", err)
	}
	return len(entries) == 0, nil
}
