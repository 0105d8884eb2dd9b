package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Pull fast-forwards the checkout at repoPath to origin's HEAD. It reports
// whether HEAD moved; shallow checkouts can pull successfully without
// receiving anything new.
func (s *Store) Pull(ctx context.Context, repoPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return false, fmt.Errorf("open git repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}

	remote, err := repo.Remote(defaultRemoteName)
	if err != nil {
		return false, fmt.Errorf("read git remote: %w", err)
	}
	remoteURL := ""
	if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
		remoteURL = cfg.URLs[0]
	}
	auth, err := authForURL(remoteURL)
	if err != nil {
		return false, err
	}

	before, err := headHash(repo)
	if err != nil {
		return false, err
	}

	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:   defaultRemoteName,
		SingleBranch: true,
		Auth:         auth,
		Progress:     s.options.Progress,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, nil
	}
	if err != nil {
		return false, classifyRemoteErr("pull git repo", err)
	}

	after, err := headHash(repo)
	if err != nil {
		return false, err
	}
	return before != after, nil
}

func headHash(repo *git.Repository) (plumbing.Hash, error) {
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, nil
		}
		return plumbing.ZeroHash, fmt.Errorf("read HEAD: %w", err)
	}
	return ref.Hash(), nil
}
