package checkout

import (
	"context"
	"log/slog"
	"strings"

	"github.com/osvaldoandrade/edgeboot/internal/app/paths"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Sync brings ref.CheckoutPath to the remote's current revision: a shallow
// clone when the checkout is absent, a fast-forward pull when present.
// Every failure is returned as is; there is no retry and no fallback to the
// existing copy.
func (s *Service) Sync(ctx context.Context, ref domain.RepositoryRef) (domain.SyncResult, error) {
	url := strings.TrimSpace(ref.RemoteURL)
	if url == "" {
		return domain.SyncResult{}, ErrRemoteURLRequired
	}

	absPath, err := paths.Normalize(ref.CheckoutPath)
	if err != nil {
		return domain.SyncResult{}, err
	}

	status, err := s.repo.Inspect(ctx, absPath, url)
	if err != nil {
		return domain.SyncResult{}, err
	}

	result := domain.SyncResult{Path: absPath, State: domain.CheckoutPresent}
	switch status.State {
	case domain.CheckoutAbsent:
		s.logger.Info("cloning repository", "remote", url, "path", absPath)
		if err := s.repo.Clone(ctx, url, absPath); err != nil {
			return domain.SyncResult{}, err
		}
		result.Action = domain.SyncCloned
	default:
		s.logger.Info("pulling repository", "remote", url, "path", absPath, "head", status.HeadHash)
		updated, err := s.repo.Pull(ctx, absPath)
		if err != nil {
			return domain.SyncResult{}, err
		}
		result.Action = domain.SyncUpToDate
		if updated {
			result.Action = domain.SyncPulled
		}
	}

	after, err := s.repo.Inspect(ctx, absPath, url)
	if err != nil {
		return domain.SyncResult{}, err
	}
	result.HeadHash = after.HeadHash

	s.logger.Info("repository synchronized", "action", string(result.Action), "head", result.HeadHash)
	return result, nil
}

// Status inspects the checkout without touching it.
func (s *Service) Status(ctx context.Context, ref domain.RepositoryRef) (domain.CheckoutStatus, error) {
	absPath, err := paths.Normalize(ref.CheckoutPath)
	if err != nil {
		return domain.CheckoutStatus{}, err
	}
	status, err := s.repo.Inspect(ctx, absPath, strings.TrimSpace(ref.RemoteURL))
	if err != nil {
		return domain.CheckoutStatus{}, err
	}
	status.Path = absPath
	return status, nil
}
