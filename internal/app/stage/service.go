package stage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osvaldoandrade/edgeboot/internal/app/paths"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type Service struct {
	copier    Copier
	manifests ManifestStore
	logger    *slog.Logger
}

func NewService(copier Copier, manifests ManifestStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{copier: copier, manifests: manifests, logger: logger}
}

func (s *Service) Stage(ctx context.Context, source, target string, opts Options) (domain.StageReport, error) {
	src, err := paths.Normalize(source)
	if err != nil {
		return domain.StageReport{}, err
	}
	dst, err := paths.Normalize(target)
	if err != nil {
		return domain.StageReport{}, err
	}

	report := domain.StageReport{Source: src, Target: dst}
	if src == dst {
		report.Skipped = true
		s.logger.Info("staging skipped", "reason", "execution root is the checkout", "path", src)
		return report, nil
	}
	if paths.Within(src, dst) || paths.Within(dst, src) {
		return domain.StageReport{}, fmt.Errorf("%q and %q are nested: %w", src, dst, domain.ErrStageFailure)
	}

	var previous []string
	if opts.PruneStale {
		previous, err = s.manifests.LoadManifest(ctx, dst)
		if err != nil {
			return domain.StageReport{}, stageErr("load staging manifest", err)
		}
	}

	result, err := s.copier.CopyTree(ctx, src, dst)
	if err != nil {
		return domain.StageReport{}, stageErr("copy checkout", err)
	}
	report.Copied = result.Copied
	report.Unchanged = result.Unchanged

	if opts.PruneStale {
		for _, rel := range staleFiles(previous, result.Files) {
			s.logger.Debug("removing stale file", "file", rel)
			if err := s.manifests.RemoveFile(ctx, dst, rel); err != nil {
				return domain.StageReport{}, stageErr("prune stale file", err)
			}
			report.Pruned++
		}
	}

	if err := s.manifests.SaveManifest(ctx, dst, result.Files); err != nil {
		return domain.StageReport{}, stageErr("save staging manifest", err)
	}

	s.logger.Info("checkout staged",
		"source", src,
		"target", dst,
		"copied", report.Copied,
		"unchanged", report.Unchanged,
		"pruned", report.Pruned,
	)
	return report, nil
}

func staleFiles(previous, current []string) []string {
	if len(previous) == 0 {
		return nil
	}
	keep := make(map[string]struct{}, len(current))
	for _, rel := range current {
		keep[rel] = struct{}{}
	}
	var stale []string
	for _, rel := range previous {
		if _, ok := keep[rel]; !ok {
			stale = append(stale, rel)
		}
	}
	return stale
}

func stageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStageFailure, err)
}
