package stage

import (
	"context"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type Copier interface {
	CopyTree(ctx context.Context, src, dst string) (domain.CopyResult, error)
}

type ManifestStore interface {
	LoadManifest(ctx context.Context, dir string) ([]string, error)
	SaveManifest(ctx context.Context, dir string, files []string) error
	RemoveFile(ctx context.Context, dir, rel string) error
}
