package bootstrap

import (
	"context"

	"github.com/osvaldoandrade/edgeboot/internal/app/launch"
	"github.com/osvaldoandrade/edgeboot/internal/app/stage"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type Synchronizer interface {
	Sync(ctx context.Context, ref domain.RepositoryRef) (domain.SyncResult, error)
}

type Stager interface {
	Stage(ctx context.Context, source, target string, opts stage.Options) (domain.StageReport, error)
}

type Launcher interface {
	Start(ctx context.Context, spec domain.ProcessSpec, ports []int) (launch.Process, error)
}

type Locker interface {
	Acquire(ctx context.Context, checkoutPath string) (Releaser, error)
}

type Releaser interface {
	Release() error
}
