package launch

import (
	"context"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type ProcessRunner interface {
	Start(ctx context.Context, spec domain.ProcessSpec) (Process, error)
}

type Process interface {
	Wait(ctx context.Context) (int, error)
}
