package checkout

import (
	"context"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type Repository interface {
	Inspect(ctx context.Context, path, remoteURL string) (domain.CheckoutStatus, error)
	Clone(ctx context.Context, url, path string) error
	Pull(ctx context.Context, path string) (bool, error)
}
