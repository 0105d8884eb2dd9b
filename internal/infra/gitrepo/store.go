package gitrepo

import (
	"io"
	"strings"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

const defaultRemoteName = "origin"

type Store struct {
	options StoreOptions
}

type StoreOptions struct {
	// Depth limits the history fetched by the initial clone. Zero fetches
	// full history.
	Depth    int
	Progress io.Writer
}

func NewStore() *Store {
	return &Store{options: StoreOptions{Depth: domain.DefaultCloneDepth}}
}

func NewStoreWithOptions(options StoreOptions) *Store {
	if options.Depth < 0 {
		options.Depth = 0
	}
	return &Store{options: options}
}

func sameRemote(a, b string) bool {
	return normalizeRemote(a) == normalizeRemote(b)
}

func normalizeRemote(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")
	return url
}
