package filesystem

import (
	"context"
	"fmt"
	"os"
)

type ConfigSource struct{}

func (ConfigSource) ReadConfig(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return data, nil
}
