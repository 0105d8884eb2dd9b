package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrPathRequired = errors.New("path is required")

func Normalize(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrPathRequired
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	return absPath, nil
}

// Within reports whether child is parent or lies below it. Both paths must
// already be absolute and clean.
func Within(parent, child string) bool {
	if parent == child {
		return true
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
