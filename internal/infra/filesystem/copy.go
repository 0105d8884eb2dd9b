package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
	"github.com/osvaldoandrade/edgeboot/internal/infra/hash"
)

const gitDirName = ".git"

// TreeCopier mirrors a checkout into the execution root. Files are replaced
// through a rename so a running process never reads a half-written file;
// files whose content already matches are left alone.
type TreeCopier struct {
	hasher hash.SHA256
}

func NewTreeCopier() TreeCopier {
	return TreeCopier{}
}

func (c TreeCopier) CopyTree(ctx context.Context, src, dst string) (domain.CopyResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.CopyResult{}, err
	}

	info, err := os.Stat(src)
	if err != nil {
		return domain.CopyResult{}, fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return domain.CopyResult{}, fmt.Errorf("source %s is not a directory", src)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return domain.CopyResult{}, fmt.Errorf("create execution root: %w", err)
	}

	var result domain.CopyResult
	err = filepath.WalkDir(src, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if entry.Name() == gitDirName {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if rel == domain.StagingManifestName {
			return nil
		}

		target := filepath.Join(dst, rel)
		info, err := entry.Info()
		if err != nil {
			return err
		}

		switch {
		case entry.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode()&os.ModeSymlink != 0:
			changed, err := copySymlink(path, target)
			if err != nil {
				return err
			}
			if changed {
				result.Copied++
			} else {
				result.Unchanged++
			}
		case info.Mode().IsRegular():
			same, err := c.sameContent(path, target)
			if err != nil {
				return err
			}
			if same {
				result.Unchanged++
			} else {
				if err := copyFile(path, target, info.Mode().Perm()); err != nil {
					return err
				}
				result.Copied++
			}
		default:
			return nil
		}

		result.Files = append(result.Files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return domain.CopyResult{}, fmt.Errorf("copy tree: %w", err)
	}

	return result, nil
}

func (c TreeCopier) sameContent(src, dst string) (bool, error) {
	dstInfo, err := os.Lstat(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !dstInfo.Mode().IsRegular() {
		return false, nil
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	if srcInfo.Size() != dstInfo.Size() || srcInfo.Mode().Perm() != dstInfo.Mode().Perm() {
		return false, nil
	}

	srcSum, err := c.hasher.SumFile(src)
	if err != nil {
		return false, err
	}
	dstSum, err := c.hasher.SumFile(dst)
	if err != nil {
		return false, err
	}
	return srcSum == dstSum, nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".edgeboot-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if info, err := os.Lstat(dst); err == nil && info.IsDir() {
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
	}
	return os.Rename(tmpName, dst)
}

// copySymlink recreates the link at dst and reports false when dst already
// pointed at the same target.
func copySymlink(src, dst string) (bool, error) {
	link, err := os.Readlink(src)
	if err != nil {
		return false, err
	}
	if current, err := os.Readlink(dst); err == nil && current == link {
		return false, nil
	}
	if err := os.RemoveAll(dst); err != nil {
		return false, err
	}
	return true, os.Symlink(link, dst)
}
