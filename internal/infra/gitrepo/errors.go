package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

// classifyRemoteErr maps a clone or pull failure onto the synchronizer's
// error taxonomy. Transport, DNS, auth and not-found failures all surface
// as an unreachable remote.
func classifyRemoteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConflict(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrSyncConflict, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrSyncUnreachable, err)
}

func isConflict(err error) bool {
	return errors.Is(err, git.ErrNonFastForwardUpdate) ||
		errors.Is(err, git.ErrUnstagedChanges) ||
		strings.Contains(err.Error(), "non-fast-forward update")
}
