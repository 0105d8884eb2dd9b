package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	checkoutapp "github.com/osvaldoandrade/edgeboot/internal/app/checkout"
	launchapp "github.com/osvaldoandrade/edgeboot/internal/app/launch"
	"github.com/osvaldoandrade/edgeboot/internal/app/paths"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type ErrorKind string

const (
	KindInternal    ErrorKind = "internal"
	KindValidation  ErrorKind = "validation"
	KindUnreachable ErrorKind = "sync_unreachable"
	KindCorrupt     ErrorKind = "sync_corrupt_local"
	KindConflict    ErrorKind = "sync_conflict"
	KindStage       ErrorKind = "stage_failure"
	KindLaunch      ErrorKind = "launch_failure"
	KindApplication ErrorKind = "application"
)

const (
	ExitInternal    = 1
	ExitInvalid     = 2
	ExitUnreachable = 3
	ExitCorrupt     = 4
	ExitConflict    = 5
	ExitStage       = 6
	ExitLaunch      = 7
)

type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

func (e ExitError) Unwrap() error {
	return e.Err
}

// applicationExit carries the application's own non-zero exit code out of
// a command without treating it as an edgeboot failure.
func applicationExit(code int) error {
	return ExitError{
		Code:    code,
		Kind:    KindApplication,
		Message: fmt.Sprintf("application exited with code %d", code),
	}
}

func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	switch {
	case errors.Is(err, domain.ErrSyncCorruptLocal):
		return ExitError{Code: ExitCorrupt, Kind: KindCorrupt, Err: err}
	case errors.Is(err, domain.ErrSyncConflict):
		return ExitError{Code: ExitConflict, Kind: KindConflict, Err: err}
	case errors.Is(err, domain.ErrSyncUnreachable):
		return ExitError{Code: ExitUnreachable, Kind: KindUnreachable, Err: err}
	case errors.Is(err, domain.ErrStageFailure):
		return ExitError{Code: ExitStage, Kind: KindStage, Err: err}
	case errors.Is(err, domain.ErrLaunchFailure),
		errors.Is(err, launchapp.ErrEntryPointRequired):
		return ExitError{Code: ExitLaunch, Kind: KindLaunch, Err: err}
	case errors.Is(err, paths.ErrPathRequired),
		errors.Is(err, checkoutapp.ErrRemoteURLRequired),
		errors.Is(err, errInvalidConfig):
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	message := errorMessage(exitErr)
	if asJSON {
		payload := struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}{
			Code:    exitErr.Code,
			Kind:    string(exitErr.Kind),
			Message: message,
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(w, false)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	prefix = ui.err(prefix)
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, message)
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}
