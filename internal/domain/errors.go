package domain

import "errors"

var ErrSyncUnreachable = errors.New("remote repository unreachable")
var ErrSyncCorruptLocal = errors.New("checkout path is not a valid checkout of the remote")
var ErrSyncConflict = errors.New("local checkout cannot be fast-forwarded")
var ErrStageFailure = errors.New("staging failed")
var ErrLaunchFailure = errors.New("launch failed")
var ErrInvalidTransition = errors.New("invalid phase transition")
