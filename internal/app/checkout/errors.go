package checkout

import "errors"

var ErrRemoteURLRequired = errors.New("remote url is required")
