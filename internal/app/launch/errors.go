package launch

import "errors"

var ErrEntryPointRequired = errors.New("entry point command is required")
