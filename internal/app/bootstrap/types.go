package bootstrap

import (
	"github.com/osvaldoandrade/edgeboot/internal/app/stage"
	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

// Plan is everything one run needs, fixed before the run starts.
type Plan struct {
	Repository domain.RepositoryRef
	ExecRoot   string
	Process    domain.ProcessSpec
	Ports      []int
	Stage      stage.Options
	// SkipSync launches whatever is already in the execution root.
	SkipSync bool
}

// PhaseObserver is told about every phase change, including failures.
type PhaseObserver func(from, to domain.Phase, err error)
