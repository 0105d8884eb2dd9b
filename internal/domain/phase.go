package domain

import "fmt"

type Phase string

const (
	PhaseInit         Phase = "INIT"
	PhaseSyncing      Phase = "SYNCING"
	PhaseSynced       Phase = "SYNCED"
	PhaseSyncFailed   Phase = "SYNC_FAILED"
	PhaseStaging      Phase = "STAGING"
	PhaseStaged       Phase = "STAGED"
	PhaseStageFailed  Phase = "STAGE_FAILED"
	PhaseLaunchFailed Phase = "LAUNCH_FAILED"
	PhaseRunning      Phase = "RUNNING"
	PhaseAborted      Phase = "ABORTED"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseInit:         {PhaseSyncing, PhaseSynced},
	PhaseSyncing:      {PhaseSynced, PhaseSyncFailed},
	PhaseSynced:       {PhaseStaging},
	PhaseSyncFailed:   {PhaseAborted},
	PhaseStaging:      {PhaseStaged, PhaseStageFailed},
	PhaseStageFailed:  {PhaseAborted},
	PhaseStaged:       {PhaseRunning, PhaseLaunchFailed},
	PhaseLaunchFailed: {PhaseAborted},
}

func (p Phase) CanTransition(to Phase) bool {
	for _, next := range phaseTransitions[p] {
		if next == to {
			return true
		}
	}
	return false
}

func (p Phase) IsTerminal() bool {
	return p == PhaseRunning || p == PhaseAborted
}

func (p Phase) IsFailure() bool {
	return p == PhaseSyncFailed || p == PhaseStageFailed || p == PhaseLaunchFailed
}

// PhaseMachine tracks a single bootstrap run. INIT → SYNCED is only taken
// when synchronization is skipped.
type PhaseMachine struct {
	current Phase
	history []Phase
}

func NewPhaseMachine() *PhaseMachine {
	return &PhaseMachine{current: PhaseInit, history: []Phase{PhaseInit}}
}

func (m *PhaseMachine) Current() Phase {
	return m.current
}

func (m *PhaseMachine) History() []Phase {
	return append([]Phase(nil), m.history...)
}

func (m *PhaseMachine) Advance(to Phase) error {
	if !m.current.CanTransition(to) {
		return fmt.Errorf("%s -> %s: %w", m.current, to, ErrInvalidTransition)
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}
