package engine

// Phase is the session state machine position.
//
// Transitions: Idle -> ClockStarted -> PowerOnReset ->
// {RunningVector}* -> Finalizing -> Passed | Failed.
// No transition skips PowerOnReset; vector phases are strictly
// sequential.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseClockStarted
	PhasePowerOnReset
	PhaseRunningVector
	PhaseFinalizing
	PhasePassed
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseIdle:          "idle",
	PhaseClockStarted:  "clock_started",
	PhasePowerOnReset:  "power_on_reset",
	PhaseRunningVector: "running_vector",
	PhaseFinalizing:    "finalizing",
	PhasePassed:        "passed",
	PhaseFailed:        "failed",
}

// String returns the phase name.
func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// Terminal reports whether the phase ends the session.
func (p Phase) Terminal() bool {
	return p == PhasePassed || p == PhaseFailed
}
