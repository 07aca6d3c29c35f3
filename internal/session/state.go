package session

import "time"

// The confirmation state machine tracks one candidate identity at a time.
// A candidate must persist continuously for the whole confirmation window
// before attendance is committed; any mismatch, confidence drop, duplicate
// or face loss resets the machine to idle.

// Phase is the machine's position: idle or confirming a candidate.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConfirming
)

// State is the machine's value between frames. The zero value is idle.
type State struct {
	Phase     Phase
	Candidate int
	Since     time.Time
}

// Observation is one classified face in the current frame.
type Observation struct {
	// Match reports whether the classifier distance passed the
	// confidence gate.
	Match bool
	Label int
	// Duplicate reports that (Label, event) already has an attendance
	// record. Only meaningful when Match is true.
	Duplicate bool
}

// Verdict is what the loop should do and render for this observation.
type Verdict int

const (
	// VerdictUnknown: confidence gate failed; render unknown, reset.
	VerdictUnknown Verdict = iota
	// VerdictAlreadyRegistered: user already attended; reset, never
	// re-enter confirmation.
	VerdictAlreadyRegistered
	// VerdictRecognizing: new candidate, confirmation just started.
	VerdictRecognizing
	// VerdictConfirming: same candidate, window still running.
	VerdictConfirming
	// VerdictCommit: window elapsed; the loop re-checks the duplicate
	// condition and writes the attendance record.
	VerdictCommit
)

// Outcome pairs the verdict with the confirmation progress fraction
// (meaningful for VerdictConfirming).
type Outcome struct {
	Verdict  Verdict
	Progress float64
}

// Advance transitions the machine for one observation. Pure: the caller
// supplies now, so timing is fully testable.
func Advance(s State, obs Observation, now time.Time, window time.Duration) (State, Outcome) {
	if !obs.Match {
		return State{}, Outcome{Verdict: VerdictUnknown}
	}
	if obs.Duplicate {
		return State{}, Outcome{Verdict: VerdictAlreadyRegistered}
	}

	if s.Phase == PhaseConfirming && s.Candidate == obs.Label {
		elapsed := now.Sub(s.Since)
		if elapsed >= window {
			return State{}, Outcome{Verdict: VerdictCommit}
		}
		return s, Outcome{
			Verdict:  VerdictConfirming,
			Progress: float64(elapsed) / float64(window),
		}
	}

	// New candidate (or idle): start the window.
	return State{Phase: PhaseConfirming, Candidate: obs.Label, Since: now},
		Outcome{Verdict: VerdictRecognizing}
}
