package session

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func TestAdvance(t *testing.T) {
	window := 2 * time.Second
	confirming := State{Phase: PhaseConfirming, Candidate: 7, Since: t0}

	tests := []struct {
		name        string
		state       State
		obs         Observation
		now         time.Time
		wantVerdict Verdict
		wantState   State
	}{
		{
			name:        "no match from idle",
			obs:         Observation{Match: false, Label: 7},
			now:         t0,
			wantVerdict: VerdictUnknown,
		},
		{
			name:        "no match resets confirmation",
			state:       confirming,
			obs:         Observation{Match: false, Label: 7},
			now:         t0.Add(time.Second),
			wantVerdict: VerdictUnknown,
		},
		{
			name:        "duplicate never enters confirmation",
			obs:         Observation{Match: true, Label: 7, Duplicate: true},
			now:         t0,
			wantVerdict: VerdictAlreadyRegistered,
		},
		{
			name:        "duplicate resets confirmation",
			state:       confirming,
			obs:         Observation{Match: true, Label: 7, Duplicate: true},
			now:         t0.Add(time.Second),
			wantVerdict: VerdictAlreadyRegistered,
		},
		{
			name:        "match starts confirmation",
			obs:         Observation{Match: true, Label: 7},
			now:         t0,
			wantVerdict: VerdictRecognizing,
			wantState:   confirming,
		},
		{
			name:        "same candidate inside window keeps confirming",
			state:       confirming,
			obs:         Observation{Match: true, Label: 7},
			now:         t0.Add(time.Second),
			wantVerdict: VerdictConfirming,
			wantState:   confirming,
		},
		{
			name:        "commit exactly at window boundary",
			state:       confirming,
			obs:         Observation{Match: true, Label: 7},
			now:         t0.Add(window),
			wantVerdict: VerdictCommit,
		},
		{
			name:        "commit past window boundary",
			state:       confirming,
			obs:         Observation{Match: true, Label: 7},
			now:         t0.Add(window + 300*time.Millisecond),
			wantVerdict: VerdictCommit,
		},
		{
			name:        "different candidate restarts the window",
			state:       confirming,
			obs:         Observation{Match: true, Label: 9},
			now:         t0.Add(3 * time.Second),
			wantVerdict: VerdictRecognizing,
			wantState:   State{Phase: PhaseConfirming, Candidate: 9, Since: t0.Add(3 * time.Second)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, out := Advance(tc.state, tc.obs, tc.now, window)
			if out.Verdict != tc.wantVerdict {
				t.Fatalf("verdict = %v, want %v", out.Verdict, tc.wantVerdict)
			}
			if next != tc.wantState {
				t.Fatalf("state = %+v, want %+v", next, tc.wantState)
			}
		})
	}
}

func TestAdvanceProgress(t *testing.T) {
	window := 2 * time.Second
	state := State{Phase: PhaseConfirming, Candidate: 7, Since: t0}

	_, out := Advance(state, Observation{Match: true, Label: 7}, t0.Add(time.Second), window)
	if out.Verdict != VerdictConfirming {
		t.Fatalf("verdict = %v, want %v", out.Verdict, VerdictConfirming)
	}
	if out.Progress != 0.5 {
		t.Fatalf("progress = %v, want 0.5", out.Progress)
	}
}
