package progress

// Func receives a progress fraction. Values are normally in [0, 1] but are
// not clamped.
type Func func(fraction float64)

// SessionState is the progress state carried between messages for one
// install, advertise or remove operation.
type SessionState struct {
	TotalTicks        int  // Ticks in the current range; 0 until the first reset.
	CurrentTicks      int  // Position set by the last reset.
	Forward           bool // Ticks count up when true, down when false.
	ScriptInProgress  bool // The engine is running its install script.
	ActionDataEnabled bool // Action data messages carry tick increments.
}

func initialState() SessionState {
	return SessionState{Forward: true}
}

// Tracker applies decoded records to a SessionState and reports progress
// fractions to a callback.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	state      SessionState
	emit       Func
	accumulate bool
}

// NewTracker creates a Tracker that reports to fn. A nil fn is allowed; the
// state is still tracked. Only WithAccumulation affects tracking.
func NewTracker(fn Func, opts ...Option) *Tracker {
	cfg := newConfig(opts)
	return &Tracker{
		state:      initialState(),
		emit:       fn,
		accumulate: cfg.accumulate,
	}
}

// Apply updates the session state from rec and reports at most one fraction.
// It returns whether a fraction was reported.
//
// A reset with a zero tick total updates the state but returns
// ErrUninitialized instead of reporting.
func (t *Tracker) Apply(rec Record) (bool, error) {
	switch rec.Kind {
	case KindReset:
		t.state.TotalTicks = rec.Field2
		t.state.Forward = rec.Field3 == 0
		if t.state.Forward {
			t.state.CurrentTicks = 0
		} else {
			t.state.CurrentTicks = t.state.TotalTicks
		}
		t.state.ScriptInProgress = rec.Field4 == 1
		if t.state.TotalTicks == 0 {
			return false, ErrUninitialized
		}
		t.report(t.state.CurrentTicks)
		return true, nil

	case KindStepInfo:
		t.state.ActionDataEnabled = rec.Field3 != 0
		return false, nil

	case KindDelta:
		if t.state.TotalTicks == 0 {
			return false, nil
		}
		delta := rec.Field2
		if !t.state.Forward {
			delta = -delta
		}
		pos := t.state.CurrentTicks + delta
		if t.accumulate {
			t.state.CurrentTicks = pos
		}
		t.report(pos)
		return true, nil

	default:
		// KindTotalAdjust and unknown kinds.
		return false, nil
	}
}

// State returns a copy of the current session state.
func (t *Tracker) State() SessionState {
	return t.state
}

// Reset returns the tracker to its initial state.
func (t *Tracker) Reset() {
	t.state = initialState()
}

func (t *Tracker) report(ticks int) {
	if t.emit == nil {
		return
	}
	t.emit(float64(ticks) / float64(t.state.TotalTicks))
}
