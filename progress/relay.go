package progress

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Stats counts what a Relay has done with the messages delivered to it.
type Stats struct {
	Delivered int // Messages of any kind.
	Decoded   int // Progress messages that parsed.
	Dropped   int // Progress messages that failed to parse.
	Emitted   int // Fractions reported to the callback.
	Rejected  int // Resets rejected with ErrUninitialized.
}

// Relay is the entry point for engine messages. Progress messages are
// decoded and tracked; other kinds go to the MessageFunc observer, if any.
//
// HandleMessage may be called from several engine threads. The
// parse-then-track sequence is serialized so that messages are applied in
// delivery order.
type Relay struct {
	mu        sync.Mutex
	parser    *Parser
	tracker   *Tracker
	stats     Stats
	log       Logger
	onMessage MessageFunc
	cancelled atomic.Bool
}

// NewRelay creates a Relay reporting fractions to fn. fn runs with the
// relay's lock held and must not call back into the relay.
func NewRelay(fn Func, opts ...Option) *Relay {
	cfg := newConfig(opts)
	log := cfg.logger
	if log == nil {
		log = nopLogger{}
	}
	return &Relay{
		parser:    NewParser(opts...),
		tracker:   NewTracker(fn, opts...),
		log:       log,
		onMessage: cfg.onMessage,
	}
}

// HandleMessage processes one engine message and returns the reply for the
// engine. Progress messages are answered with ReplyOK. Other kinds are only
// observed and answered with ReplyNone, leaving the choice of button to the
// engine. After Cancel every message is answered with ReplyCancel.
func (r *Relay) HandleMessage(kind MessageKind, text string) Reply {
	r.mu.Lock()
	r.stats.Delivered++
	progressMsg := kind.Type() == MessageProgress
	if progressMsg {
		r.handleProgress(text)
	}
	r.mu.Unlock()

	if !progressMsg && r.onMessage != nil {
		r.onMessage(kind.Type(), text)
	}

	switch {
	case r.cancelled.Load():
		return ReplyCancel
	case progressMsg:
		return ReplyOK
	default:
		return ReplyNone
	}
}

// handleProgress must be called with r.mu held.
func (r *Relay) handleProgress(text string) {
	rec, err := r.parser.Decode(text)
	if err != nil {
		r.stats.Dropped++
		r.log.Debug("progress message dropped (%v): %q", err, text)
		return
	}
	r.stats.Decoded++

	emitted, err := r.tracker.Apply(rec)
	if errors.Is(err, ErrUninitialized) {
		r.stats.Rejected++
		r.log.Warn("progress reset with zero total ignored: %q", text)
		return
	}
	if emitted {
		r.stats.Emitted++
	}
}

// Cancel makes the relay answer every further message with ReplyCancel,
// which asks the engine to abort the operation.
func (r *Relay) Cancel() {
	r.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (r *Relay) Cancelled() bool {
	return r.cancelled.Load()
}

// State returns a copy of the tracked session state.
func (r *Relay) State() SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracker.State()
}

// Stats returns a copy of the relay counters.
func (r *Relay) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
