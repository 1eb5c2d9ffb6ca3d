package progress

// Logger receives diagnostics from the relay. *installer.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// MessageFunc observes engine messages that are not progress messages
// (errors, warnings, action text and so on).
type MessageFunc func(kind MessageKind, text string)

type config struct {
	rawCharCodes bool
	accumulate   bool
	logger       Logger
	onMessage    MessageFunc
}

// Option configures a Parser, Tracker or Relay.
type Option func(*config)

// WithRawCharCodes makes the field scanner accumulate raw character codes
// (value*10 + c) instead of digit values (value*10 + c - '0'). Older
// consumers of the protocol computed field values this way; use it only to
// reproduce their output.
func WithRawCharCodes() Option {
	return func(c *config) {
		c.rawCharCodes = true
	}
}

// WithAccumulation makes delta messages advance the tracker's current
// position. By default every delta is measured from the position set by the
// most recent reset.
func WithAccumulation() Option {
	return func(c *config) {
		c.accumulate = true
	}
}

// WithLogger sets the logger used by the relay for dropped messages.
func WithLogger(l Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMessageFunc registers an observer for non-progress engine messages.
func WithMessageFunc(fn MessageFunc) Option {
	return func(c *config) {
		c.onMessage = fn
	}
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
