package progress

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	mu    sync.Mutex
	debug []string
	warn  []string
}

func (l *captureLogger) Debug(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, fmt.Sprintf(format, args...))
}

func (l *captureLogger) Warn(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn = append(l.warn, fmt.Sprintf(format, args...))
}

func TestRelaySequence(t *testing.T) {
	var r recorder
	relay := NewRelay(r.emit)

	msgs := []string{
		"1: 0 2: 100 3: 0 4: 1",
		"1: 1 2: 5 3: 1",
		"1: 2 2: 10",
		"1: 3 2: 40",
		"1: 2 2: 30",
	}
	for _, m := range msgs {
		assert.Equal(t, ReplyOK, relay.HandleMessage(MessageProgress, m))
	}

	assert.Equal(t, []float64{0, 0.1, 0.3}, r.values)

	st := relay.State()
	assert.True(t, st.ScriptInProgress)
	assert.True(t, st.ActionDataEnabled)
	assert.Equal(t, 100, st.TotalTicks)

	assert.Equal(t, Stats{Delivered: 5, Decoded: 5, Emitted: 3}, relay.Stats())
}

func TestRelayDropsMalformed(t *testing.T) {
	var r recorder
	log := &captureLogger{}
	relay := NewRelay(r.emit, WithLogger(log))

	assert.Equal(t, ReplyOK, relay.HandleMessage(MessageProgress, "9: 5"))
	assert.Equal(t, ReplyOK, relay.HandleMessage(MessageProgress, ""))

	assert.Empty(t, r.values)
	assert.Equal(t, Stats{Delivered: 2, Dropped: 2}, relay.Stats())
	assert.Len(t, log.debug, 2)
}

func TestRelayRejectsZeroTotal(t *testing.T) {
	var r recorder
	log := &captureLogger{}
	relay := NewRelay(r.emit, WithLogger(log))

	relay.HandleMessage(MessageProgress, "1: 0 2: 0 3: 0 4: 0")

	assert.Empty(t, r.values)
	assert.Equal(t, 1, relay.Stats().Rejected)
	require.Len(t, log.warn, 1)
	assert.Contains(t, log.warn[0], "zero total")
}

func TestRelayRoutesOtherKinds(t *testing.T) {
	var r recorder
	var seen []MessageKind
	relay := NewRelay(r.emit, WithMessageFunc(func(kind MessageKind, text string) {
		seen = append(seen, kind)
	}))

	// Error messages carry icon and button flags in the low bits.
	reply := relay.HandleMessage(MessageError|0x00000010, "Error 1722.")
	assert.Equal(t, ReplyNone, reply)
	assert.Equal(t, []MessageKind{MessageError}, seen)
	assert.Empty(t, r.values)
}

func TestRelayObservedMessagesLeaveButtonsToEngine(t *testing.T) {
	relay := NewRelay(nil, WithMessageFunc(func(MessageKind, string) {}))

	// MB_RETRYCANCEL with a warning icon: IDOK is not a valid answer.
	retryCancel := MessageError | 0x5 | 0x30
	assert.Equal(t, ReplyNone, relay.HandleMessage(retryCancel, "Error 1306. Another application has exclusive access."))
	assert.Equal(t, ReplyNone, relay.HandleMessage(MessageWarning|0x2, "Warning 1910."))
	assert.Equal(t, ReplyOK, relay.HandleMessage(MessageProgress, "1: 0 2: 10 3: 0 4: 0"))

	relay.Cancel()
	assert.Equal(t, ReplyCancel, relay.HandleMessage(retryCancel, "Error 1306."))
}

func TestRelayUnhandledKind(t *testing.T) {
	relay := NewRelay(nil)
	assert.Equal(t, ReplyNone, relay.HandleMessage(MessageActionStart, "Action 12:00:00: InstallFiles."))
	assert.Equal(t, 1, relay.Stats().Delivered)
}

func TestRelayCancel(t *testing.T) {
	var r recorder
	relay := NewRelay(r.emit)

	relay.Cancel()
	assert.True(t, relay.Cancelled())
	assert.Equal(t, ReplyCancel, relay.HandleMessage(MessageProgress, "1: 0 2: 10 3: 0 4: 0"))
	assert.Equal(t, ReplyCancel, relay.HandleMessage(MessageInfo, "info"))

	// Messages are still tracked after cancel.
	assert.Equal(t, []float64{0}, r.values)
}

func TestRelayConcurrentDelivery(t *testing.T) {
	var mu sync.Mutex
	count := 0
	relay := NewRelay(func(float64) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	relay.HandleMessage(MessageProgress, "1: 0 2: 1000 3: 0 4: 0")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				relay.HandleMessage(MessageProgress, "1: 2 2: 1")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 401, count)
	assert.Equal(t, 401, relay.Stats().Emitted)
}

func TestRelayLegacyOptions(t *testing.T) {
	var r recorder
	relay := NewRelay(r.emit, WithRawCharCodes(), WithAccumulation())

	// With raw character codes "10" decodes as 538.
	relay.HandleMessage(MessageProgress, "1: 0 2: 10 3: 0 4: 0")
	assert.Equal(t, 538, relay.State().TotalTicks)
}

func TestLogMode(t *testing.T) {
	assert.Equal(t, uint32(1<<10), LogMode(MessageProgress))
	assert.Equal(t, uint32(1<<10|1<<1|1), DefaultLogMode)
	assert.Equal(t, uint32(0), LogMode())
}

func TestMessageKindString(t *testing.T) {
	assert.Equal(t, "progress", MessageProgress.String())
	assert.Equal(t, "error", (MessageError | 0x30).String())
	assert.Equal(t, "message(0x2A000000)", MessageKind(0x2A000000).String())
}
