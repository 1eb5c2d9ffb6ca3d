package installer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crafted-tech/msiflow/msi"
	"github.com/crafted-tech/msiflow/progress"
)

func TestTranscriptRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewTranscriptWriter(&buf)

	require.NoError(t, w.WriteMessage(progress.MessageProgress, "1: 0 2: 200 3: 0 4: 0"))
	require.NoError(t, w.WriteMessage(progress.MessageActionStart|0x30, "Action 10:00:00: InstallFiles. \"Copying\"\nnew files"))
	require.NoError(t, w.WriteResult(EngineResult{Op: "install", Code: msi.CodeSuccessRebootRequired}))

	assert.True(t, strings.HasPrefix(buf.String(), `MSG:0A000000:"1: 0 2: 200 3: 0 4: 0"`+"\n"))

	lines, err := ReadTranscript(&buf)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, TranscriptLine{Type: "MSG", Kind: progress.MessageProgress, Text: "1: 0 2: 200 3: 0 4: 0"}, lines[0])
	assert.Equal(t, progress.MessageActionStart|0x30, lines[1].Kind)
	assert.Equal(t, "Action 10:00:00: InstallFiles. \"Copying\"\nnew files", lines[1].Text)
	require.NotNil(t, lines[2].Result)
	assert.Equal(t, EngineResult{Op: "install", Code: 3010}, *lines[2].Result)
}

func TestReadTranscriptSkipsMalformed(t *testing.T) {
	in := strings.Join([]string{
		"# comment",
		"MSG:ZZ:\"x\"",
		"MSG:0A000000:unquoted",
		"RESULT:{broken",
		`MSG:0A000000:"1: 2 2: 10"`,
	}, "\n")

	lines, err := ReadTranscript(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "1: 2 2: 10", lines[0].Text)
}

func TestReplayThroughRelay(t *testing.T) {
	in := strings.Join([]string{
		`MSG:0A000000:"1: 0 2: 1000 3: 0 4: 0"`,
		`MSG:0A000000:"1: 2 2: 250 3: 0"`,
		`MSG:08000000:"Action 10:00:00: InstallFiles. Copying new files"`,
		`MSG:0A000000:"1: 2 2: 500 3: 0"`,
		`RESULT:{"op":"install","code":0}`,
	}, "\n") + "\n"

	var values []float64
	relay := progress.NewRelay(func(f float64) { values = append(values, f) })

	res, err := Replay(strings.NewReader(in), relay)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NoError(t, res.Err())
	assert.Equal(t, []float64{0, 0.25, 0.5}, values)
	assert.Equal(t, 4, relay.Stats().Delivered)
}

func TestReplayWithoutResult(t *testing.T) {
	relay := progress.NewRelay(nil)
	res, err := Replay(strings.NewReader(`MSG:0A000000:"1: 0 2: 10 3: 0 4: 0"`), relay)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestEngineResultErr(t *testing.T) {
	assert.NoError(t, EngineResult{Op: "install"}.Err())

	err := EngineResult{Op: "install", Code: msi.CodeInstallFailure}.Err()
	var engineErr *msi.Error
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, uint32(msi.CodeInstallFailure), engineErr.Code)

	assert.EqualError(t, EngineResult{Op: "install", Error: "no engine"}.Err(), "no engine")
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, EngineResult{Op: "remove"}, resultFor("remove", nil))
	assert.Equal(t, EngineResult{Op: "remove", Code: 1605},
		resultFor("remove", &msi.Error{Op: "MsiConfigureProduct", Code: 1605}))
	assert.Equal(t, EngineResult{Op: "remove", Error: msi.ErrUnsupported.Error()},
		resultFor("remove", msi.ErrUnsupported))
}

func TestTranscriptTee(t *testing.T) {
	var buf bytes.Buffer
	w := NewTranscriptWriter(&buf)

	var values []float64
	relay := progress.NewRelay(func(f float64) { values = append(values, f) })
	h := w.Tee(relay)

	assert.Equal(t, progress.ReplyOK, h.HandleMessage(progress.MessageProgress, "1: 0 2: 4 3: 0 4: 0"))
	assert.Equal(t, []float64{0}, values)
	assert.Equal(t, "MSG:0A000000:\"1: 0 2: 4 3: 0 4: 0\"\n", buf.String())

	var nilWriter *TranscriptWriter
	assert.Same(t, relay, nilWriter.Tee(relay))
	assert.NoError(t, nilWriter.WriteMessage(progress.MessageProgress, "x"))
	assert.NoError(t, nilWriter.Close())
}

func TestTranscriptFileAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.txt")
	w, err := CreateTranscript(path)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	r := NewTranscriptReader(path)

	require.NoError(t, w.WriteMessage(progress.MessageProgress, "1: 0 2: 10 3: 0 4: 0"))
	lines, err := r.ReadNewLines()
	require.NoError(t, err)
	require.Len(t, lines, 1)

	// A partial line is left for the next read.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString(`MSG:0A000000:"1: 2`)
	require.NoError(t, err)
	lines, err = r.ReadNewLines()
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = f.WriteString(` 2: 5"` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	lines, err = r.ReadNewLines()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "1: 2 2: 5", lines[0].Text)

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteMessage(progress.MessageProgress, "late"), os.ErrClosed)
}

func TestFollowTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.txt")
	var fractions []float64
	var mu sync.Mutex
	relay := progress.NewRelay(func(f float64) {
		mu.Lock()
		defer mu.Unlock()
		fractions = append(fractions, f)
	})

	ctx, cancel := context.WithCancel(context.Background())
	type followResult struct {
		res *EngineResult
		err error
	}
	done := make(chan followResult, 1)
	go func() {
		res, err := Follow(ctx, NewTranscriptReader(path), relay, time.Millisecond)
		done <- followResult{res, err}
	}()

	// The transcript is created after following started.
	time.Sleep(5 * time.Millisecond)
	w, err := CreateTranscript(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteMessage(progress.MessageProgress, "1: 0 2: 100 3: 0 4: 0"))
	require.NoError(t, w.WriteMessage(progress.MessageProgress, "1: 2 2: 40 3: 0"))
	require.NoError(t, w.WriteResult(EngineResult{Op: "install", Code: msi.CodeSuccessRebootRequired}))
	require.NoError(t, w.Close())

	assert.Eventually(t, func() bool {
		return relay.Stats().Delivered == 2
	}, time.Second, time.Millisecond)
	cancel()

	got := <-done
	require.NoError(t, got.err)
	require.NotNil(t, got.res)
	assert.Equal(t, EngineResult{Op: "install", Code: msi.CodeSuccessRebootRequired}, *got.res)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{0, 0.4}, fractions)
}

func TestCreateTranscriptTemp(t *testing.T) {
	w, err := CreateTranscript("")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(w.Path()) })

	assert.Contains(t, filepath.Base(w.Path()), "msiflow-transcript-")
	require.NoError(t, w.Close())
}
