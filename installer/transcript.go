package installer

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/crafted-tech/msiflow/msi"
	"github.com/crafted-tech/msiflow/progress"
)

// Transcript line prefixes. A transcript holds one engine message per MSG
// line and ends with a RESULT line per engine call:
//
//	MSG:0A000000:"1: 0 2: 1000 3: 0 4: 0"
//	RESULT:{"op":"install","code":0}
const (
	TranscriptPrefixMessage = "MSG:"
	TranscriptPrefixResult  = "RESULT:"
)

// EngineResult is the outcome of one engine call as recorded in a transcript.
type EngineResult struct {
	Op    string `json:"op"`
	Code  uint32 `json:"code"`
	Error string `json:"error,omitempty"`
}

// Err converts the result back into an engine error, nil on success.
func (r EngineResult) Err() error {
	if r.Code == msi.CodeSuccess && r.Error == "" {
		return nil
	}
	if r.Code == msi.CodeSuccess {
		return errors.New(r.Error)
	}
	return &msi.Error{Op: r.Op, Code: r.Code}
}

func resultFor(op string, err error) EngineResult {
	res := EngineResult{Op: op}
	if err == nil {
		return res
	}
	var engineErr *msi.Error
	if errors.As(err, &engineErr) {
		res.Code = engineErr.Code
		return res
	}
	res.Error = err.Error()
	return res
}

// TranscriptWriter records engine messages as they are delivered. Engine
// threads may deliver concurrently, so writes are serialized. All methods
// are no-ops on a nil *TranscriptWriter.
type TranscriptWriter struct {
	mu   sync.Mutex
	w    io.Writer
	f    *os.File
	path string
}

// CreateTranscript creates a transcript file at path. An empty path creates
// a new file in the temp directory.
func CreateTranscript(path string) (*TranscriptWriter, error) {
	var (
		f   *os.File
		err error
	)
	if path == "" {
		f, err = os.CreateTemp("", "msiflow-transcript-*.txt")
	} else {
		f, err = os.Create(path)
	}
	if err != nil {
		return nil, fmt.Errorf("create transcript: %w", err)
	}
	return &TranscriptWriter{w: f, f: f, path: f.Name()}, nil
}

// NewTranscriptWriter records to w. Close does not close w.
func NewTranscriptWriter(w io.Writer) *TranscriptWriter {
	return &TranscriptWriter{w: w}
}

// Path returns the transcript file path, or "" when writing to a plain
// io.Writer.
func (t *TranscriptWriter) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// WriteMessage records one engine message.
func (t *TranscriptWriter) WriteMessage(kind progress.MessageKind, text string) error {
	return t.writeLine(fmt.Sprintf("%s%08X:%s", TranscriptPrefixMessage, uint32(kind), strconv.Quote(text)))
}

// WriteResult records the outcome of an engine call.
func (t *TranscriptWriter) WriteResult(res EngineResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return t.writeLine(TranscriptPrefixResult + string(data))
}

// Tee returns a handler that records each message before passing it to h.
// On a nil writer it returns h unchanged.
func (t *TranscriptWriter) Tee(h msi.MessageHandler) msi.MessageHandler {
	if t == nil {
		return h
	}
	return &teeHandler{t: t, next: h}
}

// Close closes the transcript file.
func (t *TranscriptWriter) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	t.w = nil
	return err
}

func (t *TranscriptWriter) writeLine(line string) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return os.ErrClosed
	}
	if _, err := fmt.Fprintln(t.w, line); err != nil {
		return err
	}
	if t.f != nil {
		return t.f.Sync()
	}
	return nil
}

type teeHandler struct {
	t    *TranscriptWriter
	next msi.MessageHandler
}

func (h *teeHandler) HandleMessage(kind progress.MessageKind, text string) progress.Reply {
	// A recording failure must not change what the engine sees.
	_ = h.t.WriteMessage(kind, text)
	return h.next.HandleMessage(kind, text)
}

// TranscriptLine is a parsed transcript line.
type TranscriptLine struct {
	Type   string               // "MSG" or "RESULT"
	Kind   progress.MessageKind // Only set for MSG lines
	Text   string               // Only set for MSG lines
	Result *EngineResult        // Only set for RESULT lines
}

// ReadTranscript parses every recognised line in r. Unrecognised or
// malformed lines are skipped.
func ReadTranscript(r io.Reader) ([]TranscriptLine, error) {
	var lines []TranscriptLine
	_, err := scanTranscript(r, true, func(l TranscriptLine) {
		lines = append(lines, l)
	})
	return lines, err
}

// TranscriptReader follows a transcript file that is still being written,
// returning only lines added since the previous read.
type TranscriptReader struct {
	path   string
	offset int64
}

// NewTranscriptReader creates a reader for the transcript at path.
func NewTranscriptReader(path string) *TranscriptReader {
	return &TranscriptReader{path: path}
}

// ReadNewLines reads any new complete lines since the last read.
func (r *TranscriptReader) ReadNewLines() ([]TranscriptLine, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
		return nil, err
	}

	var lines []TranscriptLine
	n, err := scanTranscript(f, false, func(l TranscriptLine) {
		lines = append(lines, l)
	})
	r.offset += n
	return lines, err
}

// scanTranscript calls fn for each parsed line and returns the number of
// bytes consumed. A trailing line without a newline is parsed only when
// final is set; otherwise it is left for the next read.
func scanTranscript(r io.Reader, final bool, fn func(TranscriptLine)) (int64, error) {
	br := bufio.NewReader(r)
	var consumed int64
	for {
		raw, err := br.ReadString('\n')
		if err == io.EOF {
			if final && raw != "" {
				if parsed, ok := parseTranscriptLine(strings.TrimRight(raw, "\r")); ok {
					fn(parsed)
				}
				consumed += int64(len(raw))
			}
			return consumed, nil
		}
		if err != nil {
			return consumed, err
		}
		consumed += int64(len(raw))

		if parsed, ok := parseTranscriptLine(strings.TrimRight(raw, "\r\n")); ok {
			fn(parsed)
		}
	}
}

func parseTranscriptLine(line string) (TranscriptLine, bool) {
	switch {
	case strings.HasPrefix(line, TranscriptPrefixMessage):
		rest := strings.TrimPrefix(line, TranscriptPrefixMessage)
		kindStr, quoted, ok := strings.Cut(rest, ":")
		if !ok {
			return TranscriptLine{}, false
		}
		kind, err := strconv.ParseUint(kindStr, 16, 32)
		if err != nil {
			return TranscriptLine{}, false
		}
		text, err := strconv.Unquote(quoted)
		if err != nil {
			return TranscriptLine{}, false
		}
		return TranscriptLine{Type: "MSG", Kind: progress.MessageKind(kind), Text: text}, true

	case strings.HasPrefix(line, TranscriptPrefixResult):
		var res EngineResult
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, TranscriptPrefixResult)), &res); err != nil {
			return TranscriptLine{}, false
		}
		return TranscriptLine{Type: "RESULT", Result: &res}, true

	default:
		return TranscriptLine{}, false
	}
}

// Replay feeds every recorded message in r to h in order and returns the
// last recorded result, or nil if the transcript has none.
//
// Example:
//
//	relay := progress.NewRelay(func(f float64) { fmt.Printf("%.3f\n", f) })
//	res, err := installer.Replay(file, relay)
func Replay(r io.Reader, h msi.MessageHandler) (*EngineResult, error) {
	var last *EngineResult
	_, err := scanTranscript(r, true, func(l TranscriptLine) {
		switch l.Type {
		case "MSG":
			h.HandleMessage(l.Kind, l.Text)
		case "RESULT":
			last = l.Result
		}
	})
	if err != nil {
		return last, fmt.Errorf("replay transcript: %w", err)
	}
	return last, nil
}

// Follow feeds every message appended to the transcript behind r to h,
// polling every interval until ctx is done. A transcript that does not exist
// yet is waited for. It returns the last recorded result, or nil if no
// engine call finished while following.
func Follow(ctx context.Context, r *TranscriptReader, h msi.MessageHandler, interval time.Duration) (*EngineResult, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *EngineResult
	for {
		lines, err := r.ReadNewLines()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return last, fmt.Errorf("follow transcript: %w", err)
		}
		for _, l := range lines {
			switch l.Type {
			case "MSG":
				h.HandleMessage(l.Kind, l.Text)
			case "RESULT":
				last = l.Result
			}
		}

		select {
		case <-ctx.Done():
			return last, nil
		case <-ticker.C:
		}
	}
}
