package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFrame runs an event loop that ends when quit is called.
type fakeFrame struct {
	mu      sync.Mutex
	html    string
	shown   bool
	scripts []string
	quitCh  chan struct{}
	once    sync.Once
}

func newFakeWindow(cfg Config) (*Window, *fakeFrame) {
	ff := &fakeFrame{quitCh: make(chan struct{})}
	w := &Window{cfg: cfg}
	w.frame = frame{
		load: func(html string) { ff.html = html },
		show: func() { ff.shown = true },
		run:  func() { <-ff.quitCh },
		quit: ff.closeLoop,
		eval: func(script string) {
			ff.mu.Lock()
			defer ff.mu.Unlock()
			ff.scripts = append(ff.scripts, script)
		},
		destroy: func() {},
	}
	return w, ff
}

func (f *fakeFrame) Scripts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scripts...)
}

func TestWindowRunReturnsWorkResult(t *testing.T) {
	w, ff := newFakeWindow(defaultConfig())
	boom := errors.New("boom")

	err := w.Run(context.Background(), func(ctx context.Context) error {
		w.Update(50, "Copying new files")
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.True(t, ff.shown)
	assert.Contains(t, ff.html, `id="cancel"`)
	assert.Equal(t, []string{`window.updateProgress(50, "Copying new files");`}, ff.Scripts())
	assert.False(t, w.Cancelled())
}

func TestWindowCancelMessage(t *testing.T) {
	w, ff := newFakeWindow(defaultConfig())

	err := w.Run(context.Background(), func(ctx context.Context) error {
		w.handleMessage(`{"type":"cancel"}`)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return errors.New("context not cancelled")
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, w.Cancelled())
	assert.Contains(t, ff.Scripts(), `window.setCancelling("Cancelling...");`)
}

func TestWindowLoopEndsFirst(t *testing.T) {
	w, ff := newFakeWindow(defaultConfig())
	started := make(chan struct{})

	go func() {
		<-started
		ff.closeLoop()
	}()

	err := w.Run(context.Background(), func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, w.Cancelled())
}

func (f *fakeFrame) closeLoop() {
	f.once.Do(func() { close(f.quitCh) })
}

func TestWindowRejectsConcurrentRun(t *testing.T) {
	w, _ := newFakeWindow(defaultConfig())

	err := w.Run(context.Background(), func(ctx context.Context) error {
		return w.Run(ctx, func(context.Context) error { return nil })
	})
	assert.ErrorIs(t, err, ErrRunning)
}

func TestProgressScript(t *testing.T) {
	assert.Equal(t, `window.updateProgress(0, "");`, progressScript(-5, ""))
	assert.Equal(t, `window.updateProgress(100, "done");`, progressScript(250, "done"))
	assert.Equal(t, `window.updateProgress(12.5, "a \"quoted\" status");`, progressScript(12.5, `a "quoted" status`))
}

func TestParseMessage(t *testing.T) {
	msg, ok := parseMessage(`{"type":"cancel"}`)
	require.True(t, ok)
	assert.Equal(t, "cancel", msg.Type)

	for _, raw := range []string{"", "cancel", `{}`, `{"type":""}`} {
		_, ok := parseMessage(raw)
		assert.False(t, ok, raw)
	}
}

func TestRenderPage(t *testing.T) {
	cfg := defaultConfig()
	cfg.Title = "Install <App>"
	page := renderPage(cfg, true)

	assert.Contains(t, page, `data-theme="dark"`)
	assert.Contains(t, page, "<h1>Install &lt;App&gt;</h1>")
	assert.Contains(t, page, "window.external.invoke")

	cfg.HideCancel = true
	cfg.Heading = "Removing"
	page = renderPage(cfg, false)
	assert.Contains(t, page, `data-theme="light"`)
	assert.Contains(t, page, "<h1>Removing</h1>")
	assert.False(t, strings.Contains(page, `id="cancel"`))
}

func TestOptions(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []Option{
		WithTitle("App Setup"),
		WithHeading("Installing App"),
		WithSize("40em", "14em"),
		WithTheme(ThemeLight),
		WithNativeTitleBar(true),
		WithoutCancel(),
	} {
		opt(&cfg)
	}
	assert.Equal(t, Config{
		Title:          "App Setup",
		Heading:        "Installing App",
		Width:          "40em",
		Height:         "14em",
		Theme:          ThemeLight,
		NativeTitleBar: true,
		HideCancel:     true,
	}, cfg)
}

func TestParseTheme(t *testing.T) {
	for name, want := range map[string]ThemeMode{
		"":       ThemeSystem,
		"system": ThemeSystem,
		"dark":   ThemeDark,
		"light":  ThemeLight,
	} {
		got, err := ParseTheme(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseTheme("neon")
	assert.ErrorContains(t, err, `unknown theme "neon"`)
}
