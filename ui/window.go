package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/crafted-tech/webframe"
	"github.com/crafted-tech/webframe/types"

	"github.com/crafted-tech/msiflow/installer"
)

// ErrRunning is returned by Run when the window is already running work.
var ErrRunning = errors.New("ui: window is already running")

var _ installer.Sink = (*Window)(nil)

// Window is a progress window with a Cancel button. It implements
// installer.Sink, so it can be handed straight to installer.RunSteps.
type Window struct {
	cfg      Config
	frame    frame
	darkMode bool

	mu        sync.Mutex
	running   bool
	cancelRun context.CancelFunc

	cancelled atomic.Bool
}

// frame is the part of the webview the window drives.
type frame struct {
	load    func(html string)
	show    func()
	run     func()
	quit    func()
	eval    func(script string)
	destroy func()
}

// New creates a hidden progress window. It is shown by Run.
func New(opts ...Option) (*Window, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &Window{cfg: cfg}

	wv, err := webframe.New(types.Config{
		Title:          cfg.Title,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Resizable:      false,
		NativeTitleBar: cfg.NativeTitleBar,
		StartHidden:    true,
		OnClose: func() {
			// Closing the window means cancel; the loop ends when work returns.
			w.Cancel()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create progress window: %w", err)
	}

	switch cfg.Theme {
	case ThemeDark:
		w.darkMode = true
	case ThemeSystem:
		w.darkMode = wv.IsDarkMode()
	}

	w.frame = frame{
		load:    func(html string) { wv.LoadHTML(html) },
		show:    func() { wv.Show() },
		run:     func() { wv.Run() },
		quit:    func() { wv.Quit() },
		eval:    func(script string) { wv.EvaluateScriptAsync(script) },
		destroy: func() { wv.Destroy() },
	}
	wv.AddMessageHandler(w.handleMessage)

	return w, nil
}

// Run shows the window and calls work on its own goroutine while the event
// loop runs on the calling goroutine, which must be the main thread on most
// platforms. The Cancel button and closing the window cancel the context
// passed to work. Run returns work's error once work has returned.
func (w *Window) Run(ctx context.Context, work func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrRunning
	}
	w.running = true
	w.cancelRun = cancel
	w.mu.Unlock()
	w.cancelled.Store(false)

	defer func() {
		w.mu.Lock()
		w.running = false
		w.cancelRun = nil
		w.mu.Unlock()
	}()

	w.frame.load(renderPage(w.cfg, w.darkMode))
	w.frame.show()

	done := make(chan error, 1)
	go func() {
		done <- work(ctx)
		w.frame.quit()
	}()

	w.frame.run()

	select {
	case err := <-done:
		return err
	default:
	}
	// The loop ended before work did; stop the work and wait for it.
	w.Cancel()
	return <-done
}

// Update moves the progress bar. percent runs from 0 to 100 and is clamped.
func (w *Window) Update(percent float64, status string) {
	w.frame.eval(progressScript(percent, status))
}

// Cancelled reports whether the user cancelled the current run.
func (w *Window) Cancelled() bool {
	return w.cancelled.Load()
}

// Cancel cancels the current run as if the Cancel button was clicked.
func (w *Window) Cancel() {
	if w.cancelled.Swap(true) {
		return
	}

	w.mu.Lock()
	cancel := w.cancelRun
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if w.frame.eval != nil {
		w.frame.eval(cancellingScript("Cancelling..."))
	}
}

// Close releases the window.
func (w *Window) Close() {
	if w.frame.destroy != nil {
		w.frame.destroy()
	}
}

func (w *Window) handleMessage(raw string) {
	msg, ok := parseMessage(raw)
	if !ok {
		return
	}
	switch msg.Type {
	case "cancel":
		w.Cancel()
	}
}
