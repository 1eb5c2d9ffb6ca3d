//go:build windows

package msi

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/windows"

	"github.com/crafted-tech/msiflow/progress"
)

type handlerRef struct {
	h MessageHandler
}

// The engine accepts a single process-wide handler. One native callback is
// created for the life of the process and dispatches to whichever handler is
// currently installed, since callbacks from windows.NewCallback are never
// released.
var externalUI struct {
	mu       sync.Mutex
	once     sync.Once
	callback uintptr
	filter   uint32
	current  atomic.Pointer[handlerRef]
}

func externalUIHandler(context uintptr, messageType uintptr, message *uint16) uintptr {
	ref := externalUI.current.Load()
	if ref == nil || ref.h == nil {
		return 0
	}
	var text string
	if message != nil {
		text = windows.UTF16PtrToString(message)
	}
	return uintptr(ref.h.HandleMessage(progress.MessageKind(uint32(messageType)), text))
}

// SetExternalUI routes engine messages selected by filter (see
// progress.LogMode) to h. The returned function restores the previous
// handler.
func SetExternalUI(h MessageHandler, filter uint32) (restore func(), err error) {
	if err := procMsiSetExternalUIW.Find(); err != nil {
		return nil, err
	}

	externalUI.mu.Lock()
	defer externalUI.mu.Unlock()

	externalUI.once.Do(func() {
		externalUI.callback = windows.NewCallback(externalUIHandler)
	})

	prevRef := externalUI.current.Swap(&handlerRef{h: h})
	prevFilter := externalUI.filter
	externalUI.filter = filter

	prevCallback, _, _ := procMsiSetExternalUIW.Call(externalUI.callback, uintptr(filter), 0)

	return func() {
		externalUI.mu.Lock()
		defer externalUI.mu.Unlock()

		externalUI.current.Store(prevRef)
		externalUI.filter = prevFilter

		// A foreign handler's filter is unknown; give it the one we used.
		restoreFilter := filter
		switch prevCallback {
		case 0:
			restoreFilter = 0
		case externalUI.callback:
			restoreFilter = prevFilter
		}
		procMsiSetExternalUIW.Call(prevCallback, uintptr(restoreFilter), 0)
	}, nil
}
