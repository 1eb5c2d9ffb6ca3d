// Package progress decodes Windows Installer progress messages and turns them
// into a normalized progress fraction.
//
// The installer engine reports progress as short field-tagged lines:
//
//	1: 0 2: 1024 3: 0 4: 1
//
// Field 1 selects the message subtype and determines how fields 2 to 4 are
// read. The package is split into three pieces:
//
//   - Parser: decodes one line into a Record
//   - Tracker: applies records to a SessionState and emits fractions
//   - Relay: the engine-facing entry point that routes progress messages
//     through Parser and Tracker, serialized by a mutex
//
// # Basic Usage
//
//	relay := progress.NewRelay(func(fraction float64) {
//	    bar.Set(fraction)
//	})
//	reply := relay.HandleMessage(progress.MessageProgress, "1: 0 2: 100 3: 0 4: 0")
//
// Parser and Tracker are not safe for concurrent use. Relay is.
//
// # Emitted values
//
// The tracker does not clamp. A backward reset emits 1.0, and deltas that
// overshoot the range produce values outside [0, 1]. Consumers that drive a
// progress bar clamp at the display boundary.
package progress
