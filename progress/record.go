package progress

import (
	"errors"
	"fmt"
)

// Kind is the progress message subtype carried in field 1.
type Kind int

const (
	KindReset       Kind = 0 // field 2 = total ticks, field 3 = direction, field 4 = script in progress
	KindStepInfo    Kind = 1 // field 2 = ticks per action data message, field 3 = enable
	KindDelta       Kind = 2 // field 2 = ticks moved
	KindTotalAdjust Kind = 3 // field 2 = ticks added to the total; ignored
)

// String returns the subtype name.
func (k Kind) String() string {
	switch k {
	case KindReset:
		return "reset"
	case KindStepInfo:
		return "step-info"
	case KindDelta:
		return "delta"
	case KindTotalAdjust:
		return "total-adjust"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Record holds the four integer fields of a decoded progress message.
// The meaning of Field2 through Field4 depends on Kind.
type Record struct {
	Kind   Kind
	Field2 int
	Field3 int
	Field4 int
}

func (r Record) String() string {
	return fmt.Sprintf("1: %d 2: %d 3: %d 4: %d", int(r.Kind), r.Field2, r.Field3, r.Field4)
}

// ErrDecode is wrapped by every parser failure.
var ErrDecode = errors.New("progress: decode")

// Parser failures. All of them wrap ErrDecode.
var (
	ErrEmptyMessage = fmt.Errorf("%w: empty message", ErrDecode)
	ErrBlankRecord  = fmt.Errorf("%w: blank record", ErrDecode)
	ErrUnknownField = fmt.Errorf("%w: unknown field", ErrDecode)
)

// ErrUninitialized is returned by the tracker when a reset message carries a
// zero tick total, which would otherwise divide by zero.
var ErrUninitialized = errors.New("progress: total ticks is zero")
