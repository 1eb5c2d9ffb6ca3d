package progress

import "fmt"

// MessageKind is the message type passed by the installer engine to an
// external UI handler (INSTALLMESSAGE_*). The type lives in the high byte;
// the low bits carry button and icon flags.
type MessageKind uint32

const (
	MessageFatalExit      MessageKind = 0x00000000
	MessageError          MessageKind = 0x01000000
	MessageWarning        MessageKind = 0x02000000
	MessageUser           MessageKind = 0x03000000
	MessageInfo           MessageKind = 0x04000000
	MessageFilesInUse     MessageKind = 0x05000000
	MessageResolveSource  MessageKind = 0x06000000
	MessageOutOfDiskSpace MessageKind = 0x07000000
	MessageActionStart    MessageKind = 0x08000000
	MessageActionData     MessageKind = 0x09000000
	MessageProgress       MessageKind = 0x0A000000
	MessageCommonData     MessageKind = 0x0B000000
	MessageInitialize     MessageKind = 0x0C000000
	MessageTerminate      MessageKind = 0x0D000000
	MessageShowDialog     MessageKind = 0x0E000000
	MessageRMFilesInUse   MessageKind = 0x19000000
	MessageInstallStart   MessageKind = 0x1A000000
	MessageInstallEnd     MessageKind = 0x1B000000
)

const messageTypeMask MessageKind = 0xFF000000

// Type strips the button and icon flags.
func (k MessageKind) Type() MessageKind {
	return k & messageTypeMask
}

func (k MessageKind) String() string {
	switch k.Type() {
	case MessageFatalExit:
		return "fatal-exit"
	case MessageError:
		return "error"
	case MessageWarning:
		return "warning"
	case MessageUser:
		return "user"
	case MessageInfo:
		return "info"
	case MessageFilesInUse:
		return "files-in-use"
	case MessageResolveSource:
		return "resolve-source"
	case MessageOutOfDiskSpace:
		return "out-of-disk-space"
	case MessageActionStart:
		return "action-start"
	case MessageActionData:
		return "action-data"
	case MessageProgress:
		return "progress"
	case MessageCommonData:
		return "common-data"
	case MessageInitialize:
		return "initialize"
	case MessageTerminate:
		return "terminate"
	case MessageShowDialog:
		return "show-dialog"
	case MessageRMFilesInUse:
		return "rm-files-in-use"
	case MessageInstallStart:
		return "install-start"
	case MessageInstallEnd:
		return "install-end"
	default:
		return fmt.Sprintf("message(0x%08X)", uint32(k))
	}
}

// LogMode returns the INSTALLLOGMODE_* filter mask that subscribes an
// external UI handler to the given message kinds.
func LogMode(kinds ...MessageKind) uint32 {
	var mode uint32
	for _, k := range kinds {
		mode |= 1 << (uint32(k.Type()) >> 24)
	}
	return mode
}

// DefaultLogMode subscribes to progress, error and fatal exit messages.
var DefaultLogMode = LogMode(MessageProgress, MessageError, MessageFatalExit)

// Reply is the value an external UI handler returns to the engine.
type Reply int

const (
	ReplyNone   Reply = 0 // Not handled; the engine falls back to its own UI.
	ReplyOK     Reply = 1 // IDOK
	ReplyCancel Reply = 2 // IDCANCEL
)
