package msi

import "github.com/crafted-tech/msiflow/progress"

// MessageHandler receives engine messages routed through SetExternalUI.
// *progress.Relay implements it.
type MessageHandler interface {
	HandleMessage(kind progress.MessageKind, text string) progress.Reply
}

var _ MessageHandler = (*progress.Relay)(nil)
