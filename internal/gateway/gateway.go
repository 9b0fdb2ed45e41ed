// Package gateway abstracts the chat platform that delivers spravbot
// dialogues (Telegram in production, a mock in tests).
package gateway

import (
	"context"
	"time"
)

// InputKind classifies an inbound event.
type InputKind string

const (
	KindText    InputKind = "text"
	KindContact InputKind = "contact"
	KindCommand InputKind = "command"
)

// Gateway is the interface that platform-specific implementations must
// satisfy. Each gateway handles connection management and message
// sending/receiving for a single chat platform.
type Gateway interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Listen returns a channel of inbound events from the platform.
	// The channel is closed when the context is cancelled or the gateway
	// is closed. Listen must only be called after Connect.
	Listen(ctx context.Context) (<-chan InboundEvent, error)

	// Send delivers an outbound prompt to the platform.
	Send(ctx context.Context, prompt OutboundPrompt) error

	// Close gracefully shuts down the gateway connection.
	Close() error
}

// InboundEvent represents one turn of user input received from the platform.
type InboundEvent struct {
	Identity  int64           // stable per-user identity (chat participant id)
	Kind      InputKind       // text, contact, or command
	Text      string          // message text, or command name without slash
	Contact   *ContactPayload // set only when Kind == KindContact
	Timestamp time.Time
}

// ContactPayload is the machine-readable contact a user shares during
// onboarding.
type ContactPayload struct {
	Phone     string
	NumericID int64  // the contact owner's platform id
	Handle    string // optional display handle
}

// OutboundPrompt represents a prompt to be sent to the platform.
type OutboundPrompt struct {
	Identity int64
	Text     string
	Keyboard KeyboardSpec
}

// KeyboardSpec describes the reply keyboard accompanying a prompt. A zero
// KeyboardSpec leaves the current keyboard untouched.
type KeyboardSpec struct {
	Buttons [][]Button
	OneTime bool
	Remove  bool // remove the current keyboard instead of showing one
}

// Button is a single reply-keyboard button.
type Button struct {
	Label          string
	RequestContact bool
}

// Row is a convenience constructor for a one-button keyboard row.
func Row(labels ...string) []Button {
	row := make([]Button, len(labels))
	for i, l := range labels {
		row[i] = Button{Label: l}
	}
	return row
}
