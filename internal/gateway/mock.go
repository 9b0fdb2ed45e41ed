package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGateway implements Gateway for testing. It records sent prompts and
// allows simulating inbound events via SimulateText, SimulateContact, and
// SimulateCommand.
type MockGateway struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	inbound   chan InboundEvent
	sent      []OutboundPrompt
	failSends int // fail this many upcoming Send calls
}

// NewMockGateway creates a MockGateway with a buffered inbound channel.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		inbound: make(chan InboundEvent, 100),
	}
}

// Connect marks the gateway as connected.
func (m *MockGateway) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock gateway: already closed")
	}
	m.connected = true
	return nil
}

// Listen returns the inbound event channel. Must be called after Connect.
func (m *MockGateway) Listen(ctx context.Context) (<-chan InboundEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil, fmt.Errorf("mock gateway: not connected")
	}
	return m.inbound, nil
}

// Send records the outbound prompt, or fails if FailNextSends is pending.
func (m *MockGateway) Send(ctx context.Context, prompt OutboundPrompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return fmt.Errorf("mock gateway: not connected")
	}
	if m.failSends > 0 {
		m.failSends--
		return fmt.Errorf("mock gateway: simulated delivery failure")
	}
	m.sent = append(m.sent, prompt)
	return nil
}

// Close shuts down the mock gateway and closes the inbound channel.
func (m *MockGateway) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.connected = false
	close(m.inbound)
	return nil
}

// FailNextSends makes the next n Send calls return an error.
func (m *MockGateway) FailNextSends(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSends = n
}

// SimulateText injects an inbound text event.
func (m *MockGateway) SimulateText(identity int64, text string) {
	m.inbound <- InboundEvent{
		Identity:  identity,
		Kind:      KindText,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// SimulateContact injects an inbound contact-share event.
func (m *MockGateway) SimulateContact(identity int64, contact ContactPayload) {
	m.inbound <- InboundEvent{
		Identity:  identity,
		Kind:      KindContact,
		Contact:   &contact,
		Timestamp: time.Now(),
	}
}

// SimulateCommand injects an inbound command event (name without slash).
func (m *MockGateway) SimulateCommand(identity int64, name string) {
	m.inbound <- InboundEvent{
		Identity:  identity,
		Kind:      KindCommand,
		Text:      name,
		Timestamp: time.Now(),
	}
}

// SentCount returns the number of prompts sent so far.
func (m *MockGateway) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// Sent returns a copy of all prompts sent so far.
func (m *MockGateway) Sent() []OutboundPrompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OutboundPrompt, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastSent returns the most recent prompt, if any.
func (m *MockGateway) LastSent() (OutboundPrompt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return OutboundPrompt{}, false
	}
	return m.sent[len(m.sent)-1], true
}
