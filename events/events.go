// Package events provides fire-and-forget notification emission for the
// governance engine. Sinks receive events after the engine has committed
// the corresponding state change; emission never affects engine state.
package events

import (
	"sync"

	"xdao.co/multisig/identity"
)

// Event names emitted by the engine. Names are stable.
const (
	ProposeAction            = "proposeAction"
	SignAction               = "signAction"
	UnsignAction             = "unsignAction"
	DiscardAction            = "discardAction"
	StartPerformAction       = "startPerformAction"
	PerformActionRejected    = "performActionRejected"
	PerformChangeUser        = "performChangeUser"
	PerformChangeQuorum      = "performChangeQuorum"
	PerformTransferExecute   = "performTransferExecute"
	PerformAsyncCall         = "performAsyncCall"
	PerformDeployFromSource  = "performDeployFromSource"
	PerformUpgradeFromSource = "performUpgradeFromSource"
	AsyncCallSuccess         = "asyncCallSuccess"
	AsyncCallError           = "asyncCallError"
)

// Event is a single notification. Zero-valued fields are simply absent for
// the event in question.
type Event struct {
	Name     string
	ActionID uint64
	Caller   identity.Address
	Target   identity.Address
	Endpoint string

	// CallType distinguishes sync/async/deploy/upgrade dispatches.
	CallType string

	// Value is the decimal string of the amount moved, if any.
	Value string

	// Data carries auxiliary bytes (async callback payloads).
	Data []byte
}

// Sink consumes events. Implementations must not call back into the engine.
type Sink interface {
	Emit(Event)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// Memory is a Sink that records every event, for tests and inspection.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Emit(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of everything recorded so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Named returns recorded events with the given name, in emission order.
func (m *Memory) Named(name string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all recorded events.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
