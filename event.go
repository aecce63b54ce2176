package maelstrom

import (
	"fmt"
)

// Event is delivered to the event loop by the stdin reader or a ticker.
// Key selects the handler.
type Event interface {
	Key() string
}

// Inbound is an event carrying a message read from the network.
type Inbound struct {
	Message
}

// Key returns the body type.
func (e Inbound) Key() string { return e.Body.Type() }

// Tick is an event fired by a named ticker.
type Tick struct {
	Name string
}

// Key returns the ticker name.
func (e Tick) Key() string { return e.Name }

// Request unpacks an inbound event whose body is a T. Returns an *RPCError
// with a MalformedRequest code if ev is a tick or carries another body type.
func Request[T Body](ev Event) (Message, T, error) {
	var zero T
	in, ok := ev.(Inbound)
	if !ok {
		return Message{}, zero, NewRPCError(MalformedRequest, fmt.Sprintf("expected inbound message, got %T", ev))
	}
	body, ok := in.Body.(T)
	if !ok {
		return Message{}, zero, NewRPCError(MalformedRequest, fmt.Sprintf("unexpected %q body for %T", in.Body.Type(), zero))
	}
	return in.Message, body, nil
}
