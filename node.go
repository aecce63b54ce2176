package maelstrom

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

const (
	// inboundBuffer is the number of decoded messages the stdin reader may
	// run ahead of the event loop.
	inboundBuffer = 64

	// maxLineSize bounds a single input line. Gossip of a large set can
	// easily exceed bufio's default limit.
	maxLineSize = 16 << 20
)

// HandlerFunc is the function signature for an event handler. A nil message
// and nil error means there is nothing to reply. A non-nil message is written
// to STDOUT by the event loop. A non-fatal error is logged and the event is
// dropped; a fatal error stops the loop.
type HandlerFunc func(n *Node, ev Event) (*Message, error)

// Node represents a single node in the network.
//
// All node state is owned by the goroutine executing Run. Handlers run one at
// a time on that goroutine and may freely use ID, NextSendID, Send & Every.
type Node struct {
	identity   Identity
	nextSendID uint64

	handlers map[string]HandlerFunc
	tickers  map[string]time.Duration

	ticks chan Event
	done  chan struct{}

	// Stdin is for reading messages in from the Maelstrom network.
	Stdin io.Reader

	// Stdout is for writing messages out to the Maelstrom network.
	Stdout io.Writer

	// Logger receives diagnostics. It must not write to Stdout.
	Logger *zap.SugaredLogger

	// Clock drives tickers registered with Every.
	Clock clockwork.Clock

	Metrics *Metrics
}

// NewNode returns a new instance of Node connected to STDIN/STDOUT with the
// "init" handler registered.
func NewNode() *Node {
	n := &Node{
		handlers: make(map[string]HandlerFunc),
		tickers:  make(map[string]time.Duration),
		ticks:    make(chan Event),
		done:     make(chan struct{}),

		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Logger:  zap.NewNop().Sugar(),
		Clock:   clockwork.NewRealClock(),
		Metrics: NewMetrics(),
	}
	n.Handle(TypeInit, HandleInit)
	return n
}

// ID returns the identifier for this node. Returns a fatal ErrUnassigned if
// the "init" message has not been handled yet.
func (n *Node) ID() (string, error) {
	id, ok := n.identity.Lookup()
	if !ok {
		return "", Fatal(ErrUnassigned)
	}
	return id, nil
}

// NextSendID returns the id the next written message may use as its msg_id.
// It is incremented after every successful write.
func (n *Node) NextSendID() uint64 {
	return n.nextSendID
}

// Handle registers a handler for a body type or a ticker name. A later
// registration for the same key replaces the earlier one, including the
// built-in "init" handler.
func (n *Node) Handle(key string, fn HandlerFunc) {
	if _, ok := n.handlers[key]; ok {
		n.Logger.Debugf("Replacing handler for %q", key)
	}
	n.handlers[key] = fn
}

// Keys returns the registered handler keys in sorted order.
func (n *Node) Keys() []string {
	keys := maps.Keys(n.handlers)
	sort.Strings(keys)
	return keys
}

// Run executes the main event handling loop. It reads in messages from STDIN
// and delegates them, along with ticks, to the registered handlers. Returns
// nil once STDIN is exhausted and every message read has been handled, or the
// first fatal error. This should be the last function executed by main().
func (n *Node) Run() error {
	defer close(n.done)

	inbound := make(chan Event, inboundBuffer)
	var readErr error
	go func() {
		defer close(inbound)
		readErr = n.read(inbound)
	}()

	for {
		var ev Event
		select {
		case e, ok := <-inbound:
			if !ok {
				if readErr != nil {
					return Fatal(fmt.Errorf("read stdin: %w", readErr))
				}
				return nil
			}
			ev = e
		case ev = <-n.ticks:
		}

		if err := n.dispatch(ev); err != nil {
			return err
		}
	}
}

// read decodes lines from STDIN until EOF. Malformed lines are logged and
// skipped.
func (n *Node) read(inbound chan<- Event) error {
	scanner := bufio.NewScanner(n.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		msg, err := DecodeMessage(line)
		if err != nil {
			n.Metrics.MalformedInput.Inc()
			n.Logger.Warnw("Dropping malformed input", "line", string(line), "error", err)
			continue
		}
		n.Logger.Debugf("Received %s", line)

		select {
		case inbound <- Inbound{Message: msg}:
		case <-n.done:
			return nil
		}
	}
	return scanner.Err()
}

// dispatch runs the handler for ev and writes its reply, if any.
func (n *Node) dispatch(ev Event) error {
	key := ev.Key()
	n.Metrics.observe(ev)

	h := n.handlers[key]
	if h == nil {
		n.drop(ev)
		return nil
	}

	resp, err := h(n, ev)
	if err == nil && resp != nil {
		err = n.Send(*resp)
	}
	if err != nil {
		if IsFatal(err) {
			return fmt.Errorf("handle %s: %w", key, err)
		}
		n.Metrics.EventsDropped.WithLabelValues(DropHandlerError).Inc()
		n.Logger.Errorw("Handler failed", "key", key, "event", fmt.Sprintf("%+v", ev), "error", err)
	}
	return nil
}

// drop records an event no handler is registered for. Unknown message types
// are worth a warning; unclaimed ticks are expected.
func (n *Node) drop(ev Event) {
	n.Metrics.EventsDropped.WithLabelValues(DropNoHandler).Inc()

	in, ok := ev.(Inbound)
	if !ok {
		n.Logger.Debugf("Ignoring tick %q with no handler", ev.Key())
		return
	}
	switch body := in.Body.(type) {
	case ErrorBody:
		n.Logger.Warnw("Received error", "src", in.Src, "in_reply_to", body.InReplyTo, "error", body.Err())
	case UnknownBody:
		n.Logger.Warnw("Ignoring unknown message type", "type", body.Kind, "src", in.Src)
	default:
		n.Logger.Debugf("Ignoring %q message with no handler", body.Type())
	}
}

// Send writes msg to STDOUT and advances the send id. An empty Src is filled
// in with the node id. Write failures are fatal.
func (n *Node) Send(msg Message) error {
	id, err := n.ID()
	if err != nil {
		return err
	}
	if msg.Src == "" {
		msg.Src = id
	} else if msg.Src != id {
		return Fatal(fmt.Errorf("message src %q does not match node id %q", msg.Src, id))
	}

	buf, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if _, err := n.Stdout.Write(buf); err != nil {
		return Fatal(fmt.Errorf("write stdout: %w", err))
	}
	n.nextSendID++

	n.Metrics.MessagesSent.WithLabelValues(msg.Body.Type()).Inc()
	n.Logger.Debugf("Sent %s", bytes.TrimSuffix(buf, []byte{'\n'}))
	return nil
}

// NewReply returns a message from this node back to the sender of req.
func (n *Node) NewReply(req Message, body Body) (*Message, error) {
	id, err := n.ID()
	if err != nil {
		return nil, err
	}
	return &Message{Src: id, Dest: req.Src, Body: body}, nil
}

// HandleInit is the built-in "init" handler. It assigns the node id and
// replies with "init_ok". A repeated "init" is logged and ignored. Workloads
// that override "init" should call it first.
func HandleInit(n *Node, ev Event) (*Message, error) {
	req, body, err := Request[InitBody](ev)
	if err != nil {
		return nil, err
	}
	if id, ok := n.identity.Lookup(); ok {
		n.Metrics.EventsDropped.WithLabelValues(DropReinit).Inc()
		n.Logger.Warnw("Ignoring repeated init", "node_id", id, "requested", body.NodeID)
		return nil, nil
	}
	if body.NodeID == "" {
		return nil, errors.New("init: empty node_id")
	}
	if err := n.identity.Assign(body.NodeID); err != nil {
		return nil, err
	}

	// Send back a response that the node has been initialized.
	n.Logger.Infof("Node %s initialized", body.NodeID)
	return n.NewReply(req, InitOKBody{InReplyTo: body.MsgID})
}
