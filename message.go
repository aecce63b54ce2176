package maelstrom

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message body types.
const (
	TypeInit        = "init"
	TypeInitOK      = "init_ok"
	TypeEcho        = "echo"
	TypeEchoOK      = "echo_ok"
	TypeGenerate    = "generate"
	TypeGenerateOK  = "generate_ok"
	TypeTopology    = "topology"
	TypeTopologyOK  = "topology_ok"
	TypeBroadcast   = "broadcast"
	TypeBroadcastOK = "broadcast_ok"
	TypeRead        = "read"
	TypeReadOK      = "read_ok"
	TypeGossip      = "gossip"
	TypeError       = "error"
)

// Message represents a message sent from Src node to Dest node.
type Message struct {
	Src  string
	Dest string
	Body Body
}

// Body is implemented by every message body variant. Type returns the value
// of the "type" discriminator on the wire.
type Body interface {
	Type() string
}

// InitBody represents the message body for the "init" message.
type InitBody struct {
	MsgID   uint64   `json:"msg_id"`
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

// InitOKBody acknowledges an "init" message.
type InitOKBody struct {
	InReplyTo uint64 `json:"in_reply_to"`
}

type EchoBody struct {
	MsgID uint64 `json:"msg_id"`
	Echo  string `json:"echo"`
}

type EchoOKBody struct {
	MsgID     uint64 `json:"msg_id"`
	InReplyTo uint64 `json:"in_reply_to"`
	Echo      string `json:"echo"`
}

type GenerateBody struct {
	MsgID uint64 `json:"msg_id"`
}

type GenerateOKBody struct {
	InReplyTo uint64 `json:"in_reply_to"`
	ID        string `json:"id"`
}

// TopologyBody carries the neighbor lists for every node in the cluster.
type TopologyBody struct {
	MsgID    uint64              `json:"msg_id"`
	Topology map[string][]string `json:"topology"`
}

type TopologyOKBody struct {
	InReplyTo uint64 `json:"in_reply_to"`
}

// BroadcastBody carries a single opaque JSON value.
type BroadcastBody struct {
	MsgID   uint64 `json:"msg_id"`
	Message any    `json:"message"`
}

type BroadcastOKBody struct {
	InReplyTo uint64 `json:"in_reply_to"`
}

type ReadBody struct {
	MsgID uint64 `json:"msg_id"`
}

// ReadOKBody lists every value a node has seen, in no particular order.
type ReadOKBody struct {
	InReplyTo uint64 `json:"in_reply_to"`
	Messages  []any  `json:"messages"`
}

// GossipBody is a one-way message carrying a full snapshot of a node's values.
type GossipBody struct {
	Message []any `json:"message"`
}

// ErrorBody is an error reply sent by the network or a service.
type ErrorBody struct {
	InReplyTo uint64 `json:"in_reply_to"`
	Code      int    `json:"code"`
	Text      string `json:"text,omitempty"`
}

// Err returns the error carried by the body.
func (b ErrorBody) Err() *RPCError { return NewRPCError(b.Code, b.Text) }

// UnknownBody holds a body whose type has no registered decoder. The raw
// JSON is kept so it can be logged or forwarded untouched.
type UnknownBody struct {
	Kind string
	Raw  json.RawMessage
}

func (InitBody) Type() string        { return TypeInit }
func (InitOKBody) Type() string      { return TypeInitOK }
func (EchoBody) Type() string        { return TypeEcho }
func (EchoOKBody) Type() string      { return TypeEchoOK }
func (GenerateBody) Type() string    { return TypeGenerate }
func (GenerateOKBody) Type() string  { return TypeGenerateOK }
func (TopologyBody) Type() string    { return TypeTopology }
func (TopologyOKBody) Type() string  { return TypeTopologyOK }
func (BroadcastBody) Type() string   { return TypeBroadcast }
func (BroadcastOKBody) Type() string { return TypeBroadcastOK }
func (ReadBody) Type() string        { return TypeRead }
func (ReadOKBody) Type() string      { return TypeReadOK }
func (GossipBody) Type() string      { return TypeGossip }
func (ErrorBody) Type() string       { return TypeError }
func (b UnknownBody) Type() string   { return b.Kind }

// bodyKind describes how to decode one body type and which keys it must carry.
type bodyKind struct {
	decode   func(data []byte) (Body, error)
	required []string
}

var bodyKinds = map[string]bodyKind{
	TypeInit:        {decodeAs[InitBody], []string{"msg_id", "node_id"}},
	TypeInitOK:      {decodeAs[InitOKBody], []string{"in_reply_to"}},
	TypeEcho:        {decodeAs[EchoBody], []string{"msg_id", "echo"}},
	TypeEchoOK:      {decodeAs[EchoOKBody], []string{"msg_id", "in_reply_to", "echo"}},
	TypeGenerate:    {decodeAs[GenerateBody], []string{"msg_id"}},
	TypeGenerateOK:  {decodeAs[GenerateOKBody], []string{"in_reply_to", "id"}},
	TypeTopology:    {decodeAs[TopologyBody], []string{"msg_id", "topology"}},
	TypeTopologyOK:  {decodeAs[TopologyOKBody], []string{"in_reply_to"}},
	TypeBroadcast:   {decodeAs[BroadcastBody], []string{"msg_id", "message"}},
	TypeBroadcastOK: {decodeAs[BroadcastOKBody], []string{"in_reply_to"}},
	TypeRead:        {decodeAs[ReadBody], []string{"msg_id"}},
	TypeReadOK:      {decodeAs[ReadOKBody], []string{"in_reply_to", "messages"}},
	TypeGossip:      {decodeAs[GossipBody], []string{"message"}},
	TypeError:       {decodeAs[ErrorBody], []string{"code"}},
}

func decodeAs[T Body](data []byte) (Body, error) {
	var body T
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// DecodeMessage parses a single line of input into a Message. Errors wrap
// ErrMalformed. Bodies with an unrecognized type decode to UnknownBody.
func DecodeMessage(line []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		if errors.Is(err, ErrMalformed) {
			return Message{}, err
		}
		return Message{}, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	return msg, nil
}

// EncodeMessage serializes msg as a single newline-terminated line.
func EncodeMessage(msg Message) ([]byte, error) {
	buf, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

// envelope is the wire representation of a Message.
type envelope struct {
	Src  *string         `json:"src,omitempty"`
	Dest *string         `json:"dest,omitempty"`
	Body json.RawMessage `json:"body,omitempty"`
}

// MarshalJSON encodes the message with the body's "type" discriminator.
func (m Message) MarshalJSON() ([]byte, error) {
	body, err := encodeBody(m.Body)
	if err != nil {
		return nil, err
	}
	env := envelope{Body: body}
	if m.Src != "" {
		env.Src = &m.Src
	}
	if m.Dest != "" {
		env.Dest = &m.Dest
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes an envelope and dispatches the body decoding on its
// "type" field.
func (m *Message) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch {
	case env.Src == nil:
		return fmt.Errorf("%w: missing src", ErrMalformed)
	case env.Dest == nil:
		return fmt.Errorf("%w: missing dest", ErrMalformed)
	case len(env.Body) == 0:
		return fmt.Errorf("%w: missing body", ErrMalformed)
	}

	body, err := decodeBody(env.Body)
	if err != nil {
		return err
	}
	*m = Message{Src: *env.Src, Dest: *env.Dest, Body: body}
	return nil
}

func decodeBody(data json.RawMessage) (Body, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: body is not an object", ErrMalformed)
	}

	var typ string
	if raw, ok := fields["type"]; !ok {
		return nil, fmt.Errorf("%w: body has no type", ErrMalformed)
	} else if err := json.Unmarshal(raw, &typ); err != nil {
		return nil, fmt.Errorf("%w: body type is not a string", ErrMalformed)
	}

	kind, ok := bodyKinds[typ]
	if !ok {
		return UnknownBody{Kind: typ, Raw: data}, nil
	}
	for _, key := range kind.required {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("%w: %s body missing %q", ErrMalformed, typ, key)
		}
	}

	body, err := kind.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s body: %s", ErrMalformed, typ, err)
	}
	return body, nil
}

func encodeBody(body Body) (json.RawMessage, error) {
	if body == nil {
		return nil, errors.New("message has no body")
	}
	if u, ok := body.(UnknownBody); ok {
		return u.Raw, nil
	}

	// We have to marshal/unmarshal to inject the type discriminator.
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", body.Type(), err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(buf, &fields); err != nil {
		return nil, fmt.Errorf("marshal %s body: %w", body.Type(), err)
	}
	if fields["type"], err = json.Marshal(body.Type()); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}
