// Package echo implements the echo workload: every "echo" request is answered
// with an "echo_ok" carrying the same payload.
package echo

import (
	maelstrom "github.com/dsglomers/maelstrom"
)

// Register installs the echo handler on n.
func Register(n *maelstrom.Node) {
	n.Handle(maelstrom.TypeEcho, Handle)
}

// Handle replies to an "echo" request.
func Handle(n *maelstrom.Node, ev maelstrom.Event) (*maelstrom.Message, error) {
	req, body, err := maelstrom.Request[maelstrom.EchoBody](ev)
	if err != nil {
		return nil, err
	}
	return n.NewReply(req, maelstrom.EchoOKBody{
		MsgID:     n.NextSendID(),
		InReplyTo: body.MsgID,
		Echo:      body.Echo,
	})
}
