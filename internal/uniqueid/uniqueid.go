// Package uniqueid implements the unique-id workload. Ids are minted without
// coordination by joining the node id with the node's send id, which never
// repeats within a process.
package uniqueid

import (
	"fmt"

	maelstrom "github.com/dsglomers/maelstrom"
)

// Register installs the generate handler on n.
func Register(n *maelstrom.Node) {
	n.Handle(maelstrom.TypeGenerate, Handle)
}

// Handle replies to a "generate" request with a fresh id.
func Handle(n *maelstrom.Node, ev maelstrom.Event) (*maelstrom.Message, error) {
	req, body, err := maelstrom.Request[maelstrom.GenerateBody](ev)
	if err != nil {
		return nil, err
	}
	id, err := n.ID()
	if err != nil {
		return nil, err
	}
	return n.NewReply(req, maelstrom.GenerateOKBody{
		InReplyTo: body.MsgID,
		ID:        fmt.Sprintf("%s_%d", id, n.NextSendID()),
	})
}
