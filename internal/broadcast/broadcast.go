// Package broadcast implements the broadcast workload.
//
// Values accepted from clients are stored in an append-only set and spread
// through the cluster by anti-entropy gossip: on every tick a node sends its
// full set to each of its neighbors in the topology supplied by the harness.
// Receivers merge by set union, so lost or duplicated gossip is harmless and
// any value eventually reaches every node of a connected topology.
package broadcast

import (
	"time"

	"github.com/samber/lo"
	"golang.org/x/exp/maps"

	maelstrom "github.com/dsglomers/maelstrom"
)

// TickGossip is the name of the ticker that drives gossip rounds.
const TickGossip = "do_gossip"

// Server holds the broadcast state of one node.
type Server struct {
	topology map[string][]string
	seen     *ValueSet
	interval time.Duration
}

// New returns a server that gossips every interval once a topology arrives.
func New(interval time.Duration) *Server {
	return &Server{
		topology: map[string][]string{},
		seen:     NewValueSet(),
		interval: interval,
	}
}

// Register installs the broadcast handlers on n.
func (s *Server) Register(n *maelstrom.Node) {
	n.Handle(maelstrom.TypeTopology, s.handleTopology)
	n.Handle(maelstrom.TypeBroadcast, s.handleBroadcast)
	n.Handle(maelstrom.TypeRead, s.handleRead)
	n.Handle(maelstrom.TypeGossip, s.handleGossip)
	n.Handle(TickGossip, s.handleDoGossip)
}

// Values returns the values seen so far.
func (s *Server) Values() []any {
	return s.seen.Values()
}

// Neighbors returns the nodes id gossips to: its topology entry without
// duplicates or itself. ok is false if the topology has no entry for id.
func (s *Server) Neighbors(id string) (neighbors []string, ok bool) {
	peers, ok := s.topology[id]
	if !ok {
		return nil, false
	}
	return lo.Without(lo.Uniq(peers), id), true
}

// handleTopology replaces the topology and starts gossiping.
func (s *Server) handleTopology(n *maelstrom.Node, ev maelstrom.Event) (*maelstrom.Message, error) {
	req, body, err := maelstrom.Request[maelstrom.TopologyBody](ev)
	if err != nil {
		return nil, err
	}
	reply, err := n.NewReply(req, maelstrom.TopologyOKBody{InReplyTo: body.MsgID})
	if err != nil {
		return nil, err
	}

	s.topology = maps.Clone(body.Topology)
	if s.topology == nil {
		s.topology = map[string][]string{}
	}
	if n.Every(TickGossip, s.interval) {
		n.Logger.Infof("Gossiping every %s", s.interval)
	}
	return reply, nil
}

// handleBroadcast records a client value. Neighbors learn it on the next
// gossip round.
func (s *Server) handleBroadcast(n *maelstrom.Node, ev maelstrom.Event) (*maelstrom.Message, error) {
	req, body, err := maelstrom.Request[maelstrom.BroadcastBody](ev)
	if err != nil {
		return nil, err
	}
	reply, err := n.NewReply(req, maelstrom.BroadcastOKBody{InReplyTo: body.MsgID})
	if err != nil {
		return nil, err
	}
	if _, err := s.seen.Add(body.Message); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *Server) handleRead(n *maelstrom.Node, ev maelstrom.Event) (*maelstrom.Message, error) {
	req, body, err := maelstrom.Request[maelstrom.ReadBody](ev)
	if err != nil {
		return nil, err
	}
	return n.NewReply(req, maelstrom.ReadOKBody{
		InReplyTo: body.MsgID,
		Messages:  s.seen.Values(),
	})
}

// handleGossip merges a neighbor's values. Gossip is one-way.
func (s *Server) handleGossip(n *maelstrom.Node, ev maelstrom.Event) (*maelstrom.Message, error) {
	req, body, err := maelstrom.Request[maelstrom.GossipBody](ev)
	if err != nil {
		return nil, err
	}
	added, err := s.seen.Union(body.Message)
	if added > 0 {
		n.Logger.Debugf("Learned %d values from %s", added, req.Src)
	}
	return nil, err
}

// handleDoGossip sends the current set to every neighbor. All neighbors get
// the same snapshot.
func (s *Server) handleDoGossip(n *maelstrom.Node, ev maelstrom.Event) (*maelstrom.Message, error) {
	id, err := n.ID()
	if err != nil {
		return nil, err
	}
	neighbors, ok := s.Neighbors(id)
	if !ok {
		return nil, nil
	}

	snapshot := s.seen.Values()
	for _, peer := range neighbors {
		if err := n.Send(maelstrom.Message{
			Src:  id,
			Dest: peer,
			Body: maelstrom.GossipBody{Message: snapshot},
		}); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
