package main

import (
	maelstrom "github.com/dsglomers/maelstrom"
	"github.com/dsglomers/maelstrom/internal/broadcast"
	"github.com/dsglomers/maelstrom/internal/cli"
)

func main() {
	cli.Main(func(n *maelstrom.Node, cfg maelstrom.Config) {
		broadcast.New(cfg.GossipInterval).Register(n)
	})
}
