package main

import (
	maelstrom "github.com/dsglomers/maelstrom"
	"github.com/dsglomers/maelstrom/internal/cli"
	"github.com/dsglomers/maelstrom/internal/uniqueid"
)

func main() {
	cli.Main(func(n *maelstrom.Node, _ maelstrom.Config) {
		uniqueid.Register(n)
	})
}
