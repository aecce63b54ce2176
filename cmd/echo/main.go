package main

import (
	maelstrom "github.com/dsglomers/maelstrom"
	"github.com/dsglomers/maelstrom/internal/cli"
	"github.com/dsglomers/maelstrom/internal/echo"
)

func main() {
	cli.Main(func(n *maelstrom.Node, _ maelstrom.Config) {
		echo.Register(n)
	})
}
