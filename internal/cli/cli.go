// Package cli holds the bootstrap shared by the workload binaries.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	maelstrom "github.com/dsglomers/maelstrom"
)

// RegisterFunc installs a workload's handlers on a node.
type RegisterFunc func(n *maelstrom.Node, cfg maelstrom.Config)

// Main runs a node on the process's STDIN/STDOUT and exits. It never returns.
func Main(register RegisterFunc) {
	cfg, err := maelstrom.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
	os.Exit(Run(cfg, os.Stdin, os.Stdout, os.Stderr, register))
}

// Run builds a node, registers the workload and runs it to completion.
// Returns the process exit code: 0 on EOF, 1 on a fatal error.
func Run(cfg maelstrom.Config, stdin io.Reader, stdout, stderr io.Writer, register RegisterFunc) int {
	logger := maelstrom.NewLogger(stderr, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	n := maelstrom.NewNode()
	n.Stdin = stdin
	n.Stdout = stdout
	n.Logger = logger

	if cfg.MetricsAddr != "" {
		srv := maelstrom.ServeMetrics(cfg.MetricsAddr, n.Metrics.Registry, logger)
		defer srv.Close()
	}

	register(n, cfg)
	logger.Debugf("Handling %s", strings.Join(n.Keys(), ", "))

	if err := n.Run(); err != nil {
		logger.Errorf("Exiting: %s", err)
		return 1
	}
	return 0
}
