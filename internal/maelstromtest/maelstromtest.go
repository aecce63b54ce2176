// Package maelstromtest runs nodes over in-memory pipes for tests.
package maelstromtest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	maelstrom "github.com/dsglomers/maelstrom"
)

// Timeout bounds every wait on a node.
const Timeout = 5 * time.Second

// Conn is the test side of a running node: writes go to its STDIN and lines
// written to its STDOUT are collected in order.
type Conn struct {
	tb    testing.TB
	stdin *io.PipeWriter
	lines chan string

	done     chan error
	waitOnce sync.Once
	err      error
}

// Run starts n in the background, connected to pipes, with a test logger.
// Handlers, tickers and the clock must be configured before calling Run. The
// node is stopped when the test ends.
func Run(tb testing.TB, n *maelstrom.Node) *Conn {
	tb.Helper()

	inr, inw := io.Pipe()
	outr, outw := io.Pipe()
	n.Stdin = inr
	n.Stdout = outw
	n.Logger = zaptest.NewLogger(tb).Sugar()

	c := &Conn{
		tb:    tb,
		stdin: inw,
		lines: make(chan string, 1024),
		done:  make(chan error, 1),
	}

	// Start the message loop.
	go func() {
		err := n.Run()
		_ = outw.Close()
		c.done <- err
	}()

	// Collect output so the node never blocks on a slow test.
	go func() {
		defer close(c.lines)
		r := bufio.NewReader(outr)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			c.lines <- line
		}
	}()

	// Ensure node stops by the end of the test.
	tb.Cleanup(func() {
		if err := inw.Close(); err != nil {
			tb.Fatalf("closing stdin: %s", err)
		}
		_ = c.Wait()
	})

	return c
}

// Send writes a raw line to the node's STDIN.
func (c *Conn) Send(line string) {
	c.tb.Helper()
	if err := c.Write(line); err != nil {
		c.tb.Fatal(err)
	}
}

// Sendf formats and writes a line to the node's STDIN.
func (c *Conn) Sendf(format string, args ...any) {
	c.tb.Helper()
	c.Send(fmt.Sprintf(format, args...))
}

// Write writes a raw line to the node's STDIN. Unlike Send it is safe to call
// from goroutines other than the test's.
func (c *Conn) Write(line string) error {
	_, err := io.WriteString(c.stdin, strings.TrimSuffix(line, "\n")+"\n")
	return err
}

// Lines returns the node's output lines. The channel is closed once the node
// stops. Reading from it competes with Recv.
func (c *Conn) Lines() <-chan string {
	return c.lines
}

// Recv returns the next line the node wrote, including the trailing newline.
func (c *Conn) Recv() string {
	c.tb.Helper()
	select {
	case line, ok := <-c.lines:
		if !ok {
			c.tb.Fatal("node output closed")
		}
		return line
	case <-time.After(Timeout):
		c.tb.Fatal("timeout waiting for node output")
	}
	return ""
}

// RecvMessage returns the next message the node wrote.
func (c *Conn) RecvMessage() maelstrom.Message {
	c.tb.Helper()
	line := c.Recv()
	msg, err := maelstrom.DecodeMessage([]byte(line))
	if err != nil {
		c.tb.Fatalf("decode %q: %s", line, err)
	}
	return msg
}

// TryRecv returns the next line if one is written within d.
func (c *Conn) TryRecv(d time.Duration) (string, bool) {
	select {
	case line, ok := <-c.lines:
		return line, ok
	case <-time.After(d):
		return "", false
	}
}

// Init sends "init" with msg_id 1 and verifies the "init_ok" reply.
func (c *Conn) Init(id string, nodeIDs ...string) {
	c.tb.Helper()
	if len(nodeIDs) == 0 {
		nodeIDs = []string{id}
	}
	ids, err := json.Marshal(nodeIDs)
	if err != nil {
		c.tb.Fatal(err)
	}
	c.Sendf(`{"src":"c0","dest":%q,"body":{"type":"init","msg_id":1,"node_id":%q,"node_ids":%s}}`, id, id, ids)

	// Read & verify
	if got, want := c.Recv(), fmt.Sprintf(`{"src":%q,"dest":"c0","body":{"in_reply_to":1,"type":"init_ok"}}`+"\n", id); got != want {
		c.tb.Fatalf("init_ok=%s, want %s", got, want)
	}
}

// CloseStdin signals EOF to the node.
func (c *Conn) CloseStdin() {
	c.tb.Helper()
	if err := c.stdin.Close(); err != nil {
		c.tb.Fatal(err)
	}
}

// Wait blocks until Run returns and returns its error.
func (c *Conn) Wait() error {
	c.waitOnce.Do(func() {
		select {
		case c.err = <-c.done:
		case <-time.After(Timeout):
			c.tb.Errorf("timeout waiting for node to stop")
		}
	})
	return c.err
}
