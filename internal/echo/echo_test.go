package echo_test

import (
	"testing"

	maelstrom "github.com/dsglomers/maelstrom"
	"github.com/dsglomers/maelstrom/internal/echo"
	"github.com/dsglomers/maelstrom/internal/maelstromtest"
)

func TestEcho(t *testing.T) {
	n := maelstrom.NewNode()
	echo.Register(n)
	c := maelstromtest.Run(t, n)

	c.Send(`{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`)
	if got, want := c.Recv(), `{"src":"n1","dest":"c1","body":{"in_reply_to":1,"type":"init_ok"}}`+"\n"; got != want {
		t.Fatalf("response=%s, want %s", got, want)
	}

	c.Send(`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":2,"echo":"hi"}}`)
	if got, want := c.Recv(), `{"src":"n1","dest":"c1","body":{"echo":"hi","in_reply_to":2,"msg_id":1,"type":"echo_ok"}}`+"\n"; got != want {
		t.Fatalf("response=%s, want %s", got, want)
	}

	// Replies go back to whichever client asked and carry a fresh msg_id.
	c.Send(`{"src":"c2","dest":"n1","body":{"type":"echo","msg_id":2,"echo":"again"}}`)
	if got, want := c.Recv(), `{"src":"n1","dest":"c2","body":{"echo":"again","in_reply_to":2,"msg_id":2,"type":"echo_ok"}}`+"\n"; got != want {
		t.Fatalf("response=%s, want %s", got, want)
	}
}

func TestHandle_ErrMalformedRequest(t *testing.T) {
	n := maelstrom.NewNode()
	_, err := echo.Handle(n, maelstrom.Tick{Name: "echo"})
	if got, want := maelstrom.ErrorCode(err), maelstrom.MalformedRequest; got != want {
		t.Fatalf("code=%d, want %d", got, want)
	}
}
