package maelstrom_test

import (
	"errors"
	"fmt"
	"testing"

	maelstrom "github.com/dsglomers/maelstrom"
)

func TestIdentity(t *testing.T) {
	var id maelstrom.Identity
	if _, ok := id.Lookup(); ok {
		t.Fatal("expected unassigned identity")
	}
	if got, want := id.String(), "<unassigned>"; got != want {
		t.Fatalf("id=%s, want %s", got, want)
	}

	if err := id.Assign("n1"); err != nil {
		t.Fatal(err)
	}
	if got, ok := id.Lookup(); !ok || got != "n1" {
		t.Fatalf("id=%q/%v, want n1", got, ok)
	}

	err := id.Assign("n2")
	if !maelstrom.IsFatal(err) || !errors.Is(err, maelstrom.ErrAlreadyAssigned) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := id.String(), "n1"; got != want {
		t.Fatalf("id=%s, want %s", got, want)
	}
}

func TestFatal(t *testing.T) {
	if maelstrom.Fatal(nil) != nil {
		t.Fatal("expected nil")
	}
	err := maelstrom.Fatal(errors.New("boom"))
	if !maelstrom.IsFatal(fmt.Errorf("wrapped: %w", err)) {
		t.Fatal("expected wrapped error to stay fatal")
	}
	if maelstrom.IsFatal(errors.New("boom")) {
		t.Fatal("unexpected fatal error")
	}
	if got, want := maelstrom.Fatal(err), err; got != want {
		t.Fatalf("double wrap: %v", got)
	}
}
