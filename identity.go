package maelstrom

// Identity is the node's cluster id. It starts unassigned and is assigned
// exactly once, by the "init" handler.
type Identity struct {
	id       string
	assigned bool
}

// Lookup returns the assigned id. ok is false while the identity is unassigned.
func (i *Identity) Lookup() (id string, ok bool) {
	return i.id, i.assigned
}

// Assign sets the id. Returns a fatal ErrAlreadyAssigned on a second call.
func (i *Identity) Assign(id string) error {
	if i.assigned {
		return Fatal(ErrAlreadyAssigned)
	}
	i.id, i.assigned = id, true
	return nil
}

// String returns the id, or "<unassigned>".
func (i *Identity) String() string {
	if !i.assigned {
		return "<unassigned>"
	}
	return i.id
}
