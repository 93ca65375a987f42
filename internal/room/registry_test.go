package room

import (
	"strings"
	"testing"
)

func TestRegistryCreateAndGet(t *testing.T) {
	reg := NewRegistry()

	rm := reg.Create(testReceipt())
	if len(rm.ID()) != roomIDLength {
		t.Fatalf("room id %q, want %d characters", rm.ID(), roomIDLength)
	}
	if rm.ID() != strings.ToUpper(rm.ID()) {
		t.Fatalf("room id %q is not uppercase", rm.ID())
	}

	got, ok := reg.Get(rm.ID())
	if !ok || got != rm {
		t.Fatalf("Get(%q) = %v, %v", rm.ID(), got, ok)
	}

	// Ids pasted from links arrive in any case and with whitespace.
	if _, ok := reg.Get(" " + strings.ToLower(rm.ID()) + " "); !ok {
		t.Fatalf("lookup should tolerate case and padding")
	}
}

func TestRegistryUnknownRoom(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Get("NOPE42"); ok {
		t.Fatalf("unknown id resolved to a room")
	}
}

func TestRegistryRoomsAreIndependent(t *testing.T) {
	reg := NewRegistry()
	a := reg.Create(testReceipt())
	b := reg.Create(testReceipt())

	if a.ID() == b.ID() {
		t.Fatalf("two rooms share the id %q", a.ID())
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}

	if err := a.Claim(0, "alice", 1); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if st := b.Snapshot(); len(st.Ledger[0]) != 0 {
		t.Fatalf("claim in room %s leaked into room %s", a.ID(), b.ID())
	}
}
