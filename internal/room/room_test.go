package room

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"splitroom/internal/domain"
)

func testReceipt() domain.Receipt {
	return domain.Receipt{
		Items: []domain.Item{
			{Name: "Pizza", UnitPrice: 12, Quantity: 2},
			{Name: "Tiramisu", UnitPrice: 6.5, Quantity: 1},
		},
		Subtotal: 30.5,
		Total:    33,
	}
}

// waitForState drains a subscriber until a snapshot satisfies the predicate
// or the deadline passes.
func waitForState(t *testing.T, sub *Subscriber, what string, ok func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-sub.States():
			if ok(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func TestRoomPresenceCountsParticipantsNotConnections(t *testing.T) {
	r := newRoom("TEST01", testReceipt())

	subA, st := r.Join("alice", "Alice")
	if st.Presence != 1 {
		t.Fatalf("presence after first join = %d, want 1", st.Presence)
	}

	// Second tab, same client token.
	subA2, st := r.Join("alice", "")
	if st.Presence != 1 {
		t.Fatalf("presence with two connections of one participant = %d, want 1", st.Presence)
	}

	_, st = r.Join("bob", "Bob")
	if st.Presence != 2 {
		t.Fatalf("presence with two participants = %d, want 2", st.Presence)
	}

	r.Leave(subA)
	r.Leave(subA2)
	if st := r.Snapshot(); st.Presence != 1 {
		t.Fatalf("presence after alice fully left = %d, want 1", st.Presence)
	}
}

func TestRoomDisconnectKeepsClaimsAndName(t *testing.T) {
	r := newRoom("TEST02", testReceipt())

	sub, _ := r.Join("alice", "Alice")
	if err := r.Claim(0, "alice", 1); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	r.Leave(sub)

	st := r.Snapshot()
	if st.Presence != 0 {
		t.Fatalf("presence = %d, want 0", st.Presence)
	}
	if st.Ledger[0]["alice"] != 1 {
		t.Fatalf("claims lost on disconnect: %v", st.Ledger)
	}
	if st.Participants["alice"] != "Alice" {
		t.Fatalf("display name lost on disconnect: %v", st.Participants)
	}

	// Rejoining with the same token and no name keeps the sticky name.
	_, st = r.Join("alice", "")
	if st.Participants["alice"] != "Alice" {
		t.Fatalf("name after rejoin = %q, want Alice", st.Participants["alice"])
	}
}

func TestRoomBroadcastsMutationsToOtherMembers(t *testing.T) {
	r := newRoom("TEST03", testReceipt())

	_, _ = r.Join("alice", "Alice")
	subB, _ := r.Join("bob", "Bob")

	if err := r.Claim(0, "alice", 2); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	st := waitForState(t, subB, "alice's claim", func(st State) bool {
		return st.Ledger[0]["alice"] == 2
	})
	wantDue := 12*2.0 + 2.5 // full pizza base plus all fees
	if st.Totals["alice"] != wantDue {
		t.Fatalf("broadcast totals[alice] = %v, want %v", st.Totals["alice"], wantDue)
	}
}

func TestRoomClaimUnclaimRoundTrip(t *testing.T) {
	r := newRoom("TEST04", testReceipt())
	_, _ = r.Join("alice", "Alice")

	before := r.Snapshot()
	if err := r.Claim(0, "alice", 1); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if err := r.Unclaim(0, "alice", 1); err != nil {
		t.Fatalf("unclaim failed: %v", err)
	}
	after := r.Snapshot()

	if !reflect.DeepEqual(before.Ledger, after.Ledger) {
		t.Fatalf("ledger not restored: %v vs %v", before.Ledger, after.Ledger)
	}
	if !reflect.DeepEqual(before.Totals, after.Totals) {
		t.Fatalf("totals not restored: %v vs %v", before.Totals, after.Totals)
	}
}

func TestRoomFailedClaimDoesNotBroadcast(t *testing.T) {
	r := newRoom("TEST05", testReceipt())
	sub, _ := r.Join("alice", "Alice")

	// Drain the join broadcast.
	waitForState(t, sub, "join broadcast", func(State) bool { return true })

	if err := r.Claim(99, "alice", 1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("claim error = %v, want ErrValidation", err)
	}

	select {
	case st := <-sub.States():
		t.Fatalf("rejected claim produced a broadcast: %+v", st)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoomConcurrentExclusiveClaims(t *testing.T) {
	for i := 0; i < 20; i++ {
		r := newRoom("TEST06", testReceipt())
		_, _ = r.Join("alice", "")
		_, _ = r.Join("bob", "")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, token := range []string{"alice", "bob"} {
			wg.Add(1)
			go func(j int, token string) {
				defer wg.Done()
				errs[j] = r.Claim(1, token, 1)
			}(j, token)
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrExclusiveConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if wins != 1 || conflicts != 1 {
			t.Fatalf("wins = %d conflicts = %d, want exactly one of each", wins, conflicts)
		}
	}
}

func TestRoomConcurrentClaimsNeverOverdraw(t *testing.T) {
	r := newRoom("TEST07", testReceipt())
	tokens := []string{"a", "b", "c", "d", "e"}
	for _, tok := range tokens {
		_, _ = r.Join(tok, "")
	}

	// Item 0 has quantity 2; five participants race for one unit each.
	var wg sync.WaitGroup
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			_ = r.Claim(0, tok, 1)
		}(tok)
	}
	wg.Wait()

	st := r.Snapshot()
	var claimed float64
	for _, qty := range st.Ledger[0] {
		claimed += qty
	}
	if claimed > testReceipt().Items[0].Quantity+capacityEpsilon {
		t.Fatalf("claimed %v exceeds capacity %v", claimed, testReceipt().Items[0].Quantity)
	}
}

func TestRoomRename(t *testing.T) {
	r := newRoom("TEST08", testReceipt())
	_, st := r.Join("alice", "")

	generated := st.Participants["alice"]
	if generated == "" {
		t.Fatalf("first join without a name should generate one")
	}

	r.Rename("alice", "Alice P")
	if st := r.Snapshot(); st.Participants["alice"] != "Alice P" {
		t.Fatalf("name after rename = %q, want %q", st.Participants["alice"], "Alice P")
	}
}
