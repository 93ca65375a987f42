package room

import (
	"splitroom/internal/displayname"
	"splitroom/internal/domain"
)

// subscriberBuffer is the per-connection backlog of state snapshots. Every
// snapshot is complete, so a slow consumer can safely lose older ones.
const subscriberBuffer = 8

// State is the full room snapshot pushed to every subscriber after each
// mutation. Broadcasts always carry the whole state, never deltas, so a
// dropped or reordered message can never leave a client diverged.
type State struct {
	Ledger       []map[string]float64 `json:"ledger"`
	Totals       map[string]float64   `json:"totals"`
	Participants map[string]string    `json:"participants"`
	Presence     int                  `json:"presence"`
}

// Subscriber receives room state snapshots on a buffered channel. One
// subscriber corresponds to one live connection.
type Subscriber struct {
	token string
	ch    chan State
}

// States is the channel snapshots arrive on. The channel is never closed;
// the subscriber is abandoned when the connection leaves the room.
func (s *Subscriber) States() <-chan State { return s.ch }

// Room owns one receipt, its claim ledger and the participant directory.
// All mutations flow through a single mailbox goroutine, which gives a total
// order of operations per room; distinct rooms share nothing and run fully
// in parallel. Callers always get the outcome of their own operation before
// anything else is applied.
type Room struct {
	id      string
	receipt domain.Receipt
	mailbox chan func()

	// Owned by the mailbox goroutine. Never touch outside r.do.
	ledger *Ledger
	names  map[string]string
	conns  map[string]int
	subs   map[*Subscriber]struct{}
}

func newRoom(id string, receipt domain.Receipt) *Room {
	r := &Room{
		id:      id,
		receipt: receipt,
		mailbox: make(chan func(), 64),
		ledger:  NewLedger(receipt.Items),
		names:   make(map[string]string),
		conns:   make(map[string]int),
		subs:    make(map[*Subscriber]struct{}),
	}
	go r.run()
	return r
}

func (r *Room) run() {
	for op := range r.mailbox {
		op()
	}
}

// do enqueues op on the mailbox and waits for it to finish.
func (r *Room) do(op func()) {
	done := make(chan struct{})
	r.mailbox <- func() {
		op()
		close(done)
	}
	<-done
}

func (r *Room) ID() string { return r.id }

// Receipt returns the immutable receipt the room was created with.
func (r *Room) Receipt() domain.Receipt { return r.receipt }

// Join registers a connection for the participant identified by token.
// A non-empty name replaces the stored display name; an empty one keeps the
// existing name, falling back to a generated guest name for first joins.
// Claims keyed by the same token survive disconnects, so a rejoin picks up
// right where the participant left off.
func (r *Room) Join(token, name string) (*Subscriber, State) {
	sub := &Subscriber{token: token, ch: make(chan State, subscriberBuffer)}
	var st State
	r.do(func() {
		if name != "" {
			r.names[token] = name
		} else if _, ok := r.names[token]; !ok {
			r.names[token] = displayname.Generate(token)
		}
		r.conns[token]++
		r.subs[sub] = struct{}{}
		st = r.state()
		r.push(st)
	})
	return sub, st
}

// Leave drops the subscriber and decrements presence. Claims and the display
// name stay: a transient network drop must not forfeit a selection.
func (r *Room) Leave(sub *Subscriber) {
	r.do(func() {
		if _, ok := r.subs[sub]; !ok {
			return
		}
		delete(r.subs, sub)
		if r.conns[sub.token]--; r.conns[sub.token] <= 0 {
			delete(r.conns, sub.token)
		}
		r.push(r.state())
	})
}

// Rename updates the participant's display name and broadcasts the change.
// Empty or unchanged names are ignored.
func (r *Room) Rename(token, name string) {
	r.do(func() {
		if name == "" || r.names[token] == name {
			return
		}
		r.names[token] = name
		r.push(r.state())
	})
}

// Claim applies a claim for the participant and broadcasts on success.
// The error, if any, wraps one of the domain sentinels.
func (r *Room) Claim(itemIndex int, token string, qty float64) error {
	var err error
	r.do(func() {
		if err = r.ledger.Claim(itemIndex, token, qty); err == nil {
			r.push(r.state())
		}
	})
	return err
}

// Unclaim releases part of a claim and broadcasts on success.
func (r *Room) Unclaim(itemIndex int, token string, qty float64) error {
	var err error
	r.do(func() {
		if err = r.ledger.Unclaim(itemIndex, token, qty); err == nil {
			r.push(r.state())
		}
	})
	return err
}

// Snapshot returns the current full state without mutating anything.
func (r *Room) Snapshot() State {
	var st State
	r.do(func() {
		st = r.state()
	})
	return st
}

// state builds a snapshot. Mailbox goroutine only.
func (r *Room) state() State {
	presence := 0
	for _, n := range r.conns {
		if n > 0 {
			presence++
		}
	}
	names := make(map[string]string, len(r.names))
	participants := make([]string, 0, len(r.names))
	for t, n := range r.names {
		names[t] = n
		participants = append(participants, t)
	}
	ledger := r.ledger.Snapshot()
	return State{
		Ledger:       ledger,
		Totals:       Totals(r.receipt, ledger, participants),
		Participants: names,
		Presence:     presence,
	}
}

// push fans the snapshot out to all subscribers without ever blocking the
// mailbox. A full subscriber buffer loses its oldest snapshot in favor of
// the newest. Mailbox goroutine only.
func (r *Room) push(st State) {
	for sub := range r.subs {
		select {
		case sub.ch <- st:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- st:
			default:
			}
		}
	}
}
