package ws

import (
	"errors"

	"splitroom/internal/domain"
	"splitroom/internal/room"
)

// ClientMessage is any frame sent by a client. Type is one of "join",
// "claim" or "unclaim"; the remaining fields apply per type.
type ClientMessage struct {
	Type  string   `json:"type"`
	Name  string   `json:"name,omitempty"`
	Token string   `json:"token,omitempty"`
	Item  *int     `json:"item,omitempty"`
	Qty   *float64 `json:"qty,omitempty"`
}

// JoinedMessage answers a successful join. Token echoes the client token,
// or carries the newly issued one the client must persist for reconnects.
type JoinedMessage struct {
	Type    string         `json:"type"`
	Token   string         `json:"token"`
	Receipt domain.Receipt `json:"receipt"`
	room.State
}

// AckMessage answers each claim/unclaim with its synchronous outcome.
type AckMessage struct {
	Type      string   `json:"type"`
	Op        string   `json:"op"`
	OK        bool     `json:"ok"`
	Error     string   `json:"error,omitempty"`
	Remaining *float64 `json:"remaining,omitempty"`
}

// StateMessage is the broadcast every room member receives after any
// successful mutation or presence change.
type StateMessage struct {
	Type string `json:"type"`
	room.State
}

// ErrorMessage reports a terminal condition, after which the server closes
// the connection.
type ErrorMessage struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// Wire error codes.
const (
	CodeRoomNotFound      = "room_not_found"
	CodeValidation        = "validation_error"
	CodeCapacityExceeded  = "capacity_exceeded"
	CodeExclusiveConflict = "exclusive_conflict"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return CodeCapacityExceeded
	case errors.Is(err, domain.ErrExclusiveConflict):
		return CodeExclusiveConflict
	case errors.Is(err, domain.ErrValidation):
		return CodeValidation
	case errors.Is(err, domain.ErrRoomNotFound):
		return CodeRoomNotFound
	}
	return "internal_error"
}
