package ws

import (
	"errors"
	"fmt"
	"testing"

	"splitroom/internal/domain"
	"splitroom/internal/room"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "capacity", err: &room.CapacityError{Remaining: 0.5}, want: CodeCapacityExceeded},
		{name: "exclusive", err: fmt.Errorf("item 3: %w", domain.ErrExclusiveConflict), want: CodeExclusiveConflict},
		{name: "validation", err: fmt.Errorf("qty: %w", domain.ErrValidation), want: CodeValidation},
		{name: "not found", err: domain.ErrRoomNotFound, want: CodeRoomNotFound},
		{name: "unknown", err: errors.New("boom"), want: "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := errorCode(tc.err); got != tc.want {
				t.Fatalf("errorCode(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
