package domain

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrValidation        = errors.New("validation failed")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrExclusiveConflict = errors.New("exclusive conflict")
)
