package storage

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrExecutionNotFound = errors.New("execution not found")
	ErrModelNotFound     = errors.New("model not found")
	ErrMachineNotFound   = errors.New("machine not found")
	ErrUserNotFound      = errors.New("user not found")
)
