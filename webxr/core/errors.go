package core

import (
	"errors"
)

var (
	ErrNotInitialized = errors.New("facade not initialized")
	ErrQueueFull      = errors.New("device event queue full, event dropped")
)
