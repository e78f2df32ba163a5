package taskqueue

import (
	"errors"
	"fmt"
)

// ErrExecutorClosed is returned by Submit after Stop has been called.
var ErrExecutorClosed = errors.New("taskqueue: executor closed")

// ErrQueueFull is the sentinel matched by errors.Is for *QueueFullError.
var ErrQueueFull = errors.New("taskqueue: queue full")

// QueueFullError reports that a shard's queue stayed full past the enqueue
// timeout. It unwraps to ErrQueueFull.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("taskqueue: shard %d full (%d/%d)", e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }
