package interaction

import "errors"

var (
	ErrDragInProgress = errors.New("another drag is in progress")
	ErrNotDragging    = errors.New("no drag in progress")
	ErrNoLaneDrag     = errors.New("no lane drag in progress")
	ErrUnknownTask    = errors.New("task not found")
)
