package timeline

import "errors"

// Sentinel errors for document mutations.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrLaneNotFound = errors.New("lane not found")
	ErrInvalidRange = errors.New("task end is before its start")
	ErrDuplicateID  = errors.New("id already exists")
	ErrLaneInUse    = errors.New("lane still has tasks")
	ErrNoLanes      = errors.New("no lanes defined")
)
