package repository

import "errors"

var (
	ErrFailedToInsert = errors.New("failed to insert record")
	ErrFailedToGet    = errors.New("failed to get record")
	ErrFailedToList   = errors.New("failed to list records")
	ErrFailedToUpdate = errors.New("failed to update record")
	ErrFailedToDelete = errors.New("failed to delete record")

	// ErrVersionConflict means the conversation row changed since it was read.
	ErrVersionConflict = errors.New("conversation state version conflict")
	// ErrInconsistentTask means a task write would leave ExternalEventID and SchedulingStatus disagreeing.
	ErrInconsistentTask = errors.New("task external event id does not match scheduling status")
)
