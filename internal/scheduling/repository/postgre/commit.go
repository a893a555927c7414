package postgre

import (
	"context"

	"task-scheduling-assistant/internal/model"
	repo "task-scheduling-assistant/internal/scheduling/repository"
)

// CommitTaskEvent updates the task and inserts or updates its scheduled event in one transaction.
func (r *implRepository) CommitTaskEvent(ctx context.Context, opt repo.CommitTaskEventOptions) error {
	if !opt.Event.UserResponse.Valid() {
		opt.Event.UserResponse = model.ResponsePending
	}
	if opt.InsertEvent && opt.Event.ID == "" {
		opt.Event.ID = r.newID()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.l.Errorf(ctx, "%s begin: %v", r.dsn("CommitTaskEvent"), err)
		return repo.ErrFailedToUpdate
	}
	defer tx.Rollback()

	if err := r.updateTask(ctx, tx, opt.Task); err != nil {
		return err
	}

	if opt.InsertEvent {
		err = r.insertEvent(ctx, tx, opt.Event)
	} else {
		err = r.updateEvent(ctx, tx, opt.Event)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		r.l.Errorf(ctx, "%s commit: %v", r.dsn("CommitTaskEvent"), err)
		return repo.ErrFailedToUpdate
	}
	return nil
}
