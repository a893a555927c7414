package storage

// Timestamps are stored in UTC without zone. The DDL is valid for both Postgres and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		estimated_minutes INTEGER NOT NULL DEFAULT 30,
		priority INTEGER NOT NULL DEFAULT 2,
		energy_level INTEGER NOT NULL DEFAULT 2,
		deadline TIMESTAMP NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		scheduling_status TEXT NOT NULL DEFAULT 'unscheduled',
		scheduled_for TIMESTAMP NULL,
		proposed_slot_start TIMESTAMP NULL,
		proposed_slot_end TIMESTAMP NULL,
		external_event_id TEXT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks (user_id, scheduling_status)`,

	`CREATE TABLE IF NOT EXISTS scheduled_events (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		external_event_id TEXT NOT NULL UNIQUE,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		user_response TEXT NOT NULL DEFAULT 'pending',
		rescheduled_count INTEGER NOT NULL DEFAULT 0,
		reminder_sent_at TIMESTAMP NULL,
		post_check_sent_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_events_start ON scheduled_events (start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_events_end ON scheduled_events (end_time)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_events_user ON scheduled_events (user_id)`,

	`CREATE TABLE IF NOT EXISTS conversation_states (
		user_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		payload TEXT NOT NULL,
		version BIGINT NOT NULL,
		last_updated TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id TEXT PRIMARY KEY,
		timezone TEXT NOT NULL,
		language TEXT NOT NULL,
		start_hour INTEGER NOT NULL,
		end_hour INTEGER NOT NULL,
		allowed_days TEXT NOT NULL,
		notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS calendar_tokens (
		user_id TEXT PRIMARY KEY,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL DEFAULT '',
		token_type TEXT NOT NULL DEFAULT '',
		expiry TIMESTAMP NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		user_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		next_attempt_at TIMESTAMP NOT NULL,
		last_error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		delivered_at TIMESTAMP NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_due ON notifications (status, next_attempt_at)`,
}
