package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/Masterminds/squirrel"
)

var syncTaskColumns = []string{
	"id", "task_type", "booking_id", "payload", "status", "retry_count",
	"last_error", "created_at", "processed_at", "next_retry_at",
}

func (db *DB) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	query, args, err := db.sb.Insert("sync_queue").
		Columns("task_type", "booking_id", "payload", "status", "retry_count", "last_error", "created_at", "next_retry_at").
		Values(task.TaskType, task.BookingID, task.Payload, task.Status, task.RetryCount, task.LastError, task.CreatedAt, task.NextRetryAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := db.QueryRowxContext(ctx, query, args...).Scan(&task.ID); err != nil {
		return fmt.Errorf("failed to create sync task: %w", err)
	}
	return nil
}

// GetPendingSyncTasks returns tasks due at now, oldest first.
func (db *DB) GetPendingSyncTasks(ctx context.Context, limit int, now time.Time) ([]models.SyncTask, error) {
	return db.selectSyncTasks(ctx, db.sb.Select(syncTaskColumns...).
		From("sync_queue").
		Where(squirrel.Eq{"status": []string{models.TaskStatusPending, models.TaskStatusRetry}}).
		Where(squirrel.Or{
			squirrel.Eq{"next_retry_at": nil},
			squirrel.LtOrEq{"next_retry_at": now.UTC()},
		}).
		OrderBy("created_at", "id").
		Limit(uint64(limit)))
}

// ClaimSyncTask moves a pending or retry task to processing. It returns false
// when the task was already taken or finished.
func (db *DB) ClaimSyncTask(ctx context.Context, id int64) (bool, error) {
	query, args, err := db.sb.Update("sync_queue").
		Set("status", models.TaskStatusRunning).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []string{models.TaskStatusPending, models.TaskStatusRetry}}).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to claim sync task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim sync task: %w", err)
	}
	return n == 1, nil
}

func (db *DB) UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var lastError *string
	if errMsg != "" {
		lastError = &errMsg
	}

	update := db.sb.Update("sync_queue").
		Set("status", status).
		Set("last_error", lastError).
		Set("next_retry_at", nextRetryAt).
		Where("id = ?", id)

	switch status {
	case models.TaskStatusRetry:
		update = update.Set("retry_count", squirrel.Expr("retry_count + 1"))
	case models.TaskStatusCompleted, models.TaskStatusFailed:
		update = update.Set("processed_at", time.Now().UTC())
	}

	query, args, err := update.ToSql()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update sync task status: %w", err)
	}
	return nil
}

func (db *DB) GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error) {
	return db.selectSyncTasks(ctx, db.sb.Select(syncTaskColumns...).
		From("sync_queue").
		Where("status = ?", models.TaskStatusFailed).
		OrderBy("created_at DESC", "id DESC"))
}

func (db *DB) selectSyncTasks(ctx context.Context, builder squirrel.SelectBuilder) ([]models.SyncTask, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	tasks := []models.SyncTask{}
	if err := db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get sync tasks: %w", err)
	}
	return tasks, nil
}
