package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/models"
)

// TaskFilter narrows List. Zero values mean "no filter"; when both are
// set they combine with AND.
type TaskFilter struct {
	Status    string
	ProjectID *uuid.UUID
}

// TaskUpdate is a partial update: nil fields keep their stored value.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	ProjectID   *uuid.UUID
}

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, title, description, status, priority, due_date, project_id, created_by_id, created_at, updated_at`

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.ProjectID, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create persists a new task. The creator always comes from the verified
// identity, never from client input.
func (r *TaskRepository) Create(ctx context.Context, creatorID uuid.UUID, t models.Task) (models.Task, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (title, description, status, priority, due_date, project_id, created_by_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+taskColumns,
		t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.ProjectID, creatorID,
	)

	created, err := scanTask(row)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// List returns the caller's tasks, most recent first.
func (r *TaskRepository) List(ctx context.Context, creatorID uuid.UUID, filter TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE created_by_id = $1`
	args := []any{creatorID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to fetch task: %w", err)
	}
	return t, nil
}

// Update applies a partial merge, scoped to the creator in a single
// statement so a non-owner gets the same ErrNotFound as a missing id.
func (r *TaskRepository) Update(ctx context.Context, id, creatorID uuid.UUID, u TaskUpdate) (models.Task, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tasks SET
		     title       = COALESCE($1, title),
		     description = COALESCE($2, description),
		     status      = COALESCE($3, status),
		     priority    = COALESCE($4, priority),
		     due_date    = COALESCE($5, due_date),
		     project_id  = COALESCE($6, project_id),
		     updated_at  = now()
		 WHERE id = $7 AND created_by_id = $8
		 RETURNING `+taskColumns,
		u.Title, u.Description, u.Status, u.Priority, u.DueDate, u.ProjectID, id, creatorID,
	)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id, creatorID uuid.UUID, status string) (models.Task, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tasks SET status = $1, updated_at = now()
		 WHERE id = $2 AND created_by_id = $3
		 RETURNING `+taskColumns,
		status, id, creatorID,
	)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to update task status: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, creatorID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND created_by_id = $2`, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
