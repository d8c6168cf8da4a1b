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

type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
}

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, name, description, status, start_date, end_date, owner_id, created_at, updated_at`

func scanProject(row pgx.Row) (models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate,
		&p.EndDate, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProjectRepository) Create(ctx context.Context, ownerID uuid.UUID, p models.Project) (models.Project, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO projects (name, description, status, start_date, end_date, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+projectColumns,
		p.Name, p.Description, p.Status, p.StartDate, p.EndDate, ownerID,
	)

	created, err := scanProject(row)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

func (r *ProjectRepository) List(ctx context.Context, ownerID uuid.UUID, status string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = $1`
	args := []any{ownerID}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)

	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to fetch project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id, ownerID uuid.UUID, u ProjectUpdate) (models.Project, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE projects SET
		     name        = COALESCE($1, name),
		     description = COALESCE($2, description),
		     status      = COALESCE($3, status),
		     start_date  = COALESCE($4, start_date),
		     end_date    = COALESCE($5, end_date),
		     updated_at  = now()
		 WHERE id = $6 AND owner_id = $7
		 RETURNING `+projectColumns,
		u.Name, u.Description, u.Status, u.StartDate, u.EndDate, id, ownerID,
	)

	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id, ownerID uuid.UUID, status string) (models.Project, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE projects SET status = $1, updated_at = now()
		 WHERE id = $2 AND owner_id = $3
		 RETURNING `+projectColumns,
		status, id, ownerID,
	)

	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to update project status: %w", err)
	}
	return p, nil
}

// Delete removes the project only. Tasks keep their project reference;
// readers resolve it as "unknown project" afterwards.
func (r *ProjectRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM projects WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NamesByIDs resolves display names for a batch of project ids in one
// query. Ids that are unknown, or not owned by the caller, are absent
// from the result.
func (r *ProjectRepository) NamesByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM projects WHERE owner_id = $1 AND id = ANY($2::uuid[])`,
		ownerID, strIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan project name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
