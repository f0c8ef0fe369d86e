package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clientdesk/clientdesk/internal/model"
)

const projectColumns = `id, account_id, full_name, short_name, description, state, created_at, updated_at`

// GetProjectByID retrieves a project by its ID.
func (t *pgTx) GetProjectByID(ctx context.Context, id int64) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// InsertProject inserts a new project and fills in its generated fields.
func (t *pgTx) InsertProject(ctx context.Context, project *model.Project) error {
	if !project.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProjectState, project.State)
	}

	query := `
		INSERT INTO projects (account_id, full_name, short_name, description, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRow(ctx, query,
		project.AccountID,
		project.FullName,
		project.ShortName,
		project.Description,
		project.State,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// UpdateProject stores the mutable fields of a project.
func (t *pgTx) UpdateProject(ctx context.Context, project *model.Project) error {
	if !project.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProjectState, project.State)
	}

	query := `
		UPDATE projects
		SET full_name = $2, short_name = $3, description = $4, state = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := t.tx.QueryRow(ctx, query,
		project.ID,
		project.FullName,
		project.ShortName,
		project.Description,
		project.State,
	).Scan(&project.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// DeleteProject removes a project row permanently.
func (t *pgTx) DeleteProject(ctx context.Context, id int64) error {
	result, err := t.tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// ListProjectsByOwner returns every project of an account in creation order.
func (t *pgTx) ListProjectsByOwner(ctx context.Context, accountID int64) ([]*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE account_id = $1 ORDER BY id`

	rows, err := t.tx.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*model.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var project model.Project
	err := row.Scan(
		&project.ID,
		&project.AccountID,
		&project.FullName,
		&project.ShortName,
		&project.Description,
		&project.State,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if !project.State.IsValid() {
		return nil, fmt.Errorf("project %d: %w: %q", project.ID, ErrInvalidProjectState, project.State)
	}
	return &project, nil
}
