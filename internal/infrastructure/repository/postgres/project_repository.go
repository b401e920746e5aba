package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, name, description, created_at
FROM projects
WHERE id = $1
`, id)

	var project domain.Project
	err := row.Scan(&project.ID, &project.OwnerID, &project.Name, &project.Description, &project.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get project", fmt.Errorf("project %s", id))
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &project, nil
}

func (r *ProjectRepository) HasAccess(ctx context.Context, projectID, userID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT EXISTS (
	SELECT 1 FROM projects WHERE id = $1 AND owner_id = $2
	UNION ALL
	SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2
)
`, projectID, userID)

	var allowed bool
	if err := row.Scan(&allowed); err != nil {
		return false, fmt.Errorf("check project access: %w", err)
	}
	return allowed, nil
}
