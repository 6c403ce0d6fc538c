// internal/repository/template_repository.go
package repository

import (
	"database/sql"

	appErrors "github.com/truesoulcoder/crm-admin-sub000/internal/errors"
	"github.com/truesoulcoder/crm-admin-sub000/internal/model"
)

type TemplateRepositoryInterface interface {
	GetByID(id string) (*model.Template, error)
}

type TemplateRepository struct {
	DB *sql.DB
}

func (r *TemplateRepository) GetByID(id string) (*model.Template, error) {
	query := `
        SELECT id, name, type, subject, content, active, created_at, updated_at
        FROM templates WHERE id = $1
    `
	var t model.Template
	err := r.DB.QueryRow(query, id).Scan(
		&t.ID, &t.Name, &t.Type, &t.Subject, &t.Content, &t.Active,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTemplateNotFound(id)
		}
		return nil, err
	}
	return &t, nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
