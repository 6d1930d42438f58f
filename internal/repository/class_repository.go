package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scolaire/timetable-api/internal/models"
)

// ClassRepository reads the class-section registry. Sections are created
// and edited by the surrounding dashboard; the engine only consumes them.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository builds the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns every class section in a fixed order so generation stays
// deterministic.
func (r *ClassRepository) List(ctx context.Context) ([]models.ClassSection, error) {
	const query = `SELECT id, name, level, capacity, enrolled, subjects, created_at, updated_at
FROM class_sections ORDER BY name ASC, id ASC`
	var classes []models.ClassSection
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list class sections: %w", err)
	}
	return classes, nil
}

// FindByID returns one class section; sql.ErrNoRows when absent.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassSection, error) {
	const query = `SELECT id, name, level, capacity, enrolled, subjects, created_at, updated_at
FROM class_sections WHERE id = $1`
	var class models.ClassSection
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}
