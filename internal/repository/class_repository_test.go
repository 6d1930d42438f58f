package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "level", "capacity", "enrolled", "subjects", "created_at", "updated_at"}).
		AddRow("5eme-b", "5ème B", "5ème", 30, 28, "{Maths,Physique}", now, now).
		AddRow("6eme-a", "6ème A", "6ème", 30, 25, "{Maths,Français,Histoire}", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sections ORDER BY name ASC, id ASC")).
		WillReturnRows(rows)

	classes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "5ème B", classes[0].Name)
	assert.Equal(t, []string{"Maths", "Français", "Histoire"}, []string(classes[1].Subjects))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "level", "capacity", "enrolled", "subjects", "created_at", "updated_at"}).
		AddRow("6eme-a", "6ème A", "6ème", 30, 25, "{Maths}", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sections WHERE id = $1")).
		WithArgs("6eme-a").
		WillReturnRows(rows)

	class, err := repo.FindByID(context.Background(), "6eme-a")
	require.NoError(t, err)
	assert.Equal(t, "6ème A", class.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sections WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
