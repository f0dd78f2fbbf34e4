package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

func TestIncrementProgress(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "materials_completed", "quizzes_completed",
		"assignments_submitted", "games_completed", "progress_percent", "created_at", "updated_at",
	}).AddRow("p1", "s1", "c1", 3, 0, 0, 0, 0, now, now)
	mock.ExpectQuery(`DO UPDATE SET materials_completed = progress.materials_completed \+ 1`).
		WithArgs(sqlmock.AnyArg(), "s1", "c1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	progress, err := repo.Increment(context.Background(), "s1", "c1", models.ActivityMaterial)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.MaterialsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementProgressUnknownKind(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	_, err := repo.Increment(context.Background(), "s1", "c1", models.ActivityKind("dance"))
	require.Error(t, err)
}

func TestSetPercent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec("UPDATE progress SET progress_percent").
		WithArgs(43, sqlmock.AnyArg(), "s1", "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetPercent(context.Background(), "s1", "c1", 43)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
