package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "eco_points", "created_at", "updated_at"}).
		AddRow("1", "student@example.com", "hash", "Student", string(models.RoleStudent), 40, now, now)
	mock.ExpectQuery("SELECT id, email, password_hash, name, role, eco_points, created_at, updated_at FROM users WHERE email").
		WithArgs("student@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "student@example.com")
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", user.Email)
	assert.Equal(t, 40, user.EcoPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddEcoPoints(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"eco_points"}).AddRow(55)
	mock.ExpectQuery(`UPDATE users SET eco_points = GREATEST\(eco_points \+ \$1, 0\)`).
		WithArgs(15, sqlmock.AnyArg(), "student-1", models.RoleStudent).
		WillReturnRows(rows)

	balance, found, err := repo.AddEcoPoints(context.Background(), "student-1", 15)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 55, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddEcoPointsUnknownStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`UPDATE users SET eco_points = GREATEST`).
		WithArgs(10, sqlmock.AnyArg(), "ghost", models.RoleStudent).
		WillReturnRows(sqlmock.NewRows([]string{"eco_points"}))

	_, found, err := repo.AddEcoPoints(context.Background(), "ghost", 10)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRankedStudents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "eco_points", "created_at", "updated_at"}).
		AddRow("a", "a@example.com", "hash", "A", string(models.RoleStudent), 100, now, now).
		AddRow("b", "b@example.com", "hash", "B", string(models.RoleStudent), 100, now, now)
	mock.ExpectQuery("ORDER BY eco_points DESC, id ASC").
		WithArgs(models.RoleStudent, 0).
		WillReturnRows(rows)

	users, err := repo.RankedStudents(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(`SELECT COUNT\(1\) FROM users WHERE 1=1`).WillReturnRows(countRows)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "eco_points", "created_at", "updated_at"}).
		AddRow("1", "a@example.com", "hash", "A", string(models.RoleAdmin), 0, now, now)
	mock.ExpectQuery("FROM users WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0").
		WillReturnRows(listRows)

	users, total, err := repo.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
