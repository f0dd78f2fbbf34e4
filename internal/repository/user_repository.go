package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// UserRepository handles account persistence.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account row.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, email, password_hash, name, role, eco_points, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :name, :role, :eco_points, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID returns the account with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	const query = `SELECT id, email, password_hash, name, role, eco_points, created_at, updated_at FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the account with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	const query = `SELECT id, email, password_hash, name, role, eco_points, created_at, updated_at FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail reports whether an account already uses the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM users WHERE email = $1`, email); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

// List returns accounts matching the filter plus the total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	base := ` FROM users WHERE 1=1`
	var args []interface{}
	if filter.Role != nil {
		base += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(1)"+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	query := `SELECT id, email, password_hash, name, role, eco_points, created_at, updated_at` + base +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", size, (page-1)*size)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// AddEcoPoints atomically adds delta to a student's balance, flooring the
// result at zero. Returns the new balance and whether the student existed.
// The increment happens inside the database so concurrent awards to the same
// student are never lost.
func (r *UserRepository) AddEcoPoints(ctx context.Context, studentID string, delta int) (int, bool, error) {
	const query = `UPDATE users SET eco_points = GREATEST(eco_points + $1, 0), updated_at = $2
        WHERE id = $3 AND role = $4 RETURNING eco_points`
	var balance int
	err := r.db.GetContext(ctx, &balance, query, delta, time.Now().UTC(), studentID, models.RoleStudent)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("add eco points: %w", err)
	}
	return balance, true, nil
}

// RankedStudents returns all students ordered by ecoPoints descending with a
// deterministic id tie-break, optionally bounded by a minimum balance.
func (r *UserRepository) RankedStudents(ctx context.Context, minPoints, limit int) ([]models.User, error) {
	query := `SELECT id, email, password_hash, name, role, eco_points, created_at, updated_at
        FROM users WHERE role = $1 AND eco_points >= $2 ORDER BY eco_points DESC, id ASC`
	args := []interface{}{models.RoleStudent, minPoints}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("rank students: %w", err)
	}
	return users, nil
}

// ReplaceSelectedTeachers swaps a student's teacher selection set.
func (r *UserRepository) ReplaceSelectedTeachers(ctx context.Context, studentID string, teacherIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM selected_teachers WHERE student_id = $1`, studentID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear selected teachers: %w", err)
	}
	for _, teacherID := range teacherIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO selected_teachers (student_id, teacher_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			studentID, teacherID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert selected teacher: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit selected teachers: %w", err)
	}
	return nil
}

// SelectedTeacherIDs returns the teacher account ids a student follows.
func (r *UserRepository) SelectedTeacherIDs(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	const query = `SELECT teacher_id FROM selected_teachers WHERE student_id = $1 ORDER BY teacher_id`
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list selected teachers: %w", err)
	}
	return ids, nil
}

// CreateRefreshToken stores a new refresh session.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked)
        VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns the session for a refresh token value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at
        FROM refresh_tokens WHERE token = $1`
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks a single refresh session as revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE id = $2 AND NOT revoked`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes every live refresh session for a user.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE user_id = $2 AND NOT revoked`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// IDsByRole returns the ids of every account holding one of the roles.
func (r *UserRepository) IDsByRole(ctx context.Context, roles ...models.UserRole) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(roles))
	args := make([]interface{}, len(roles))
	for i, role := range roles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = role
	}
	query := fmt.Sprintf(`SELECT id FROM users WHERE role IN (%s)`, strings.Join(placeholders, ","))
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list ids by role: %w", err)
	}
	return ids, nil
}
