package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecolearn/ecolearn-api/internal/models"
	appErrors "github.com/ecolearn/ecolearn-api/pkg/errors"
)

type authUserStub struct {
	byEmail  *models.User
	byID     *models.User
	exists   bool
	created  *models.User
	updated  string
	sessions []*models.RefreshToken
}

func (s *authUserStub) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-1"
	s.created = user
	return nil
}

func (s *authUserStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *authUserStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.byEmail == nil {
		return nil, sql.ErrNoRows
	}
	return s.byEmail, nil
}

func (s *authUserStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists, nil
}

func (s *authUserStub) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.updated = passwordHash
	return nil
}

func (s *authUserStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	token.ID = fmt.Sprintf("rt-%d", len(s.sessions)+1)
	s.sessions = append(s.sessions, token)
	return nil
}

func (s *authUserStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	for _, session := range s.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authUserStub) RevokeRefreshToken(ctx context.Context, id string) error {
	for _, session := range s.sessions {
		if session.ID == id {
			session.Revoked = true
		}
	}
	return nil
}

func (s *authUserStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, session := range s.sessions {
		if session.UserID == userID {
			session.Revoked = true
		}
	}
	return nil
}

func (s *authUserStub) liveSessions() int {
	n := 0
	for _, session := range s.sessions {
		if !session.Revoked {
			n++
		}
	}
	return n
}

type authProfileStub struct {
	created *models.TeacherProfile
	profile *models.TeacherProfile
}

func (s *authProfileStub) Create(ctx context.Context, profile *models.TeacherProfile) error {
	profile.ID = "tp-1"
	s.created = profile
	return nil
}

func (s *authProfileStub) FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	if s.profile == nil {
		return nil, sql.ErrNoRows
	}
	return s.profile, nil
}

func newAuthFixture(users *authUserStub, profiles *authProfileStub) *AuthService {
	return NewAuthService(users, profiles, nil, nil, AuthConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "ecolearn-test",
	})
}

func TestRegisterStudentIssuesToken(t *testing.T) {
	users := &authUserStub{}
	svc := newAuthFixture(users, &authProfileStub{})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret1",
		Role:     "STUDENT",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Nil(t, resp.Teacher)
	require.NotNil(t, users.created)
	assert.NotEqual(t, "secret1", users.created.PasswordHash)
}

func TestRegisterTeacherCreatesPendingProfile(t *testing.T) {
	profiles := &authProfileStub{}
	svc := newAuthFixture(&authUserStub{}, profiles)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Ben",
		Email:    "ben@example.com",
		Password: "secret1",
		Role:     "TEACHER",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Teacher)
	assert.False(t, resp.Teacher.IsApproved)
	require.NotNil(t, profiles.created)
	assert.False(t, profiles.created.IsApproved)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthFixture(&authUserStub{exists: true}, &authProfileStub{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret1",
		Role:     "STUDENT",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := newAuthFixture(&authUserStub{}, &authProfileStub{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "secret1",
		Role:     "ADMIN",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &authUserStub{byEmail: &models.User{ID: "user-1", Email: "ana@example.com", PasswordHash: string(hash), Role: models.RoleStudent}}
	svc := newAuthFixture(users, &authProfileStub{})

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "wrong11"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc := newAuthFixture(&authUserStub{}, &authProfileStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginTeacherAttachesApprovalState(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &authUserStub{byEmail: &models.User{ID: "user-2", Email: "ben@example.com", PasswordHash: string(hash), Role: models.RoleTeacher}}
	profiles := &authProfileStub{profile: &models.TeacherProfile{ID: "tp-1", UserID: "user-2", IsApproved: true}}
	svc := newAuthFixture(users, profiles)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "ben@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, resp.Teacher)
	assert.True(t, resp.Teacher.IsApproved)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	users := &authUserStub{}
	svc := newAuthFixture(users, &authProfileStub{})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret1",
		Role:     "STUDENT",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newAuthFixture(&authUserStub{}, &authProfileStub{})
	other := NewAuthService(&authUserStub{}, &authProfileStub{}, nil, nil, AuthConfig{Secret: "other-secret", Expiry: time.Hour})

	resp, err := other.Register(context.Background(), models.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret1",
		Role:     "STUDENT",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	users := &authUserStub{byID: &models.User{ID: "user-1", Role: models.RoleStudent}}
	svc := newAuthFixture(users, &authProfileStub{})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret1",
		Role:     "STUDENT",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RefreshToken)

	rotated, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// the used token is single-use
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	users := &authUserStub{
		byID: &models.User{ID: "user-1", Role: models.RoleStudent},
		sessions: []*models.RefreshToken{{
			ID:        "rt-1",
			UserID:    "user-1",
			Token:     "stale",
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		}},
	}
	svc := newAuthFixture(users, &authProfileStub{})

	_, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	users := &authUserStub{byEmail: nil}
	svc := newAuthFixture(users, &authProfileStub{})

	for i := 0; i < 2; i++ {
		_, err := svc.Register(context.Background(), models.RegisterRequest{
			Name:     "Ana",
			Email:    fmt.Sprintf("ana%d@example.com", i),
			Password: "secret1",
			Role:     "STUDENT",
		})
		require.NoError(t, err)
	}
	require.Equal(t, 2, users.liveSessions())

	require.NoError(t, svc.Logout(context.Background(), "user-1"))
	assert.Zero(t, users.liveSessions())
}

func TestChangePasswordChecksOldPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("old-one1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &authUserStub{byID: &models.User{ID: "user-1", PasswordHash: string(hash)}}
	svc := newAuthFixture(users, &authProfileStub{})

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "not-it1",
		NewPassword: "new-one1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, users.updated)

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "old-one1",
		NewPassword: "new-one1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, users.updated)
}
