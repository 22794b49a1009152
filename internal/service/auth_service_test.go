package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sekolahku/gradebook-api/internal/models"
)

type mockAuthRepo struct {
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	lastLogin     map[string]time.Time
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:         make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
		lastLogin:     make(map[string]time.Time),
	}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin[id] = ts
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, token := range m.refreshTokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := m.refreshTokens[token]; ok {
		return stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func authConfigForTest() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "gradebook-api",
	}
}

func seedUser(repo *mockAuthRepo, role models.UserRole, studentID *string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	user := &models.User{
		ID:           "user1",
		Email:        "guru@sekolah.sch.id",
		PasswordHash: string(hash),
		FullName:     "Pak Guru",
		Role:         role,
		StudentID:    studentID,
		Active:       true,
	}
	repo.users[user.ID] = user
	return user
}

func TestAuthLogin(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, models.RoleTeacher, nil)
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), authConfigForTest())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "guru@sekolah.sch.id", Password: "rahasia123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
	assert.Contains(t, repo.lastLogin, "user1")

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, models.RoleTeacher, nil)
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), authConfigForTest())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "guru@sekolah.sch.id", Password: "salah"})
	assert.Error(t, err)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	repo := newMockAuthRepo()
	user := seedUser(repo, models.RoleTeacher, nil)
	user.Active = false
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), authConfigForTest())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "guru@sekolah.sch.id", Password: "rahasia123"})
	assert.Error(t, err)
}

func TestAuthStudentClaimsCarryStudentID(t *testing.T) {
	repo := newMockAuthRepo()
	studentID := "stu1"
	seedUser(repo, models.RoleStudent, &studentID)
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), authConfigForTest())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "guru@sekolah.sch.id", Password: "rahasia123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.StudentID)
	assert.Equal(t, "stu1", *claims.StudentID)
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, models.RoleTeacher, nil)
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), authConfigForTest())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "guru@sekolah.sch.id", Password: "rahasia123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the used token is revoked, replaying it must fail
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Error(t, err)
}

func TestAuthLogout(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, models.RoleTeacher, nil)
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), authConfigForTest())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "guru@sekolah.sch.id", Password: "rahasia123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "user1"))
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Error(t, err)

	err = svc.Logout(context.Background(), "unknown-token", "user1")
	assert.Error(t, err)
}
