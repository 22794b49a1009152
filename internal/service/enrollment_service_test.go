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

	"github.com/sekolahku/gradebook-api/internal/models"
)

type mockEnrollmentRepo struct {
	enrollments map[string]*models.Enrollment
	nextID      int
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var result []models.EnrollmentDetail
	for _, enrollment := range m.enrollments {
		result = append(result, models.EnrollmentDetail{Enrollment: *enrollment})
	}
	return result, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if enrollment, ok := m.enrollments[id]; ok {
		copied := *enrollment
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) FindActiveByStudent(ctx context.Context, studentID, termID string) (*models.Enrollment, error) {
	for _, enrollment := range m.enrollments {
		if enrollment.StudentID == studentID && enrollment.TermID == termID && enrollment.Status == models.EnrollmentStatusActive {
			copied := *enrollment
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]*models.Enrollment)
	}
	m.nextID++
	enrollment.ID = "en" + string(rune('0'+m.nextID))
	copied := *enrollment
	m.enrollments[enrollment.ID] = &copied
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, leftAt *time.Time) error {
	if enrollment, ok := m.enrollments[id]; ok {
		enrollment.Status = status
		enrollment.LeftAt = leftAt
	}
	return nil
}

func TestEnrollCreatesActiveEnrollment(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu1", ClassID: "class", TermID: "term"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.False(t, enrollment.JoinedAt.IsZero())
}

func TestEnrollRejectsDuplicateActive(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu1", ClassID: "class", TermID: "term"})
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu1", ClassID: "other", TermID: "term"})
	assert.Error(t, err)
}

func TestWithdraw(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]*models.Enrollment{
		"en1": {ID: "en1", StudentID: "stu1", ClassID: "class", TermID: "term", Status: models.EnrollmentStatusActive},
	}}
	svc := NewEnrollmentService(repo, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.Withdraw(context.Background(), "en1", models.EnrollmentStatusLeft))
	assert.Equal(t, models.EnrollmentStatusLeft, repo.enrollments["en1"].Status)
	assert.NotNil(t, repo.enrollments["en1"].LeftAt)

	// already closed
	err := svc.Withdraw(context.Background(), "en1", models.EnrollmentStatusLeft)
	assert.Error(t, err)

	err = svc.Withdraw(context.Background(), "en1", models.EnrollmentStatusActive)
	assert.Error(t, err)
}
