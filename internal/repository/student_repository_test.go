package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahku/gradebook-api/internal/models"
)

func TestStudentRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	birthDate := time.Date(2008, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "nis", "full_name", "gender", "birth_date", "active", "created_at", "updated_at"}).
		AddRow("stu1", "2024001", "Andi Pratama", "M", birthDate, true, now, now).
		AddRow("stu2", "2024002", "Budi Santoso", "M", birthDate, true, now, now)
	mock.ExpectQuery("SELECT id, nis, full_name").
		WithArgs("stu1", "stu2").
		WillReturnRows(rows)

	result, err := repo.FindByIDs(context.Background(), []string{"stu1", "stu2"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Andi Pratama", result["stu1"].FullName)
}

func TestStudentRepositoryFindByIDsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	result, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{NIS: "2024003", FullName: "Citra Dewi", Gender: "F", Active: true}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.CreatedAt.IsZero())
}
