package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahku/gradebook-api/internal/models"
)

func TestGradeScaleRepositoryFindCurrent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeScaleRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT id, name, is_current").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_current", "created_at", "updated_at"}).
			AddRow("scale1", "Strict", true, now, now))
	mock.ExpectQuery("SELECT id, scale_id, letter, min_percentage").
		WithArgs("scale1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "scale_id", "letter", "min_percentage"}).
			AddRow("b1", "scale1", "A", 93.0).
			AddRow("b2", "scale1", "B", 85.0).
			AddRow("b3", "scale1", "F", 0.0))

	scale, err := repo.FindCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Strict", scale.Name)
	assert.True(t, scale.IsCurrent)
	require.Len(t, scale.Bands, 3)
	assert.Equal(t, "A", scale.Bands[0].Letter)
}

func TestGradeScaleRepositoryFindCurrentNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeScaleRepository(db)

	mock.ExpectQuery("SELECT id, name, is_current").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindCurrent(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGradeScaleRepositoryCreateInsertsBands(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeScaleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO grade_scales").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO grade_scale_bands").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO grade_scale_bands").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	scale := &models.GradeScale{
		Name: "Strict",
		Bands: []models.GradeScaleBand{
			{Letter: "A", MinPercentage: 93},
			{Letter: "F", MinPercentage: 0},
		},
	}
	require.NoError(t, repo.Create(context.Background(), scale))
	assert.NotEmpty(t, scale.ID)
	assert.Equal(t, scale.ID, scale.Bands[0].ScaleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeScaleRepositorySetCurrentClearsPrevious(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeScaleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE grade_scales SET is_current = FALSE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE grade_scales SET is_current = TRUE").
		WithArgs("scale2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetCurrent(context.Background(), "scale2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
