package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/grading"
	"github.com/sekolahku/gradebook-api/internal/models"
)

type mockCohortReader struct {
	enrollments []models.Enrollment
}

func (m *mockCohortReader) ListByClassAndTerm(ctx context.Context, classID, termID string) ([]models.Enrollment, error) {
	var list []models.Enrollment
	for _, e := range m.enrollments {
		if e.ClassID == classID && e.TermID == termID && e.Status == models.EnrollmentStatusActive {
			list = append(list, e)
		}
	}
	return list, nil
}

func (m *mockCohortReader) FindActiveByStudent(ctx context.Context, studentID, termID string) (*models.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.TermID == termID && e.Status == models.EnrollmentStatusActive {
			enrollment := e
			return &enrollment, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockEntryFetcher struct {
	entries []models.ScoreEntry
}

func (m *mockEntryFetcher) FetchByStudents(ctx context.Context, studentIDs []string, termID string) (map[string][]models.ScoreEntry, error) {
	ids := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		ids[id] = true
	}
	result := make(map[string][]models.ScoreEntry)
	for _, entry := range m.entries {
		if entry.TermID == termID && ids[entry.StudentID] {
			result[entry.StudentID] = append(result[entry.StudentID], entry)
		}
	}
	return result, nil
}

type mockCategoryFetcher struct {
	categories []models.GradeCategory
}

func (m *mockCategoryFetcher) ListBySubjects(ctx context.Context, subjectIDs []string) (map[string][]models.GradeCategory, error) {
	result := make(map[string][]models.GradeCategory)
	for _, category := range m.categories {
		result[category.SubjectID] = append(result[category.SubjectID], category)
	}
	return result, nil
}

type mockClassReader struct {
	class    *models.Class
	subjects []models.Subject
}

func (m *mockClassReader) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if m.class != nil && m.class.ID == id {
		return m.class, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassReader) Subjects(ctx context.Context, classID string) ([]models.Subject, error) {
	return m.subjects, nil
}

type mockStudentReader struct {
	students map[string]models.Student
}

func (m *mockStudentReader) FindByIDs(ctx context.Context, ids []string) (map[string]models.Student, error) {
	result := make(map[string]models.Student)
	for _, id := range ids {
		if student, ok := m.students[id]; ok {
			result[id] = student
		}
	}
	return result, nil
}

type mockScaleResolver struct {
	scale grading.Scale
	name  string
}

func (m *mockScaleResolver) Current(ctx context.Context) (grading.Scale, string, error) {
	if m.scale.Empty() {
		return grading.DefaultScale(), "default", nil
	}
	return m.scale, m.name, nil
}

func ptrFloat(v float64) *float64 {
	return &v
}

func newGradebookFixture() (*GradebookService, *mockEntryFetcher) {
	enrollments := &mockCohortReader{enrollments: []models.Enrollment{
		{ID: "en1", StudentID: "stu1", ClassID: "class", TermID: "term", Status: models.EnrollmentStatusActive},
		{ID: "en2", StudentID: "stu2", ClassID: "class", TermID: "term", Status: models.EnrollmentStatusActive},
	}}
	entries := &mockEntryFetcher{}
	categories := &mockCategoryFetcher{categories: []models.GradeCategory{
		{ID: "cat-hw", SubjectID: "math", Name: "Homework", Weight: 40},
		{ID: "cat-exam", SubjectID: "math", Name: "Exams", Weight: 60},
		{ID: "cat-essay", SubjectID: "lit", Name: "Essays", Weight: 100},
	}}
	classes := &mockClassReader{
		class: &models.Class{ID: "class", Name: "XI IPA 1"},
		subjects: []models.Subject{
			{ID: "math", Name: "Mathematics"},
			{ID: "lit", Name: "Literature"},
		},
	}
	students := &mockStudentReader{students: map[string]models.Student{
		"stu1": {ID: "stu1", FullName: "Andi"},
		"stu2": {ID: "stu2", FullName: "Budi"},
	}}
	svc := NewGradebookService(enrollments, entries, categories, classes, students, &mockScaleResolver{}, zap.NewNop())
	return svc, entries
}

func TestClassGradebookWeightedScores(t *testing.T) {
	svc, entries := newGradebookFixture()
	entries.entries = []models.ScoreEntry{
		{ID: "s1", StudentID: "stu1", SubjectID: "math", CategoryID: "cat-hw", ClassID: "class", TermID: "term", Score: 9, MaxScore: 10},
		{ID: "s2", StudentID: "stu1", SubjectID: "math", CategoryID: "cat-exam", ClassID: "class", TermID: "term", Score: 60, MaxScore: 100},
	}

	gradebook, err := svc.ClassGradebook(context.Background(), "class", "term")
	require.NoError(t, err)
	require.Len(t, gradebook.Students, 2)

	andi := gradebook.Students[0]
	assert.Equal(t, "stu1", andi.StudentID)
	assert.Equal(t, "Andi", andi.StudentName)
	require.Len(t, andi.Subjects, 2)

	math := andi.Subjects[0]
	require.NotNil(t, math.Score)
	assert.InDelta(t, 72.0, *math.Score, 1e-9)
	assert.Equal(t, "C", math.LetterGrade)

	// no literature entries, score stays nil rather than zero
	lit := andi.Subjects[1]
	assert.Nil(t, lit.Score)
	assert.Equal(t, grading.LetterNotAvailable, lit.LetterGrade)

	require.NotNil(t, andi.OverallScore)
	assert.InDelta(t, 72.0, *andi.OverallScore, 1e-9)
	assert.Equal(t, 1, andi.SubjectCount)
}

func TestClassGradebookUngradedStudent(t *testing.T) {
	svc, _ := newGradebookFixture()

	gradebook, err := svc.ClassGradebook(context.Background(), "class", "term")
	require.NoError(t, err)
	require.Len(t, gradebook.Students, 2)
	for _, row := range gradebook.Students {
		assert.Nil(t, row.OverallScore)
		assert.Equal(t, grading.LetterNotAvailable, row.OverallLetterGrade)
		assert.Equal(t, 0, row.SubjectCount)
	}
}

func TestClassGradebookUnknownClass(t *testing.T) {
	svc, _ := newGradebookFixture()

	_, err := svc.ClassGradebook(context.Background(), "missing", "term")
	assert.Error(t, err)
}

func TestStudentReportCardRanking(t *testing.T) {
	svc, entries := newGradebookFixture()
	entries.entries = []models.ScoreEntry{
		{ID: "s1", StudentID: "stu1", SubjectID: "math", CategoryID: "cat-exam", ClassID: "class", TermID: "term", Score: 90, MaxScore: 100},
		{ID: "s2", StudentID: "stu2", SubjectID: "math", CategoryID: "cat-exam", ClassID: "class", TermID: "term", Score: 70, MaxScore: 100},
	}

	card, err := svc.StudentReportCard(context.Background(), "stu2", "term")
	require.NoError(t, err)
	assert.Equal(t, "Budi", card.StudentName)
	assert.Equal(t, "XI IPA 1", card.ClassName)
	require.NotNil(t, card.Rank)
	assert.Equal(t, 2, *card.Rank)
	require.NotNil(t, card.Percentile)
	assert.InDelta(t, 50.0, *card.Percentile, 1e-9)
}

func TestStudentReportCardNoEnrollment(t *testing.T) {
	svc, _ := newGradebookFixture()

	_, err := svc.StudentReportCard(context.Background(), "ghost", "term")
	assert.Error(t, err)
}
