package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/grading"
	"github.com/sekolahku/gradebook-api/internal/models"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
)

type cohortReader interface {
	ListByClassAndTerm(ctx context.Context, classID, termID string) ([]models.Enrollment, error)
	FindActiveByStudent(ctx context.Context, studentID, termID string) (*models.Enrollment, error)
}

type scoreEntryFetcher interface {
	FetchByStudents(ctx context.Context, studentIDs []string, termID string) (map[string][]models.ScoreEntry, error)
}

type categoryFetcher interface {
	ListBySubjects(ctx context.Context, subjectIDs []string) (map[string][]models.GradeCategory, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Subjects(ctx context.Context, classID string) ([]models.Subject, error)
}

type studentNameReader interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Student, error)
}

type scaleResolver interface {
	Current(ctx context.Context) (grading.Scale, string, error)
}

// GradebookService derives per-subject and overall scores for cohorts by
// running the pure grading engine over fetched score entries. Results are
// recomputed on every read; nothing derived is persisted.
type GradebookService struct {
	enrollments cohortReader
	entries     scoreEntryFetcher
	categories  categoryFetcher
	classes     classReader
	students    studentNameReader
	scales      scaleResolver
	logger      *zap.Logger
}

// NewGradebookService constructs GradebookService.
func NewGradebookService(enrollments cohortReader, entries scoreEntryFetcher, categories categoryFetcher, classes classReader, students studentNameReader, scales scaleResolver, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{
		enrollments: enrollments,
		entries:     entries,
		categories:  categories,
		classes:     classes,
		students:    students,
		scales:      scales,
		logger:      logger,
	}
}

// ClassGradebook computes the full derived gradebook for a class and term.
// Students keep nil subject scores where they have no graded entries; those
// are rendered as N/A, never as zero.
func (s *GradebookService) ClassGradebook(ctx context.Context, classID, termID string) (*models.ClassGradebook, error) {
	if classID == "" || termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class and term required")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	scale, scaleName, err := s.scales.Current(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.buildRows(ctx, classID, termID, scale)
	if err != nil {
		return nil, err
	}

	return &models.ClassGradebook{
		ClassID:     classID,
		TermID:      termID,
		ScaleName:   scaleName,
		GeneratedAt: time.Now().UTC(),
		Students:    rows,
	}, nil
}

// StudentReportCard projects a single student's results, including the
// student's position within the class cohort. The whole cohort is computed
// because rank and percentile only exist relative to it.
func (s *GradebookService) StudentReportCard(ctx context.Context, studentID, termID string) (*models.StudentReportCard, error) {
	if studentID == "" || termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student and term required")
	}

	enrollment, err := s.enrollments.FindActiveByStudent(ctx, studentID, termID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no active enrollment for term")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	class, err := s.classes.FindByID(ctx, enrollment.ClassID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	scale, _, err := s.scales.Current(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.buildRows(ctx, enrollment.ClassID, termID, scale)
	if err != nil {
		return nil, err
	}

	members := make([]grading.CohortMember, 0, len(rows))
	for _, row := range rows {
		members = append(members, grading.CohortMember{StudentID: row.StudentID, Score: row.OverallScore})
	}
	ranked := grading.RankCohort(members)

	var own *models.GradebookRow
	for i := range rows {
		if rows[i].StudentID == studentID {
			own = &rows[i]
			break
		}
	}
	if own == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not part of cohort")
	}

	card := &models.StudentReportCard{
		StudentID:          own.StudentID,
		StudentName:        own.StudentName,
		ClassID:            class.ID,
		ClassName:          class.Name,
		TermID:             termID,
		Subjects:           own.Subjects,
		OverallScore:       own.OverallScore,
		OverallLetterGrade: own.OverallLetterGrade,
		SubjectCount:       own.SubjectCount,
		GeneratedAt:        time.Now().UTC(),
	}
	for _, r := range ranked {
		if r.StudentID == studentID {
			card.Rank = r.Rank
			card.Percentile = r.Percentile
			break
		}
	}
	return card, nil
}

func (s *GradebookService) buildRows(ctx context.Context, classID, termID string, scale grading.Scale) ([]models.GradebookRow, error) {
	enrollments, err := s.enrollments.ListByClassAndTerm(ctx, classID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cohort")
	}
	if len(enrollments) == 0 {
		return []models.GradebookRow{}, nil
	}

	subjects, err := s.classes.Subjects(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class subjects")
	}

	subjectIDs := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		subjectIDs = append(subjectIDs, subject.ID)
	}
	categoriesBySubject, err := s.categories.ListBySubjects(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade categories")
	}

	studentIDs := make([]string, 0, len(enrollments))
	for _, enrollment := range enrollments {
		studentIDs = append(studentIDs, enrollment.StudentID)
	}
	entriesByStudent, err := s.entries.FetchByStudents(ctx, studentIDs, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch score entries")
	}
	studentsByID, err := s.students.FindByIDs(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	rows := make([]models.GradebookRow, 0, len(enrollments))
	for _, enrollment := range enrollments {
		row := models.GradebookRow{StudentID: enrollment.StudentID}
		if student, ok := studentsByID[enrollment.StudentID]; ok {
			row.StudentName = student.FullName
		}

		subjectScores := make([]*float64, 0, len(subjects))
		for _, subject := range subjects {
			entries := subjectEntries(entriesByStudent[enrollment.StudentID], subject.ID)
			categories := toGradingCategories(categoriesBySubject[subject.ID])
			score := grading.SubjectScore(entries, categories)
			subjectScores = append(subjectScores, score)
			row.Subjects = append(row.Subjects, models.StudentSubjectScore{
				StudentID:   enrollment.StudentID,
				SubjectID:   subject.ID,
				SubjectName: subject.Name,
				Score:       score,
				LetterGrade: scale.Letter(score),
			})
			if score != nil {
				row.SubjectCount++
			}
		}

		row.OverallScore = grading.OverallScore(subjectScores)
		row.OverallLetterGrade = scale.Letter(row.OverallScore)
		rows = append(rows, row)
	}
	return rows, nil
}

func subjectEntries(entries []models.ScoreEntry, subjectID string) []grading.ScoreEntry {
	var out []grading.ScoreEntry
	for _, entry := range entries {
		if entry.SubjectID != subjectID {
			continue
		}
		out = append(out, grading.ScoreEntry{
			StudentID:  entry.StudentID,
			SubjectID:  entry.SubjectID,
			CategoryID: entry.CategoryID,
			Score:      entry.Score,
			MaxScore:   entry.MaxScore,
		})
	}
	return out
}

func toGradingCategories(categories []models.GradeCategory) []grading.Category {
	out := make([]grading.Category, 0, len(categories))
	for _, category := range categories {
		out = append(out, grading.Category{ID: category.ID, SubjectID: category.SubjectID, Weight: category.Weight})
	}
	return out
}
