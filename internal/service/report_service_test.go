package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/models"
)

type stubGradebookProvider struct {
	gradebook *models.ClassGradebook
	card      *models.StudentReportCard
}

func (s *stubGradebookProvider) ClassGradebook(ctx context.Context, classID, termID string) (*models.ClassGradebook, error) {
	return s.gradebook, nil
}

func (s *stubGradebookProvider) StudentReportCard(ctx context.Context, studentID, termID string) (*models.StudentReportCard, error) {
	return s.card, nil
}

type stubRankingProvider struct {
	ranking *models.ClassRanking
}

func (s *stubRankingProvider) ClassRankings(ctx context.Context, classID, termID string) (*models.ClassRanking, bool, error) {
	return s.ranking, false, nil
}

func reportFixture() *ReportService {
	rank := 1
	gradebooks := &stubGradebookProvider{
		gradebook: &models.ClassGradebook{
			ClassID: "class",
			TermID:  "term",
			Students: []models.GradebookRow{
				{
					StudentID:   "stu1",
					StudentName: "Andi",
					Subjects: []models.StudentSubjectScore{
						{SubjectID: "math", SubjectName: "Mathematics", Score: ptrFloat(91.5), LetterGrade: "A"},
					},
					OverallScore:       ptrFloat(91.5),
					OverallLetterGrade: "A",
					SubjectCount:       1,
				},
				{
					StudentID:          "stu2",
					StudentName:        "Budi",
					Subjects:           []models.StudentSubjectScore{{SubjectID: "math", SubjectName: "Mathematics"}},
					OverallLetterGrade: "N/A",
				},
			},
		},
		card: &models.StudentReportCard{
			StudentID:   "stu1",
			StudentName: "Andi",
			TermID:      "term",
			Subjects: []models.StudentSubjectScore{
				{SubjectID: "math", SubjectName: "Mathematics", Score: ptrFloat(91.5), LetterGrade: "A"},
			},
			OverallScore:       ptrFloat(91.5),
			OverallLetterGrade: "A",
			Rank:               &rank,
		},
	}
	rankings := &stubRankingProvider{
		ranking: &models.ClassRanking{
			ClassID: "class",
			TermID:  "term",
			Students: []models.ClassRankingRow{
				{StudentID: "stu1", StudentName: "Andi", OverallScore: ptrFloat(91.5), LetterGrade: "A", Rank: &rank, Percentile: ptrFloat(100)},
			},
		},
	}
	return NewReportService(gradebooks, rankings, nil, nil, zap.NewNop())
}

func TestExportClassGradebookCSV(t *testing.T) {
	svc := reportFixture()

	file, err := svc.ExportClassGradebook(context.Background(), "class", "term", ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	content := string(file.Payload)
	assert.Contains(t, content, "Mathematics")
	assert.Contains(t, content, "Andi")
	assert.Contains(t, content, "91.50")
	// ungraded cells render empty, never as zero
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.NotContains(t, lines[2], "0.00")
}

func TestExportClassRankingCSV(t *testing.T) {
	svc := reportFixture()

	file, err := svc.ExportClassRanking(context.Background(), "class", "term", ReportFormatCSV)
	require.NoError(t, err)
	content := string(file.Payload)
	assert.Contains(t, content, "Rank")
	assert.Contains(t, content, "Andi")
}

func TestExportReportCardPDF(t *testing.T) {
	svc := reportFixture()

	file, err := svc.ExportReportCard(context.Background(), "stu1", "term", ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.NotEmpty(t, file.Payload)
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := reportFixture()

	_, err := svc.ExportClassGradebook(context.Background(), "class", "term", ReportFormat("xlsx"))
	assert.Error(t, err)
}
