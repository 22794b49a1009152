package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sekolahku/gradebook-api/internal/models"
	appErrors "github.com/sekolahku/gradebook-api/pkg/errors"
	"github.com/sekolahku/gradebook-api/pkg/export"
)

// ReportFormat selects the rendered output.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type gradebookProvider interface {
	ClassGradebook(ctx context.Context, classID, termID string) (*models.ClassGradebook, error)
	StudentReportCard(ctx context.Context, studentID, termID string) (*models.StudentReportCard, error)
}

type rankingProvider interface {
	ClassRankings(ctx context.Context, classID, termID string) (*models.ClassRanking, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportFile is a rendered export ready to stream to the client.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ReportService renders gradebooks, rankings, and report cards into CSV or
// PDF files. Rendering is synchronous, the payload is returned on the same
// request that asked for it.
type ReportService struct {
	gradebooks gradebookProvider
	rankings   rankingProvider
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(gradebooks gradebookProvider, rankings rankingProvider, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{gradebooks: gradebooks, rankings: rankings, csv: csv, pdf: pdf, logger: logger}
}

// ExportClassGradebook renders the full class gradebook.
func (s *ReportService) ExportClassGradebook(ctx context.Context, classID, termID string, format ReportFormat) (*ReportFile, error) {
	gradebook, err := s.gradebooks.ClassGradebook(ctx, classID, termID)
	if err != nil {
		return nil, err
	}
	dataset := gradebookDataset(gradebook)
	title := fmt.Sprintf("Class Gradebook %s (%s)", classID, termID)
	name := fmt.Sprintf("gradebook_%s_%s", sanitizeFilename(classID), sanitizeFilename(termID))
	return s.render(dataset, title, name, format)
}

// ExportClassRanking renders the cohort ranking table.
func (s *ReportService) ExportClassRanking(ctx context.Context, classID, termID string, format ReportFormat) (*ReportFile, error) {
	ranking, _, err := s.rankings.ClassRankings(ctx, classID, termID)
	if err != nil {
		return nil, err
	}
	dataset := rankingDataset(ranking)
	title := fmt.Sprintf("Class Ranking %s (%s)", classID, termID)
	name := fmt.Sprintf("ranking_%s_%s", sanitizeFilename(classID), sanitizeFilename(termID))
	return s.render(dataset, title, name, format)
}

// ExportReportCard renders a single student's report card.
func (s *ReportService) ExportReportCard(ctx context.Context, studentID, termID string, format ReportFormat) (*ReportFile, error) {
	card, err := s.gradebooks.StudentReportCard(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}
	dataset := reportCardDataset(card)
	title := fmt.Sprintf("Report Card %s (%s)", card.StudentName, termID)
	name := fmt.Sprintf("report_card_%s_%s", sanitizeFilename(studentID), sanitizeFilename(termID))
	return s.render(dataset, title, name, format)
}

func (s *ReportService) render(dataset export.Dataset, title, name string, format ReportFormat) (*ReportFile, error) {
	timestamp := time.Now().UTC().Format("20060102_150405")
	switch format {
	case ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("%s_%s.csv", name, timestamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("%s_%s.pdf", name, timestamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
}

func gradebookDataset(gradebook *models.ClassGradebook) export.Dataset {
	subjects := subjectColumns(gradebook.Students)
	headers := append([]string{"Student ID", "Student Name"}, subjects...)
	headers = append(headers, "Overall", "Letter")

	rows := make([]map[string]string, 0, len(gradebook.Students))
	for _, student := range gradebook.Students {
		row := map[string]string{
			"Student ID":   student.StudentID,
			"Student Name": student.StudentName,
			"Overall":      formatScore(student.OverallScore),
			"Letter":       student.OverallLetterGrade,
		}
		for _, subject := range student.Subjects {
			row[subject.SubjectName] = formatScore(subject.Score)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func rankingDataset(ranking *models.ClassRanking) export.Dataset {
	rows := make([]map[string]string, 0, len(ranking.Students))
	for _, student := range ranking.Students {
		rows = append(rows, map[string]string{
			"Rank":       formatRank(student.Rank),
			"Student ID": student.StudentID,
			"Name":       student.StudentName,
			"Overall":    formatScore(student.OverallScore),
			"Letter":     student.LetterGrade,
			"Percentile": formatScore(student.Percentile),
		})
	}
	return export.Dataset{
		Headers: []string{"Rank", "Student ID", "Name", "Overall", "Letter", "Percentile"},
		Rows:    rows,
	}
}

func reportCardDataset(card *models.StudentReportCard) export.Dataset {
	rows := make([]map[string]string, 0, len(card.Subjects)+2)
	for _, subject := range card.Subjects {
		rows = append(rows, map[string]string{
			"Subject": subject.SubjectName,
			"Score":   formatScore(subject.Score),
			"Letter":  subject.LetterGrade,
		})
	}
	rows = append(rows, map[string]string{
		"Subject": "Overall",
		"Score":   formatScore(card.OverallScore),
		"Letter":  card.OverallLetterGrade,
	})
	rows = append(rows, map[string]string{
		"Subject": "Class Rank",
		"Score":   formatRank(card.Rank),
		"Letter":  "",
	})
	return export.Dataset{
		Headers: []string{"Subject", "Score", "Letter"},
		Rows:    rows,
	}
}

// subjectColumns collects subject names in first-seen order so every row
// lines up under the same columns.
func subjectColumns(students []models.GradebookRow) []string {
	seen := make(map[string]bool)
	var names []string
	for _, student := range students {
		for _, subject := range student.Subjects {
			if !seen[subject.SubjectName] {
				seen[subject.SubjectName] = true
				names = append(names, subject.SubjectName)
			}
		}
	}
	return names
}

func formatScore(score *float64) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *score)
}

func formatRank(rank *int) string {
	if rank == nil {
		return ""
	}
	return fmt.Sprintf("%d", *rank)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
