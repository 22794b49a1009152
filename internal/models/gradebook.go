package models

import "time"

// StudentSubjectScore is the derived per-subject result for one student.
// Score is nil when the student has no graded entries for that subject; a
// nil score is distinct from a score of zero.
type StudentSubjectScore struct {
	StudentID   string   `json:"student_id"`
	SubjectID   string   `json:"subject_id"`
	SubjectName string   `json:"subject_name"`
	Score       *float64 `json:"score"`
	LetterGrade string   `json:"letter_grade"`
}

// GradebookRow aggregates one student's subject scores within a class.
type GradebookRow struct {
	StudentID          string                `json:"student_id"`
	StudentName        string                `json:"student_name"`
	Subjects           []StudentSubjectScore `json:"subjects"`
	OverallScore       *float64              `json:"overall_score"`
	OverallLetterGrade string                `json:"overall_letter_grade"`
	SubjectCount       int                   `json:"subject_count"`
}

// ClassGradebook is the full derived gradebook for a class and term.
type ClassGradebook struct {
	ClassID     string         `json:"class_id"`
	TermID      string         `json:"term_id"`
	ScaleName   string         `json:"scale_name"`
	GeneratedAt time.Time      `json:"generated_at"`
	Students    []GradebookRow `json:"students"`
}

// StudentReportCard projects one student's results for printing.
type StudentReportCard struct {
	StudentID          string                `json:"student_id"`
	StudentName        string                `json:"student_name"`
	ClassID            string                `json:"class_id"`
	ClassName          string                `json:"class_name"`
	TermID             string                `json:"term_id"`
	Subjects           []StudentSubjectScore `json:"subjects"`
	OverallScore       *float64              `json:"overall_score"`
	OverallLetterGrade string                `json:"overall_letter_grade"`
	SubjectCount       int                   `json:"subject_count"`
	Rank               *int                  `json:"rank"`
	Percentile         *float64              `json:"percentile"`
	GeneratedAt        time.Time             `json:"generated_at"`
}

// ClassRankingRow is one student's position within the cohort ranking.
// Rank and Percentile stay nil for students without any graded subject.
type ClassRankingRow struct {
	StudentID    string   `json:"student_id"`
	StudentName  string   `json:"student_name"`
	OverallScore *float64 `json:"overall_score"`
	LetterGrade  string   `json:"letter_grade"`
	Rank         *int     `json:"rank"`
	Percentile   *float64 `json:"percentile"`
}

// ClassRanking orders a cohort by overall score. GradedCount is the number
// of students with a computable overall score; percentiles are relative to
// it, not to the full cohort size.
type ClassRanking struct {
	ClassID     string            `json:"class_id"`
	TermID      string            `json:"term_id"`
	GradedCount int               `json:"graded_count"`
	TotalCount  int               `json:"total_count"`
	GeneratedAt time.Time         `json:"generated_at"`
	Students    []ClassRankingRow `json:"students"`
}

// ClassDistribution summarises overall score statistics for a cohort.
type ClassDistribution struct {
	ClassID      string         `json:"class_id"`
	TermID       string         `json:"term_id"`
	GradedCount  int            `json:"graded_count"`
	TotalCount   int            `json:"total_count"`
	Min          *float64       `json:"min,omitempty"`
	Max          *float64       `json:"max,omitempty"`
	Mean         *float64       `json:"mean,omitempty"`
	Median       *float64       `json:"median,omitempty"`
	StdDev       *float64       `json:"std_dev,omitempty"`
	LetterCounts map[string]int `json:"letter_counts"`
}
