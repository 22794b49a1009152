package models

import "time"

// ScoreEntry is one recorded assessment result (an assignment, quiz or exam
// instance). Multiple entries may exist for the same student, subject and
// category within a term.
type ScoreEntry struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	CategoryID   string    `db:"category_id" json:"category_id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	TermID       string    `db:"term_id" json:"term_id"`
	Title        string    `db:"title" json:"title"`
	Score        float64   `db:"score" json:"score"`
	MaxScore     float64   `db:"max_score" json:"max_score"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	CategoryName string    `db:"category_name" json:"category_name"`
}

// ScoreEntryFilter narrows score entry queries.
type ScoreEntryFilter struct {
	StudentID  string
	SubjectID  string
	CategoryID string
	ClassID    string
	TermID     string
}

// GradeCategory is a weighting bucket of assessments within a subject,
// e.g. Exams at weight 40 and Quizzes at weight 30. Weights for one subject
// need not sum to 100.
type GradeCategory struct {
	ID        string    `db:"id" json:"id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Name      string    `db:"name" json:"name"`
	Weight    float64   `db:"weight" json:"weight"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GradeCategoryFilter narrows category queries.
type GradeCategoryFilter struct {
	SubjectID string
}
