package models

import "time"

// GradeScale maps percentage thresholds to letter grades. At most one scale
// is current at a time; when none is configured the engine falls back to the
// built-in default.
type GradeScale struct {
	ID        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	IsCurrent bool             `db:"is_current" json:"is_current"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
	Bands     []GradeScaleBand `json:"bands,omitempty"`
}

// GradeScaleBand is a single letter threshold within a scale.
type GradeScaleBand struct {
	ID            string  `db:"id" json:"id"`
	ScaleID       string  `db:"scale_id" json:"scale_id"`
	Letter        string  `db:"letter" json:"letter"`
	MinPercentage float64 `db:"min_percentage" json:"min_percentage"`
}
