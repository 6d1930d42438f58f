package models

import (
	"time"

	"github.com/lib/pq"
)

// ClassSection represents a single class cohort, e.g. "6ème A".
type ClassSection struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Level     string         `db:"level" json:"level"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Enrolled  int            `db:"enrolled" json:"enrolled"`
	Subjects  pq.StringArray `db:"subjects" json:"subjects"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
