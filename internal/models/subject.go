package models

import "time"

// Subject represents a taught subject. HoursPerWeek is the target weekly
// volume for the given level; the generator uses it as a placement hint,
// not a hard constraint.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Level        string    `db:"level" json:"level"`
	HoursPerWeek int       `db:"hours_per_week" json:"hours_per_week"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
