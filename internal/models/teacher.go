package models

import (
	"time"

	"github.com/lib/pq"
)

// Teacher represents an instructor record. WeeklyHours is the number of
// teaching cells currently assigned across the institution; MaxHours is the
// contractual weekly ceiling the generator must respect.
type Teacher struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Specialty   string         `db:"specialty" json:"specialty"`
	Classes     pq.StringArray `db:"classes" json:"classes"`
	WeeklyHours int            `db:"weekly_hours" json:"weekly_hours"`
	MaxHours    int            `db:"max_hours" json:"max_hours"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
