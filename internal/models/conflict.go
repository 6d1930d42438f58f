package models

// ConflictType distinguishes the kinds of findings the detector reports.
type ConflictType string

const (
	ConflictRoom     ConflictType = "room"
	ConflictTeacher  ConflictType = "teacher"
	ConflictOverload ConflictType = "overload"
)

// Conflict is a detector finding: a contested resource at a grid position,
// or a teacher exceeding the weekly ceiling. Findings are data, never
// errors; a schedule with conflicts is a valid state the UI must display.
//
// Teachers and rooms are matched by display name, mirroring the behaviour
// of the surrounding dashboard. Day is zero for findings that are not tied
// to a single column (same-row duplicates, overloads); TimeSlot is empty
// for overloads.
type Conflict struct {
	TimeSlot string       `json:"time_slot,omitempty"`
	Day      Day          `json:"day,omitempty"`
	Type     ConflictType `json:"type"`
	Resource string       `json:"resource"`
	Classes  []string     `json:"classes"`
	Hours    int          `json:"hours,omitempty"`
	MaxHours int          `json:"max_hours,omitempty"`
}
