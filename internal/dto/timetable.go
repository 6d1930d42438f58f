package dto

import (
	"github.com/scolaire/timetable-api/internal/models"
)

// GenerateTimetableRequest selects the class sections to generate. An empty
// list means every registered class.
type GenerateTimetableRequest struct {
	ClassIDs []string `json:"classIds" validate:"omitempty,dive,required"`
}

// ClassGenerationSummary reports the outcome of one class generation pass.
type ClassGenerationSummary struct {
	ClassID   string   `json:"classId"`
	ClassName string   `json:"className"`
	Placed    int      `json:"placed"`
	Unplaced  []string `json:"unplaced,omitempty"`
	Partial   []string `json:"partial,omitempty"`
}

// GenerationSummary aggregates per-class outcomes. Unplaced subjects are a
// reported shortfall, never an error.
type GenerationSummary struct {
	Classes          []ClassGenerationSummary `json:"classes"`
	PlacedCells      int                      `json:"placedCells"`
	UnplacedSubjects int                      `json:"unplacedSubjects"`
}

// ScheduleCellView is one rendered grid cell.
type ScheduleCellView struct {
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

// ScheduleRowView is one rendered grid row; break rows carry the label and
// null day cells.
type ScheduleRowView struct {
	Time      string            `json:"time"`
	IsBreak   bool              `json:"isBreak,omitempty"`
	Label     string            `json:"label,omitempty"`
	Monday    *ScheduleCellView `json:"monday"`
	Tuesday   *ScheduleCellView `json:"tuesday"`
	Wednesday *ScheduleCellView `json:"wednesday"`
	Thursday  *ScheduleCellView `json:"thursday"`
	Friday    *ScheduleCellView `json:"friday"`
	Saturday  *ScheduleCellView `json:"saturday"`
}

// ClassScheduleView is the rendered grid for one class section.
type ClassScheduleView struct {
	ClassID   string            `json:"classId"`
	ClassName string            `json:"className,omitempty"`
	Rows      []ScheduleRowView `json:"rows"`
}

// GenerateTimetableResponse returns the generation summary plus the full
// rendered book for the classes that were processed.
type GenerateTimetableResponse struct {
	Summary GenerationSummary            `json:"summary"`
	Book    map[string]ClassScheduleView `json:"book"`
}

// ConflictReport is the ordered list of detector findings.
type ConflictReport struct {
	Conflicts []models.Conflict `json:"conflicts"`
}

// BreakWindowRequest configures one break period.
type BreakWindowRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
	Label string `json:"label" validate:"required"`
}

// UpdateBreaksRequest replaces the three break windows at once.
type UpdateBreaksRequest struct {
	Morning   BreakWindowRequest `json:"morning" validate:"required"`
	Lunch     BreakWindowRequest `json:"lunch" validate:"required"`
	Afternoon BreakWindowRequest `json:"afternoon" validate:"required"`
}

// NewScheduleRowView renders a model row, backfilling absent day columns
// with null cells.
func NewScheduleRowView(row models.ScheduleRow) ScheduleRowView {
	view := ScheduleRowView{Time: row.Time, IsBreak: row.IsBreak, Label: row.Label}
	if row.IsBreak {
		return view
	}
	cell := func(day models.Day) *ScheduleCellView {
		entry, ok := row.Cells[day]
		if !ok || entry.IsEmpty() {
			return nil
		}
		return &ScheduleCellView{Subject: entry.Subject, Teacher: entry.Teacher, Room: entry.Room}
	}
	view.Monday = cell(models.Monday)
	view.Tuesday = cell(models.Tuesday)
	view.Wednesday = cell(models.Wednesday)
	view.Thursday = cell(models.Thursday)
	view.Friday = cell(models.Friday)
	view.Saturday = cell(models.Saturday)
	return view
}

// NewClassScheduleView renders a full class grid.
func NewClassScheduleView(sched *models.ClassSchedule, className string) ClassScheduleView {
	view := ClassScheduleView{ClassID: sched.ClassID, ClassName: className}
	view.Rows = make([]ScheduleRowView, 0, len(sched.Rows))
	for _, row := range sched.Rows {
		view.Rows = append(view.Rows, NewScheduleRowView(row))
	}
	return view
}
