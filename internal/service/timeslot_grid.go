package service

import (
	"sort"

	"github.com/scolaire/timetable-api/internal/models"
)

// teachingSlots is the fixed weekly catalogue: seven teaching ranges per
// day, Monday through Saturday. Break windows are injected between them by
// BuildGrid; the gaps in the catalogue leave room for the default windows.
var teachingSlots = []string{
	"08:00-09:00",
	"09:00-10:00",
	"10:15-11:15",
	"11:15-12:15",
	"13:45-14:45",
	"14:45-15:45",
	"16:00-17:00",
}

// TeachingSlots returns the standard teaching catalogue in grid order.
func TeachingSlots() []string {
	out := make([]string, len(teachingSlots))
	copy(out, teachingSlots)
	return out
}

// NewClassSkeleton builds an empty schedule for a class from the standard
// catalogue.
func NewClassSkeleton(classID string) *models.ClassSchedule {
	sched := &models.ClassSchedule{ClassID: classID}
	sched.Rows = make([]models.ScheduleRow, 0, len(teachingSlots))
	for _, slot := range teachingSlots {
		sched.Rows = append(sched.Rows, models.NewTeachingRow(slot))
	}
	return sched
}

// BuildGrid merges the teaching rows with the three break rows and returns
// the full grid ordered by the "HH:MM" prefix of each row's range. The
// comparison is plain lexicographic, which is correct for zero-padded
// 24-hour times and keeps the sort stable. Teaching rows missing a day
// column are backfilled with the empty entry.
func BuildGrid(rows []models.ScheduleRow, breaks models.BreakPeriodSet) []models.ScheduleRow {
	grid := make([]models.ScheduleRow, 0, len(rows)+3)
	for _, row := range rows {
		clone := row.Clone()
		if !clone.IsBreak {
			if clone.Cells == nil {
				clone.Cells = make(map[models.Day]models.ScheduleEntry, 6)
			}
			for _, day := range models.Days() {
				if _, ok := clone.Cells[day]; !ok {
					clone.Cells[day] = models.ScheduleEntry{}
				}
			}
		}
		grid = append(grid, clone)
	}
	for _, period := range breaks.All() {
		grid = append(grid, models.NewBreakRow(period))
	}

	sort.SliceStable(grid, func(i, j int) bool {
		return grid[i].StartsAt() < grid[j].StartsAt()
	})
	return grid
}
