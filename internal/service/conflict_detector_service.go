package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/scolaire/timetable-api/internal/models"
)

// ConflictDetectorService enumerates double-bookings and teacher overloads
// across the whole schedule book. It is a pure read: findings are returned
// as data so the UI can display a conflicted schedule and let a human
// resolve it.
//
// Resources are matched by display name, not by identifier — two
// differently spelled entries for the same person do not conflict. This
// mirrors the behaviour of the surrounding dashboard.
type ConflictDetectorService struct {
	logger *zap.Logger
}

// NewConflictDetectorService wires the detector.
func NewConflictDetectorService(logger *zap.Logger) *ConflictDetectorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictDetectorService{logger: logger}
}

// Detect scans the book for room and teacher conflicts plus overload
// findings. Conflicts are grouped per contested (time, day, resource), so
// two classes claiming the same room yield exactly one finding naming both.
// Output is ordered by the grid's time order; overloads come last. When
// targetClass is non-empty only findings touching that class are returned.
func (d *ConflictDetectorService) Detect(book models.ScheduleBook, teachers []models.Teacher, targetClass string) []models.Conflict {
	classIDs := sortedClassIDs(book)
	times := collectTimes(book, classIDs)
	timeIndex := make(map[string]int, len(times))
	for i, t := range times {
		timeIndex[t] = i
	}

	conflicts := make([]models.Conflict, 0)
	conflicts = append(conflicts, crossClassConflicts(book, classIDs, times)...)
	conflicts = append(conflicts, sameRowConflicts(book, classIDs)...)

	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if timeIndex[a.TimeSlot] != timeIndex[b.TimeSlot] {
			return timeIndex[a.TimeSlot] < timeIndex[b.TimeSlot]
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Resource < b.Resource
	})

	conflicts = append(conflicts, overloadFindings(book, classIDs, teachers)...)

	if targetClass != "" {
		filtered := conflicts[:0]
		for _, c := range conflicts {
			if containsClass(c.Classes, targetClass) {
				filtered = append(filtered, c)
			}
		}
		conflicts = filtered
	}

	d.logger.Debug("conflict scan complete",
		zap.Int("classes", len(classIDs)),
		zap.Int("conflicts", len(conflicts)),
	)
	return conflicts
}

// crossClassConflicts finds rooms and teachers claimed by two or more
// classes at the same (time, day) position.
func crossClassConflicts(book models.ScheduleBook, classIDs []string, times []string) []models.Conflict {
	var conflicts []models.Conflict
	for _, timeSlot := range times {
		for _, day := range models.Days() {
			roomClaims := map[string][]string{}
			teacherClaims := map[string][]string{}
			for _, classID := range classIDs {
				entry, ok := cellAt(book[classID], timeSlot, day)
				if !ok || entry.IsEmpty() {
					continue
				}
				if entry.Room != "" {
					roomClaims[entry.Room] = append(roomClaims[entry.Room], classID)
				}
				if entry.Teacher != "" {
					teacherClaims[entry.Teacher] = append(teacherClaims[entry.Teacher], classID)
				}
			}
			conflicts = append(conflicts, claimsToConflicts(roomClaims, models.ConflictRoom, timeSlot, day)...)
			conflicts = append(conflicts, claimsToConflicts(teacherClaims, models.ConflictTeacher, timeSlot, day)...)
		}
	}
	return conflicts
}

// sameRowConflicts flags a teacher or room appearing in two or more day
// columns of a single row within one class. A teacher can legitimately
// teach the same slot on different days, so this rule is questionable, but
// it matches the dashboard's scan and is reported rather than fixed.
func sameRowConflicts(book models.ScheduleBook, classIDs []string) []models.Conflict {
	var conflicts []models.Conflict
	for _, classID := range classIDs {
		for _, row := range book[classID].Rows {
			if row.IsBreak {
				continue
			}
			teacherDays := map[string]int{}
			roomDays := map[string]int{}
			for _, day := range models.Days() {
				entry := row.Cells[day]
				if entry.IsEmpty() {
					continue
				}
				if entry.Teacher != "" {
					teacherDays[entry.Teacher]++
				}
				if entry.Room != "" {
					roomDays[entry.Room]++
				}
			}
			for _, name := range sortedKeys(teacherDays) {
				if teacherDays[name] >= 2 {
					conflicts = append(conflicts, models.Conflict{
						TimeSlot: row.Time,
						Type:     models.ConflictTeacher,
						Resource: name,
						Classes:  []string{classID},
					})
				}
			}
			for _, name := range sortedKeys(roomDays) {
				if roomDays[name] >= 2 {
					conflicts = append(conflicts, models.Conflict{
						TimeSlot: row.Time,
						Type:     models.ConflictRoom,
						Resource: name,
						Classes:  []string{classID},
					})
				}
			}
		}
	}
	return conflicts
}

// overloadFindings sums assigned cells per teacher name across the whole
// book and reports every teacher above the weekly ceiling. Pre-existing
// manual data may already violate the ceiling; it is surfaced here, never
// silently fixed.
func overloadFindings(book models.ScheduleBook, classIDs []string, teachers []models.Teacher) []models.Conflict {
	var findings []models.Conflict
	seen := map[string]bool{}
	for _, teacher := range teachers {
		if teacher.Name == "" || seen[teacher.Name] || teacher.MaxHours <= 0 {
			continue
		}
		seen[teacher.Name] = true

		total := 0
		var involved []string
		for _, classID := range classIDs {
			cells := 0
			for _, row := range book[classID].Rows {
				if row.IsBreak {
					continue
				}
				for _, entry := range row.Cells {
					if entry.Teacher == teacher.Name {
						cells++
					}
				}
			}
			if cells > 0 {
				involved = append(involved, classID)
			}
			total += cells
		}

		if total > teacher.MaxHours {
			findings = append(findings, models.Conflict{
				Type:     models.ConflictOverload,
				Resource: teacher.Name,
				Classes:  involved,
				Hours:    total,
				MaxHours: teacher.MaxHours,
			})
		}
	}
	return findings
}

func claimsToConflicts(claims map[string][]string, kind models.ConflictType, timeSlot string, day models.Day) []models.Conflict {
	var conflicts []models.Conflict
	for _, resource := range sortedKeys(claims) {
		classes := claims[resource]
		if len(classes) < 2 {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			TimeSlot: timeSlot,
			Day:      day,
			Type:     kind,
			Resource: resource,
			Classes:  classes,
		})
	}
	return conflicts
}

// cellAt looks up the entry for a (time, day) position; ok is false when
// the class has no row for that time.
func cellAt(sched *models.ClassSchedule, timeSlot string, day models.Day) (models.ScheduleEntry, bool) {
	if sched == nil {
		return models.ScheduleEntry{}, false
	}
	for _, row := range sched.Rows {
		if row.IsBreak || row.Time != timeSlot {
			continue
		}
		return row.Cells[day], true
	}
	return models.ScheduleEntry{}, false
}

// collectTimes returns the union of teaching row times across the book in
// grid display order.
func collectTimes(book models.ScheduleBook, classIDs []string) []string {
	seen := map[string]bool{}
	var times []string
	for _, classID := range classIDs {
		for _, row := range book[classID].Rows {
			if row.IsBreak || seen[row.Time] {
				continue
			}
			seen[row.Time] = true
			times = append(times, row.Time)
		}
	}
	sort.Slice(times, func(i, j int) bool {
		return startPrefix(times[i]) < startPrefix(times[j])
	})
	return times
}

func startPrefix(timeRange string) string {
	if len(timeRange) < 5 {
		return timeRange
	}
	return timeRange[:5]
}

func sortedClassIDs(book models.ScheduleBook) []string {
	ids := make([]string, 0, len(book))
	for id := range book {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func containsClass(classes []string, classID string) bool {
	for _, c := range classes {
		if c == classID {
			return true
		}
	}
	return false
}
