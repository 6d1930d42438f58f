package service

import (
	"go.uber.org/zap"

	"github.com/scolaire/timetable-api/internal/dto"
	"github.com/scolaire/timetable-api/internal/models"
)

// PlacementRequest describes one subject to drop into a class grid.
type PlacementRequest struct {
	Subject string
	Teacher string
	Room    string
	// Target is how many cells are still wanted for this subject.
	Target int
	// OccupiedDays marks days already holding the subject; the strategy
	// must not place there again.
	OccupiedDays map[models.Day]bool
}

// PlacementStrategy decides where a subject lands inside a single class
// grid. The default is greedy first-fit; a stronger solver can replace it
// without changing the ScheduleBook contract.
type PlacementStrategy interface {
	Place(sched *models.ClassSchedule, req PlacementRequest) int
}

// GeneratorConfig tunes the generation pass.
type GeneratorConfig struct {
	// PlaceholderRoom is assigned when no room is available.
	PlaceholderRoom string
	// TargetDays is the number of distinct days each subject should reach.
	TargetDays int
}

// GenerationResult carries the updated book plus the soft-failure summary.
type GenerationResult struct {
	Book    models.ScheduleBook
	Summary dto.GenerationSummary
}

// ScheduleGeneratorService produces or refreshes per-class schedules.
//
// Generation is class-local and greedy: no cross-class room or teacher
// check happens here, that is the conflict detector's job. Teachers and
// rooms are matched by display name, mirroring the surrounding dashboard.
type ScheduleGeneratorService struct {
	cfg      GeneratorConfig
	strategy PlacementStrategy
	logger   *zap.Logger
}

// NewScheduleGeneratorService wires the generator.
func NewScheduleGeneratorService(cfg GeneratorConfig, strategy PlacementStrategy, logger *zap.Logger) *ScheduleGeneratorService {
	if cfg.PlaceholderRoom == "" {
		cfg.PlaceholderRoom = "À définir"
	}
	if cfg.TargetDays <= 0 {
		cfg.TargetDays = 2
	}
	if strategy == nil {
		strategy = greedyPlacement{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGeneratorService{cfg: cfg, strategy: strategy, logger: logger}
}

// Generate runs one generation pass over the given class sections.
//
// The inputs are never mutated: `existing` is deep-copied and only
// genuinely empty cells are filled, so manual edits survive every run and
// re-running with unchanged inputs is a no-op. Capacity shortfalls (no
// qualifying teacher, no free cell) degrade to unplaced subjects in the
// summary, never to an error — incomplete setup data is an expected state
// for an interactively edited planning tool.
func (g *ScheduleGeneratorService) Generate(
	classes []models.ClassSection,
	teachers []models.Teacher,
	rooms []models.Room,
	subjects []models.Subject,
	existing models.ScheduleBook,
) GenerationResult {
	book := models.ScheduleBook{}
	if existing != nil {
		book = existing.Clone()
	}

	ledger := newTeacherLedger(teachers)
	hours := subjectHours(subjects)

	summary := dto.GenerationSummary{Classes: make([]dto.ClassGenerationSummary, 0, len(classes))}
	for _, class := range classes {
		sched := book[class.ID]
		if sched == nil {
			sched = NewClassSkeleton(class.ID)
		} else {
			normalizeRows(sched)
		}

		classSummary := dto.ClassGenerationSummary{ClassID: class.ID, ClassName: class.Name}
		for _, subject := range class.Subjects {
			occupied := daysHolding(sched, subject)
			target := g.targetFor(subject, hours)
			remaining := target - len(occupied)
			if remaining <= 0 {
				continue
			}

			teacher := pickTeacher(teachers, ledger, subject)
			if teacher == nil {
				if len(occupied) == 0 {
					classSummary.Unplaced = append(classSummary.Unplaced, subject)
				}
				g.logger.Debug("no qualifying teacher",
					zap.String("class", class.ID),
					zap.String("subject", subject),
				)
				continue
			}
			room := pickRoom(rooms, g.cfg.PlaceholderRoom)

			placed := g.strategy.Place(sched, PlacementRequest{
				Subject:      subject,
				Teacher:      teacher.Name,
				Room:         room,
				Target:       remaining,
				OccupiedDays: occupied,
			})
			ledger.add(teacher.Name, placed)
			classSummary.Placed += placed

			total := placed + len(occupied)
			switch {
			case total == 0:
				classSummary.Unplaced = append(classSummary.Unplaced, subject)
			case total < target:
				classSummary.Partial = append(classSummary.Partial, subject)
			}
		}

		book[class.ID] = sched
		summary.PlacedCells += classSummary.Placed
		summary.UnplacedSubjects += len(classSummary.Unplaced)
		summary.Classes = append(summary.Classes, classSummary)
	}

	return GenerationResult{Book: book, Summary: summary}
}

// targetFor resolves the placement target for a subject. The catalogue's
// weekly hours act as the target when they sit below the standard two-day
// goal (a one-hour subject gets a single cell); they never raise it.
func (g *ScheduleGeneratorService) targetFor(subject string, hours map[string]int) int {
	target := g.cfg.TargetDays
	if h, ok := hours[subject]; ok && h > 0 && h < target {
		target = h
	}
	return target
}

// greedyPlacement is the default first-fit strategy: days are scanned
// Monday through Saturday and each day takes the first row whose cell is
// empty and whose row does not already contain the teacher in any column.
type greedyPlacement struct{}

func (greedyPlacement) Place(sched *models.ClassSchedule, req PlacementRequest) int {
	placed := 0
	for _, day := range models.Days() {
		if placed >= req.Target {
			break
		}
		if req.OccupiedDays[day] {
			continue
		}
		for i := range sched.Rows {
			row := &sched.Rows[i]
			if row.IsBreak {
				continue
			}
			if !row.Cells[day].IsEmpty() {
				continue
			}
			if rowHasTeacher(*row, req.Teacher) {
				continue
			}
			row.Cells[day] = models.ScheduleEntry{Subject: req.Subject, Teacher: req.Teacher, Room: req.Room}
			placed++
			break
		}
	}
	return placed
}

// rowHasTeacher reports whether any day column of the row is assigned to
// the named teacher.
func rowHasTeacher(row models.ScheduleRow, name string) bool {
	for _, entry := range row.Cells {
		if !entry.IsEmpty() && entry.Teacher == name {
			return true
		}
	}
	return false
}

// daysHolding returns the distinct days on which the subject already
// appears in the schedule.
func daysHolding(sched *models.ClassSchedule, subject string) map[models.Day]bool {
	occupied := make(map[models.Day]bool)
	for _, row := range sched.Rows {
		if row.IsBreak {
			continue
		}
		for day, entry := range row.Cells {
			if entry.Subject == subject {
				occupied[day] = true
			}
		}
	}
	return occupied
}

// normalizeRows backfills missing day columns on rows loaded from storage
// or manual edits, so every teaching row carries all six cells.
func normalizeRows(sched *models.ClassSchedule) {
	for i := range sched.Rows {
		row := &sched.Rows[i]
		if row.IsBreak {
			continue
		}
		if row.Cells == nil {
			row.Cells = make(map[models.Day]models.ScheduleEntry, 6)
		}
		for _, day := range models.Days() {
			if _, ok := row.Cells[day]; !ok {
				row.Cells[day] = models.ScheduleEntry{}
			}
		}
	}
}

// pickTeacher returns the first teacher whose specialty matches the subject
// and who still has weekly capacity, or nil. Selection order follows the
// registry order, which keeps generation deterministic.
func pickTeacher(teachers []models.Teacher, ledger *teacherLedger, subject string) *models.Teacher {
	for i := range teachers {
		t := &teachers[i]
		if t.Specialty != subject {
			continue
		}
		if t.MaxHours > 0 && ledger.hours(t.Name) >= t.MaxHours {
			continue
		}
		return t
	}
	return nil
}

// pickRoom returns the first available room name, or the placeholder when
// every room is occupied or under maintenance.
func pickRoom(rooms []models.Room, placeholder string) string {
	for _, room := range rooms {
		if room.Status == models.RoomStatusAvailable {
			return room.Name
		}
	}
	return placeholder
}

// subjectHours indexes the catalogue's weekly hours by subject name.
func subjectHours(subjects []models.Subject) map[string]int {
	hours := make(map[string]int, len(subjects))
	for _, s := range subjects {
		hours[s.Name] = s.HoursPerWeek
	}
	return hours
}

// teacherLedger tracks assigned hours per teacher name across one
// generation run, seeded from the registry's current weekly hours so a run
// spanning several classes cannot exceed a teacher's ceiling.
type teacherLedger struct {
	used map[string]int
}

func newTeacherLedger(teachers []models.Teacher) *teacherLedger {
	used := make(map[string]int, len(teachers))
	for _, t := range teachers {
		if _, ok := used[t.Name]; !ok {
			used[t.Name] = t.WeeklyHours
		}
	}
	return &teacherLedger{used: used}
}

func (l *teacherLedger) hours(name string) int {
	return l.used[name]
}

func (l *teacherLedger) add(name string, cells int) {
	if cells > 0 {
		l.used[name] += cells
	}
}
