package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/scolaire/timetable-api/internal/dto"
	"github.com/scolaire/timetable-api/internal/models"
	appErrors "github.com/scolaire/timetable-api/pkg/errors"
)

type classSectionReader interface {
	List(ctx context.Context) ([]models.ClassSection, error)
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
}

type teacherReader interface {
	List(ctx context.Context) ([]models.Teacher, error)
}

type roomReader interface {
	List(ctx context.Context) ([]models.Room, error)
}

type subjectReader interface {
	List(ctx context.Context) ([]models.Subject, error)
}

type timetableEntryStore interface {
	ListAll(ctx context.Context) ([]models.TimetableEntry, error)
	ListByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type conflictReportCache interface {
	Get(ctx context.Context) ([]models.Conflict, bool)
	Set(ctx context.Context, conflicts []models.Conflict)
	Invalidate(ctx context.Context)
}

// TimetableService orchestrates the engine: it feeds the registries into
// the generator, persists newly filled cells, and serves rendered grids
// and conflict reports. The engine itself stays pure; everything stateful
// lives here.
type TimetableService struct {
	classes   classSectionReader
	teachers  teacherReader
	rooms     roomReader
	subjects  subjectReader
	entries   timetableEntryStore
	generator *ScheduleGeneratorService
	detector  *ConflictDetectorService
	breaks    *BreakPeriodService
	cache     conflictReportCache
	tx        txProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService wires the orchestrator.
func NewTimetableService(
	classes classSectionReader,
	teachers teacherReader,
	rooms roomReader,
	subjects subjectReader,
	entries timetableEntryStore,
	generator *ScheduleGeneratorService,
	detector *ConflictDetectorService,
	breaks *BreakPeriodService,
	cache conflictReportCache,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		classes:   classes,
		teachers:  teachers,
		rooms:     rooms,
		subjects:  subjects,
		entries:   entries,
		generator: generator,
		detector:  detector,
		breaks:    breaks,
		cache:     cache,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Generate runs a generation pass for the requested classes (all classes
// when none are named), persists only the newly filled cells and returns
// the summary plus the rendered book. Manual cells are never overwritten:
// the generator skips them and the insert runs ON CONFLICT DO NOTHING.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class sections")
	}
	if len(req.ClassIDs) > 0 {
		classes, err = selectClasses(classes, req.ClassIDs)
		if err != nil {
			return nil, err
		}
	}

	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}

	stored, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}
	existing := bookFromEntries(stored)

	result := s.generator.Generate(classes, teachers, rooms, subjects, existing)

	added := diffEntries(existing, result.Book)
	if len(added) > 0 {
		if err := s.persistEntries(ctx, added); err != nil {
			return nil, err
		}
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.metrics.RecordGeneration(result.Summary.PlacedCells, result.Summary.UnplacedSubjects)
	s.logger.Info("timetable generated",
		zap.Int("classes", len(classes)),
		zap.Int("placed_cells", result.Summary.PlacedCells),
		zap.Int("unplaced_subjects", result.Summary.UnplacedSubjects),
	)

	names := classNames(classes)
	breakSet := s.breaks.Current()
	views := make(map[string]dto.ClassScheduleView, len(result.Summary.Classes))
	for _, class := range classes {
		sched := result.Book[class.ID]
		grid := &models.ClassSchedule{ClassID: class.ID, Rows: BuildGrid(sched.Rows, breakSet)}
		views[class.ID] = dto.NewClassScheduleView(grid, names[class.ID])
	}

	return &dto.GenerateTimetableResponse{Summary: result.Summary, Book: views}, nil
}

// ClassTimetable renders the full grid (teaching rows plus break rows) for
// one class section, building an empty skeleton when nothing is stored yet.
func (s *TimetableService) ClassTimetable(ctx context.Context, classID string) (*dto.ClassScheduleView, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class section")
	}

	stored, err := s.entries.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}
	sched := scheduleFromEntries(classID, stored)

	grid := &models.ClassSchedule{ClassID: classID, Rows: BuildGrid(sched.Rows, s.breaks.Current())}
	view := dto.NewClassScheduleView(grid, class.Name)
	return &view, nil
}

// Conflicts returns the detector's findings, reusing the cached full report
// when available; targetClass filtering always happens in memory so one
// cached report serves every class view.
func (s *TimetableService) Conflicts(ctx context.Context, targetClass string) (*dto.ConflictReport, error) {
	if targetClass != "" {
		if _, err := s.classes.FindByID(ctx, targetClass); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class section not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class section")
		}
	}

	var all []models.Conflict
	cached := false
	if s.cache != nil {
		all, cached = s.cache.Get(ctx)
	}
	if !cached {
		stored, err := s.entries.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
		}
		teachers, err := s.teachers.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
		}
		all = s.detector.Detect(bookFromEntries(stored), teachers, "")
		s.metrics.RecordDetection(len(all))
		if s.cache != nil {
			s.cache.Set(ctx, all)
		}
	}

	conflicts := all
	if targetClass != "" {
		conflicts = make([]models.Conflict, 0, len(all))
		for _, c := range all {
			if containsClass(c.Classes, targetClass) {
				conflicts = append(conflicts, c)
			}
		}
	}
	return &dto.ConflictReport{Conflicts: conflicts}, nil
}

func (s *TimetableService) persistEntries(ctx context.Context, entries []models.TimetableEntry) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := s.entries.InsertBatch(ctx, tx, entries); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entries")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable entries")
	}
	return nil
}

// selectClasses keeps the registry order while restricting to the
// requested IDs; an unknown ID is a not-found error.
func selectClasses(classes []models.ClassSection, ids []string) ([]models.ClassSection, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	selected := make([]models.ClassSection, 0, len(ids))
	for _, class := range classes {
		if wanted[class.ID] {
			selected = append(selected, class)
			delete(wanted, class.ID)
		}
	}
	if len(wanted) > 0 {
		for id := range wanted {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class section %s not found", id))
		}
	}
	return selected, nil
}

func classNames(classes []models.ClassSection) map[string]string {
	names := make(map[string]string, len(classes))
	for _, class := range classes {
		names[class.ID] = class.Name
	}
	return names
}

// bookFromEntries rebuilds the schedule book from stored cells. Every class
// gets the standard skeleton; stored rows outside the catalogue (manual
// edits) are appended rather than dropped.
func bookFromEntries(entries []models.TimetableEntry) models.ScheduleBook {
	book := models.ScheduleBook{}
	for _, entry := range entries {
		sched := book[entry.ClassID]
		if sched == nil {
			sched = NewClassSkeleton(entry.ClassID)
			book[entry.ClassID] = sched
		}
		applyEntry(sched, entry)
	}
	return book
}

// scheduleFromEntries rebuilds one class schedule from stored cells.
func scheduleFromEntries(classID string, entries []models.TimetableEntry) *models.ClassSchedule {
	sched := NewClassSkeleton(classID)
	for _, entry := range entries {
		applyEntry(sched, entry)
	}
	return sched
}

func applyEntry(sched *models.ClassSchedule, entry models.TimetableEntry) {
	day := models.DayFromName(entry.DayOfWeek)
	if day == 0 {
		return
	}
	for i := range sched.Rows {
		row := &sched.Rows[i]
		if row.IsBreak || row.Time != entry.TimeSlot {
			continue
		}
		row.Cells[day] = models.ScheduleEntry{Subject: entry.Subject, Teacher: entry.Teacher, Room: entry.Room}
		return
	}
	row := models.NewTeachingRow(entry.TimeSlot)
	row.Cells[day] = models.ScheduleEntry{Subject: entry.Subject, Teacher: entry.Teacher, Room: entry.Room}
	sched.Rows = append(sched.Rows, row)
}

// diffEntries returns the cells present in next but empty in prev, i.e.
// exactly what the generation pass added.
func diffEntries(prev, next models.ScheduleBook) []models.TimetableEntry {
	var added []models.TimetableEntry
	for _, classID := range sortedClassIDs(next) {
		for _, row := range next[classID].Rows {
			if row.IsBreak {
				continue
			}
			for _, day := range models.Days() {
				entry := row.Cells[day]
				if entry.IsEmpty() {
					continue
				}
				before, ok := cellAt(prev[classID], row.Time, day)
				if ok && !before.IsEmpty() {
					continue
				}
				added = append(added, models.TimetableEntry{
					ClassID:   classID,
					TimeSlot:  row.Time,
					DayOfWeek: day.String(),
					Subject:   entry.Subject,
					Teacher:   entry.Teacher,
					Room:      entry.Room,
				})
			}
		}
	}
	return added
}
