package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/scolaire/timetable-api/internal/dto"
	"github.com/scolaire/timetable-api/internal/models"
	"github.com/scolaire/timetable-api/pkg/config"
	appErrors "github.com/scolaire/timetable-api/pkg/errors"
)

type classReaderStub struct {
	classes []models.ClassSection
}

func (s *classReaderStub) List(ctx context.Context) ([]models.ClassSection, error) {
	return s.classes, nil
}

func (s *classReaderStub) FindByID(ctx context.Context, id string) (*models.ClassSection, error) {
	for i := range s.classes {
		if s.classes[i].ID == id {
			return &s.classes[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type teacherReaderStub struct {
	teachers []models.Teacher
}

func (s *teacherReaderStub) List(ctx context.Context) ([]models.Teacher, error) {
	return s.teachers, nil
}

type roomReaderStub struct {
	rooms []models.Room
}

func (s *roomReaderStub) List(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type subjectReaderStub struct {
	subjects []models.Subject
}

func (s *subjectReaderStub) List(ctx context.Context) ([]models.Subject, error) {
	return s.subjects, nil
}

type entryStoreStub struct {
	stored   []models.TimetableEntry
	byClass  map[string][]models.TimetableEntry
	inserted []models.TimetableEntry
	listErr  error
}

func (s *entryStoreStub) ListAll(ctx context.Context) ([]models.TimetableEntry, error) {
	return s.stored, s.listErr
}

func (s *entryStoreStub) ListByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error) {
	return s.byClass[classID], nil
}

func (s *entryStoreStub) InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	s.inserted = append(s.inserted, entries...)
	return nil
}

type cacheStub struct {
	report      []models.Conflict
	cached      bool
	sets        int
	invalidated int
}

func (c *cacheStub) Get(ctx context.Context) ([]models.Conflict, bool) {
	return c.report, c.cached
}

func (c *cacheStub) Set(ctx context.Context, conflicts []models.Conflict) {
	c.report = conflicts
	c.cached = true
	c.sets++
}

func (c *cacheStub) Invalidate(ctx context.Context) {
	c.cached = false
	c.invalidated++
}

func newTestTimetableService(t *testing.T, classes *classReaderStub, teachers *teacherReaderStub, entries *entryStoreStub, cache *cacheStub) (*TimetableService, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	svc := NewTimetableService(
		classes,
		teachers,
		&roomReaderStub{rooms: []models.Room{{ID: "r1", Name: "Salle 101", Status: models.RoomStatusAvailable}}},
		&subjectReaderStub{},
		entries,
		NewScheduleGeneratorService(GeneratorConfig{}, nil, nil),
		NewConflictDetectorService(nil),
		NewBreakPeriodService(config.BreaksConfig{}),
		cache,
		db,
		nil,
		nil,
		nil,
	)
	return svc, mock
}

func TestTimetableServiceGeneratePersistsNewCells(t *testing.T) {
	classes := &classReaderStub{classes: []models.ClassSection{
		{ID: "6eme-a", Name: "6ème A", Subjects: []string{"Maths"}},
	}}
	teachers := &teacherReaderStub{teachers: []models.Teacher{
		{ID: "t1", Name: "M. Martin", Specialty: "Maths", MaxHours: 20},
	}}
	entries := &entryStoreStub{}
	cache := &cacheStub{cached: true}

	svc, mock := newTestTimetableService(t, classes, teachers, entries, cache)
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{})
	require.NoError(t, err)

	require.Equal(t, 2, resp.Summary.PlacedCells)
	require.Len(t, entries.inserted, 2)
	for _, entry := range entries.inserted {
		require.Equal(t, "6eme-a", entry.ClassID)
		require.Equal(t, "Maths", entry.Subject)
		require.Equal(t, "M. Martin", entry.Teacher)
	}
	require.Equal(t, 1, cache.invalidated)

	view, ok := resp.Book["6eme-a"]
	require.True(t, ok)
	require.Equal(t, "6ème A", view.ClassName)
	require.Len(t, view.Rows, 10)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceGenerateUnknownClass(t *testing.T) {
	svc, _ := newTestTimetableService(t,
		&classReaderStub{classes: []models.ClassSection{{ID: "6eme-a", Name: "6ème A"}}},
		&teacherReaderStub{}, &entryStoreStub{}, &cacheStub{})

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{ClassIDs: []string{"3eme-z"}})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateNoNewCellsSkipsPersistence(t *testing.T) {
	entries := &entryStoreStub{}
	svc, mock := newTestTimetableService(t,
		&classReaderStub{classes: []models.ClassSection{{ID: "6eme-a", Name: "6ème A", Subjects: []string{"Musique"}}}},
		&teacherReaderStub{}, entries, &cacheStub{})

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{})
	require.NoError(t, err)
	require.Zero(t, resp.Summary.PlacedCells)
	require.Equal(t, 1, resp.Summary.UnplacedSubjects)
	require.Empty(t, entries.inserted)
	// no transaction is opened when nothing was added
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceClassTimetable(t *testing.T) {
	entries := &entryStoreStub{byClass: map[string][]models.TimetableEntry{
		"6eme-a": {{
			ClassID: "6eme-a", TimeSlot: "08:00-09:00", DayOfWeek: "monday",
			Subject: "Maths", Teacher: "M. Martin", Room: "Salle 101",
		}},
	}}
	svc, _ := newTestTimetableService(t,
		&classReaderStub{classes: []models.ClassSection{{ID: "6eme-a", Name: "6ème A"}}},
		&teacherReaderStub{}, entries, &cacheStub{})

	view, err := svc.ClassTimetable(context.Background(), "6eme-a")
	require.NoError(t, err)
	require.Equal(t, "6ème A", view.ClassName)
	require.Len(t, view.Rows, 10)

	require.Equal(t, "08:00-09:00", view.Rows[0].Time)
	require.NotNil(t, view.Rows[0].Monday)
	require.Equal(t, "Maths", view.Rows[0].Monday.Subject)
	require.Nil(t, view.Rows[0].Tuesday)
}

func TestTimetableServiceClassTimetableNotFound(t *testing.T) {
	svc, _ := newTestTimetableService(t, &classReaderStub{}, &teacherReaderStub{}, &entryStoreStub{}, &cacheStub{})

	_, err := svc.ClassTimetable(context.Background(), "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTimetableServiceConflictsComputesAndCaches(t *testing.T) {
	entries := &entryStoreStub{stored: []models.TimetableEntry{
		{ClassID: "6eme-a", TimeSlot: "08:00-09:00", DayOfWeek: "monday", Subject: "Maths", Teacher: "M. Martin", Room: "Salle 101"},
		{ClassID: "5eme-b", TimeSlot: "08:00-09:00", DayOfWeek: "monday", Subject: "Physique", Teacher: "M. Martin", Room: "Salle 101"},
	}}
	cache := &cacheStub{}
	svc, _ := newTestTimetableService(t,
		&classReaderStub{classes: []models.ClassSection{{ID: "6eme-a", Name: "6ème A"}, {ID: "5eme-b", Name: "5ème B"}}},
		&teacherReaderStub{}, entries, cache)

	report, err := svc.Conflicts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, report.Conflicts, 2)
	require.Equal(t, 1, cache.sets)

	// second call is served from the cache even with a broken store
	entries.listErr = errors.New("db down")
	report, err = svc.Conflicts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, report.Conflicts, 2)
	require.Equal(t, 1, cache.sets)
}

func TestTimetableServiceConflictsFiltersByClass(t *testing.T) {
	cache := &cacheStub{
		cached: true,
		report: []models.Conflict{
			{TimeSlot: "08:00-09:00", Day: models.Monday, Type: models.ConflictRoom, Resource: "Salle 101", Classes: []string{"5eme-b", "6eme-a"}},
			{Type: models.ConflictOverload, Resource: "Mme Noël", Classes: []string{"4eme-c"}, Hours: 22, MaxHours: 20},
		},
	}
	svc, _ := newTestTimetableService(t,
		&classReaderStub{classes: []models.ClassSection{{ID: "6eme-a", Name: "6ème A"}}},
		&teacherReaderStub{}, &entryStoreStub{}, cache)

	report, err := svc.Conflicts(context.Background(), "6eme-a")
	require.NoError(t, err)
	require.Len(t, report.Conflicts, 1)
	require.Equal(t, "Salle 101", report.Conflicts[0].Resource)
}

func TestTimetableServiceConflictsUnknownClass(t *testing.T) {
	svc, _ := newTestTimetableService(t, &classReaderStub{}, &teacherReaderStub{}, &entryStoreStub{}, &cacheStub{})

	_, err := svc.Conflicts(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
