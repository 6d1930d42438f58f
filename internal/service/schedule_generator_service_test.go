package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scolaire/timetable-api/internal/models"
)

func mathsClass(id, name string) models.ClassSection {
	return models.ClassSection{ID: id, Name: name, Level: "6ème", Subjects: []string{"Maths"}}
}

func mathsTeacher() models.Teacher {
	return models.Teacher{ID: "t1", Name: "M. Martin", Specialty: "Maths", MaxHours: 20}
}

func availableRoom() models.Room {
	return models.Room{ID: "r1", Name: "Salle 101", Status: models.RoomStatusAvailable}
}

func newGenerator() *ScheduleGeneratorService {
	return NewScheduleGeneratorService(GeneratorConfig{}, nil, nil)
}

// collectCells flattens a schedule into (time, day) -> entry for assertions.
func collectCells(sched *models.ClassSchedule) map[string]models.ScheduleEntry {
	cells := map[string]models.ScheduleEntry{}
	for _, row := range sched.Rows {
		if row.IsBreak {
			continue
		}
		for day, entry := range row.Cells {
			if !entry.IsEmpty() {
				cells[row.Time+"/"+day.String()] = entry
			}
		}
	}
	return cells
}

func TestGeneratePlacesSubjectOnTwoDistinctDays(t *testing.T) {
	gen := newGenerator()
	result := gen.Generate(
		[]models.ClassSection{mathsClass("6eme-a", "6ème A")},
		[]models.Teacher{mathsTeacher()},
		[]models.Room{availableRoom()},
		nil,
		nil,
	)

	require.Equal(t, 2, result.Summary.PlacedCells)
	require.Zero(t, result.Summary.UnplacedSubjects)

	cells := collectCells(result.Book["6eme-a"])
	require.Len(t, cells, 2)

	days := map[models.Day]bool{}
	for _, row := range result.Book["6eme-a"].Rows {
		for day, entry := range row.Cells {
			if entry.Subject == "Maths" {
				require.Equal(t, "M. Martin", entry.Teacher)
				require.Equal(t, "Salle 101", entry.Room)
				days[day] = true
			}
		}
	}
	require.Len(t, days, 2)
}

func TestGenerateIsIdempotent(t *testing.T) {
	gen := newGenerator()
	classes := []models.ClassSection{mathsClass("6eme-a", "6ème A")}
	teachers := []models.Teacher{mathsTeacher()}
	rooms := []models.Room{availableRoom()}

	first := gen.Generate(classes, teachers, rooms, nil, nil)
	second := gen.Generate(classes, teachers, rooms, nil, first.Book)

	require.Zero(t, second.Summary.PlacedCells)
	require.Zero(t, second.Summary.UnplacedSubjects)
	require.Equal(t, collectCells(first.Book["6eme-a"]), collectCells(second.Book["6eme-a"]))
}

func TestGenerateNeverOverwritesExistingCells(t *testing.T) {
	existing := models.ScheduleBook{"6eme-a": NewClassSkeleton("6eme-a")}
	manual := models.ScheduleEntry{Subject: "Arts", Teacher: "Mme Dupont", Room: "Salle 205"}
	existing["6eme-a"].Rows[0].Cells[models.Monday] = manual

	gen := newGenerator()
	result := gen.Generate(
		[]models.ClassSection{mathsClass("6eme-a", "6ème A")},
		[]models.Teacher{mathsTeacher()},
		[]models.Room{availableRoom()},
		nil,
		existing,
	)

	require.Equal(t, manual, result.Book["6eme-a"].Rows[0].Cells[models.Monday])
	// the input book is deep-copied, not mutated
	require.Len(t, collectCells(existing["6eme-a"]), 1)
}

func TestGenerateCountsExistingDaysTowardTarget(t *testing.T) {
	existing := models.ScheduleBook{"6eme-a": NewClassSkeleton("6eme-a")}
	existing["6eme-a"].Rows[2].Cells[models.Wednesday] = models.ScheduleEntry{
		Subject: "Maths", Teacher: "M. Martin", Room: "Salle 101",
	}

	gen := newGenerator()
	result := gen.Generate(
		[]models.ClassSection{mathsClass("6eme-a", "6ème A")},
		[]models.Teacher{mathsTeacher()},
		[]models.Room{availableRoom()},
		nil,
		existing,
	)

	// one day already holds Maths, so exactly one more cell is added
	require.Equal(t, 1, result.Summary.PlacedCells)

	days := map[models.Day]bool{}
	for _, row := range result.Book["6eme-a"].Rows {
		for day, entry := range row.Cells {
			if entry.Subject == "Maths" {
				days[day] = true
			}
		}
	}
	require.Len(t, days, 2)
	require.True(t, days[models.Wednesday])
}

func TestGenerateReportsUnplacedSubjectWithoutTeacher(t *testing.T) {
	gen := newGenerator()
	result := gen.Generate(
		[]models.ClassSection{{ID: "6eme-a", Name: "6ème A", Subjects: []string{"Musique"}}},
		[]models.Teacher{mathsTeacher()},
		[]models.Room{availableRoom()},
		nil,
		nil,
	)

	require.Zero(t, result.Summary.PlacedCells)
	require.Equal(t, 1, result.Summary.UnplacedSubjects)
	require.Equal(t, []string{"Musique"}, result.Summary.Classes[0].Unplaced)
}

func TestGenerateSubjectHoursLowerTheTarget(t *testing.T) {
	gen := newGenerator()
	result := gen.Generate(
		[]models.ClassSection{mathsClass("6eme-a", "6ème A")},
		[]models.Teacher{mathsTeacher()},
		[]models.Room{availableRoom()},
		[]models.Subject{{Name: "Maths", HoursPerWeek: 1}},
		nil,
	)

	require.Equal(t, 1, result.Summary.PlacedCells)
	require.Empty(t, result.Summary.Classes[0].Partial)
}

func TestGenerateHonorsTeacherCeilingAcrossClasses(t *testing.T) {
	teacher := mathsTeacher()
	teacher.WeeklyHours = 19

	gen := newGenerator()
	result := gen.Generate(
		[]models.ClassSection{mathsClass("6eme-a", "6ème A"), mathsClass("5eme-b", "5ème B")},
		[]models.Teacher{teacher},
		[]models.Room{availableRoom()},
		nil,
		nil,
	)

	// the first class consumes the remaining capacity; the second finds
	// no teacher under the ceiling
	require.Equal(t, 2, result.Summary.Classes[0].Placed)
	require.Equal(t, []string{"Maths"}, result.Summary.Classes[1].Unplaced)
}

func TestGenerateUsesPlaceholderRoomWhenNoneAvailable(t *testing.T) {
	gen := newGenerator()
	result := gen.Generate(
		[]models.ClassSection{mathsClass("6eme-a", "6ème A")},
		[]models.Teacher{mathsTeacher()},
		[]models.Room{{ID: "r1", Name: "Salle 101", Status: models.RoomStatusMaintenance}},
		nil,
		nil,
	)

	for _, entry := range collectCells(result.Book["6eme-a"]) {
		require.Equal(t, "À définir", entry.Room)
	}
}

func TestGenerateAvoidsDoubleBookingTeacherInOneRow(t *testing.T) {
	gen := newGenerator()
	result := gen.Generate(
		[]models.ClassSection{mathsClass("6eme-a", "6ème A")},
		[]models.Teacher{mathsTeacher()},
		[]models.Room{availableRoom()},
		nil,
		nil,
	)

	for _, row := range result.Book["6eme-a"].Rows {
		count := 0
		for _, entry := range row.Cells {
			if entry.Teacher == "M. Martin" {
				count++
			}
		}
		require.LessOrEqual(t, count, 1)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	classes := []models.ClassSection{
		{ID: "6eme-a", Name: "6ème A", Subjects: []string{"Maths", "Français", "Histoire"}},
		{ID: "5eme-b", Name: "5ème B", Subjects: []string{"Maths", "Français"}},
	}
	teachers := []models.Teacher{
		mathsTeacher(),
		{ID: "t2", Name: "Mme Bernard", Specialty: "Français", MaxHours: 20},
		{ID: "t3", Name: "M. Petit", Specialty: "Histoire", MaxHours: 20},
	}
	rooms := []models.Room{availableRoom(), {ID: "r2", Name: "Salle 102", Status: models.RoomStatusAvailable}}

	first := NewScheduleGeneratorService(GeneratorConfig{}, nil, nil).Generate(classes, teachers, rooms, nil, nil)
	second := NewScheduleGeneratorService(GeneratorConfig{}, nil, nil).Generate(classes, teachers, rooms, nil, nil)

	require.Equal(t, first.Summary, second.Summary)
	for _, id := range []string{"6eme-a", "5eme-b"} {
		require.Equal(t, collectCells(first.Book[id]), collectCells(second.Book[id]))
	}
}
