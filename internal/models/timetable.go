package models

import "time"

// Day identifies one of the six weekday columns of a class grid.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = map[Day]string{
	Monday:    "monday",
	Tuesday:   "tuesday",
	Wednesday: "wednesday",
	Thursday:  "thursday",
	Friday:    "friday",
	Saturday:  "saturday",
}

var dayIndexes = map[string]Day{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
}

// Days returns the six weekday columns in display order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// String returns the lowercase day name used in payloads and storage.
func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return ""
}

// DayFromName maps a lowercase day name back to its column. Zero means unknown.
func DayFromName(name string) Day {
	return dayIndexes[name]
}

// MarshalText renders the day as its lowercase name in JSON payloads.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a lowercase day name.
func (d *Day) UnmarshalText(text []byte) error {
	*d = DayFromName(string(text))
	return nil
}

// ScheduleEntry is one subject/teacher/room assignment in a grid cell.
// The zero value is the empty cell.
type ScheduleEntry struct {
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
}

// IsEmpty reports whether the cell holds no assignment.
func (e ScheduleEntry) IsEmpty() bool {
	return e.Subject == "" && e.Teacher == "" && e.Room == ""
}

// ScheduleRow is one time range of a class grid: either a teaching row with
// one cell per weekday, or a break row shared identically by every class.
type ScheduleRow struct {
	Time    string
	IsBreak bool
	Label   string
	Cells   map[Day]ScheduleEntry
}

// NewTeachingRow builds a teaching row with every weekday cell present and empty.
func NewTeachingRow(timeRange string) ScheduleRow {
	cells := make(map[Day]ScheduleEntry, len(dayNames))
	for _, day := range Days() {
		cells[day] = ScheduleEntry{}
	}
	return ScheduleRow{Time: timeRange, Cells: cells}
}

// NewBreakRow builds a break row for the given window.
func NewBreakRow(period BreakPeriod) ScheduleRow {
	return ScheduleRow{Time: period.Range(), IsBreak: true, Label: period.Label}
}

// StartsAt returns the "HH:MM" prefix of the row's time range, the key the
// grid is ordered by.
func (r ScheduleRow) StartsAt() string {
	if len(r.Time) < 5 {
		return r.Time
	}
	return r.Time[:5]
}

// Clone returns a deep copy of the row.
func (r ScheduleRow) Clone() ScheduleRow {
	out := r
	if r.Cells != nil {
		out.Cells = make(map[Day]ScheduleEntry, len(r.Cells))
		for day, entry := range r.Cells {
			out.Cells[day] = entry
		}
	}
	return out
}

// ClassSchedule is the ordered row set for one class section.
type ClassSchedule struct {
	ClassID string
	Rows    []ScheduleRow
}

// Clone returns a deep copy of the schedule.
func (s *ClassSchedule) Clone() *ClassSchedule {
	if s == nil {
		return nil
	}
	out := &ClassSchedule{ClassID: s.ClassID, Rows: make([]ScheduleRow, len(s.Rows))}
	for i, row := range s.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// ScheduleBook maps class section IDs to their schedules. It is the unit the
// conflict detector operates over.
type ScheduleBook map[string]*ClassSchedule

// Clone returns a deep copy of the book.
func (b ScheduleBook) Clone() ScheduleBook {
	out := make(ScheduleBook, len(b))
	for id, sched := range b {
		out[id] = sched.Clone()
	}
	return out
}

// BreakKind names one of the three configurable break windows.
type BreakKind string

const (
	BreakMorning   BreakKind = "morning"
	BreakLunch     BreakKind = "lunch"
	BreakAfternoon BreakKind = "afternoon"
)

// BreakPeriod is one configured break window. Start and End are zero-padded
// "HH:MM" strings.
type BreakPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// Range renders the window as a grid time range.
func (p BreakPeriod) Range() string {
	return p.Start + "-" + p.End
}

// BreakPeriodSet holds the three break windows applied to every class grid.
type BreakPeriodSet struct {
	Morning   BreakPeriod `json:"morning"`
	Lunch     BreakPeriod `json:"lunch"`
	Afternoon BreakPeriod `json:"afternoon"`
}

// All returns the windows in morning, lunch, afternoon order.
func (s BreakPeriodSet) All() []BreakPeriod {
	return []BreakPeriod{s.Morning, s.Lunch, s.Afternoon}
}

// TimetableEntry is one persisted grid cell for a class section.
type TimetableEntry struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	TimeSlot  string    `db:"time_slot" json:"time_slot"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	Subject   string    `db:"subject" json:"subject"`
	Teacher   string    `db:"teacher_name" json:"teacher_name"`
	Room      string    `db:"room_name" json:"room_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
