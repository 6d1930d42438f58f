package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/scolaire/timetable-api/internal/dto"
	"github.com/scolaire/timetable-api/internal/models"
	"github.com/scolaire/timetable-api/pkg/config"
	appErrors "github.com/scolaire/timetable-api/pkg/errors"
)

// BreakPeriodService owns the three configurable break windows shared by
// every class grid. Changing a window only changes how grids are rendered;
// no stored schedule cell is touched.
type BreakPeriodService struct {
	mu  sync.RWMutex
	set models.BreakPeriodSet
}

// NewBreakPeriodService seeds the windows from configuration. Invalid
// configured windows fall back to the built-in defaults rather than
// failing startup.
func NewBreakPeriodService(cfg config.BreaksConfig) *BreakPeriodService {
	svc := &BreakPeriodService{set: defaultBreakSet()}
	_ = svc.Set(models.BreakMorning, cfg.Morning.Start, cfg.Morning.End, cfg.Morning.Label)
	_ = svc.Set(models.BreakLunch, cfg.Lunch.Start, cfg.Lunch.End, cfg.Lunch.Label)
	_ = svc.Set(models.BreakAfternoon, cfg.Afternoon.Start, cfg.Afternoon.End, cfg.Afternoon.Label)
	return svc
}

func defaultBreakSet() models.BreakPeriodSet {
	return models.BreakPeriodSet{
		Morning:   models.BreakPeriod{Start: "10:00", End: "10:15", Label: "Récréation"},
		Lunch:     models.BreakPeriod{Start: "12:15", End: "13:45", Label: "Pause déjeuner"},
		Afternoon: models.BreakPeriod{Start: "15:45", End: "16:00", Label: "Pause"},
	}
}

// Current returns a copy of the active break windows.
func (s *BreakPeriodService) Current() models.BreakPeriodSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Set replaces one window. The only hard failure in the engine: a window
// whose end does not come after its start is rejected with INVALID_RANGE.
func (s *BreakPeriodService) Set(which models.BreakKind, start, end, label string) error {
	if err := validateWindow(start, end); err != nil {
		return err
	}
	period := models.BreakPeriod{Start: start, End: end, Label: label}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch which {
	case models.BreakMorning:
		s.set.Morning = period
	case models.BreakLunch:
		s.set.Lunch = period
	case models.BreakAfternoon:
		s.set.Afternoon = period
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown break period %q", which))
	}
	return nil
}

// Update validates and replaces all three windows atomically.
func (s *BreakPeriodService) Update(req dto.UpdateBreaksRequest) (models.BreakPeriodSet, error) {
	windows := []dto.BreakWindowRequest{req.Morning, req.Lunch, req.Afternoon}
	for _, window := range windows {
		if err := validateWindow(window.Start, window.End); err != nil {
			return models.BreakPeriodSet{}, err
		}
	}

	next := models.BreakPeriodSet{
		Morning:   models.BreakPeriod{Start: req.Morning.Start, End: req.Morning.End, Label: req.Morning.Label},
		Lunch:     models.BreakPeriod{Start: req.Lunch.Start, End: req.Lunch.End, Label: req.Lunch.Label},
		Afternoon: models.BreakPeriod{Start: req.Afternoon.Start, End: req.Afternoon.End, Label: req.Afternoon.Label},
	}

	s.mu.Lock()
	s.set = next
	s.mu.Unlock()
	return next, nil
}

func validateWindow(start, end string) error {
	if _, err := time.Parse("15:04", start); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("invalid start time %q, expected HH:MM", start))
	}
	if _, err := time.Parse("15:04", end); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("invalid end time %q, expected HH:MM", end))
	}
	// zero-padded 24-hour times compare correctly as strings
	if end <= start {
		return appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("break window %s-%s must end after it starts", start, end))
	}
	return nil
}
