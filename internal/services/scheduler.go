package services

import (
	"cmp"
	"daily-routine-service/internal/domain"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Scheduler turns category constraints into a conflict-free, time-ordered itinerary.
//
// A Scheduler holds no per-run state; each Schedule call builds its own
// occupied set. It is safe for concurrent use when its Rand is.
type Scheduler struct {
	rng    Rand
	step   int
	logger *zap.Logger
}

type SchedulerOption func(*Scheduler)

// WithSlotStep overrides the base candidate spacing in minutes.
func WithSlotStep(step int) SchedulerOption {
	return func(s *Scheduler) { s.step = step }
}

func WithLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

func NewScheduler(rng Rand, opts ...SchedulerOption) *Scheduler {
	if rng == nil {
		rng = SystemRand()
	}
	s := &Scheduler{rng: rng, step: DefaultSlotStep, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule places every category it can and returns the activities sorted by
// clock start time.
//
// Categories are expected to be pre-validated (see ValidCategories). Those
// with more repetitions, then longer durations, claim time first. A category
// with no free slot contributes nothing; an empty result is not an error.
// Only a malformed time window fails the call.
func (s *Scheduler) Schedule(categories []domain.Category) ([]domain.ScheduledActivity, error) {
	ordered := slices.Clone(categories)
	slices.SortStableFunc(ordered, func(a, b domain.Category) int {
		if c := cmp.Compare(b.Repetitions, a.Repetitions); c != 0 {
			return c
		}
		return cmp.Compare(b.ActivityDuration, a.ActivityDuration)
	})

	activities := []domain.ScheduledActivity{}
	occupied := []domain.TimeSlot{}

	for _, c := range ordered {
		locations := c.UsableLocations()
		if len(locations) == 0 {
			continue
		}

		available, err := GenerateAvailableSlots(c, occupied, s.step)
		if err != nil {
			return nil, fmt.Errorf("schedule: %w", err)
		}
		if len(available) == 0 {
			s.logger.Debug("no available slots", zap.String("category", c.Name))
			continue
		}

		picked := DistributeRepetitions(available, c.Repetitions, c.AllowConsecutive, s.rng)
		for i, slot := range picked {
			loc := locations[s.rng.IntN(len(locations))]

			activities = append(activities, domain.ScheduledActivity{
				CategoryID:      c.ID,
				CategoryName:    c.Name,
				LocationID:      loc.ID,
				Location:        loc.Address,
				StartTime:       slot.StartTime(),
				EndTime:         slot.EndTime(),
				StartMinute:     slot.StartMinute,
				EndMinute:       slot.EndMinute,
				Duration:        slot.Duration,
				RepetitionIndex: i,
			})

			slot.Occupied = true
			slot.OccupiedBy = c.ID
			occupied = append(occupied, slot)
		}
	}

	// Order by clock start time; post-midnight activities of a wrapping window lead the day.
	slices.SortStableFunc(activities, func(a, b domain.ScheduledActivity) int {
		return cmp.Compare(domain.ClockMinutes(a.StartMinute), domain.ClockMinutes(b.StartMinute))
	})

	return activities, nil
}
