package services

import (
	"daily-routine-service/internal/domain"
	"fmt"
)

const (
	// DefaultSlotStep is the candidate spacing for single-repetition categories.
	DefaultSlotStep = 15
	// RepeatedSlotStep caps the spacing for categories with several repetitions.
	RepeatedSlotStep = 10
	// BufferMinutes is the minimum clearance between activities of different categories.
	BufferMinutes = 5
)

// GenerateAvailableSlots enumerates the free slots of c's duration inside its window.
//
// Candidates start at the window start and advance by step (RepeatedSlotStep
// at most when c repeats). A window whose end is not after its start wraps
// through midnight and is walked in extended minutes. Candidates within
// BufferMinutes of any occupied slot are dropped. The result is ordered by
// start and may be empty.
func GenerateAvailableSlots(c domain.Category, occupied []domain.TimeSlot, step int) ([]domain.TimeSlot, error) {
	start, end, err := c.TimeRange.Minutes()
	if err != nil {
		return nil, fmt.Errorf("generate slots for %q: %w", c.Name, err)
	}
	if end <= start {
		end += domain.MinutesPerDay
	}

	if step <= 0 {
		step = DefaultSlotStep
	}
	if c.Repetitions > 1 {
		step = min(step, RepeatedSlotStep)
	}

	if c.ActivityDuration <= 0 {
		return []domain.TimeSlot{}, nil
	}

	slots := []domain.TimeSlot{}
	for m := start; m+c.ActivityDuration <= end; m += step {
		candidate := domain.NewTimeSlot(m, c.ActivityDuration)
		if conflictsWithAny(candidate, occupied) {
			continue
		}
		slots = append(slots, candidate)
	}

	return slots, nil
}

// conflictsWithAny compares on the 24h clock: each occupied slot is also
// checked one day earlier and later, so wrapped and unwrapped windows
// cannot claim the same wall-clock time.
func conflictsWithAny(candidate domain.TimeSlot, occupied []domain.TimeSlot) bool {
	for _, o := range occupied {
		for _, shift := range [...]int{-domain.MinutesPerDay, 0, domain.MinutesPerDay} {
			oStart, oEnd := o.StartMinute+shift, o.EndMinute+shift
			if candidate.StartMinute < oEnd+BufferMinutes && candidate.EndMinute > oStart-BufferMinutes {
				return true
			}
		}
	}
	return false
}
