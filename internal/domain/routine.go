package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCategoryNotFound        = errors.New("category not found")
	ErrRoutineNotFound         = errors.New("routine not found")
	ErrActivityIndexOutOfRange = errors.New("activity index out of range")
	ErrActivityAlreadyResolved = errors.New("activity already completed or skipped")
)

// Shortfall records a category that got fewer placements than it asked for.
type Shortfall struct {
	CategoryID   string
	CategoryName string
	Requested    int
	Placed       int
}

// Routine is a planned day: a time-ordered itinerary plus tracking state.
type Routine struct {
	ID           string
	CreatedAt    time.Time
	Activities   []ScheduledActivity
	CurrentIndex int
	Warnings     []string
	Shortfalls   []Shortfall
}

// Current returns the activity the user is expected to do next.
func (r *Routine) Current() (ScheduledActivity, bool) {
	if r.CurrentIndex < 0 || r.CurrentIndex >= len(r.Activities) {
		return ScheduledActivity{}, false
	}
	return r.Activities[r.CurrentIndex], true
}

// Complete marks activity i as done and advances the current index past it.
func (r *Routine) Complete(i int) error {
	return r.resolve(i, func(a *ScheduledActivity) { a.Completed = true })
}

// Skip marks activity i as skipped and advances the current index past it.
func (r *Routine) Skip(i int) error {
	return r.resolve(i, func(a *ScheduledActivity) { a.Skipped = true })
}

func (r *Routine) resolve(i int, mark func(*ScheduledActivity)) error {
	if i < 0 || i >= len(r.Activities) {
		return fmt.Errorf("resolve activity %d of %d: %w", i, len(r.Activities), ErrActivityIndexOutOfRange)
	}

	a := &r.Activities[i]
	if a.Resolved() {
		return fmt.Errorf("resolve activity %d: %w", i, ErrActivityAlreadyResolved)
	}
	mark(a)

	if i+1 < len(r.Activities) {
		r.CurrentIndex = i + 1
	}
	return nil
}
