package services

import (
	"context"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/obs"
	"daily-routine-service/internal/ports"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoValidCategories = errors.New("no valid categories to schedule")
	ErrNothingScheduled  = errors.New("no activities could be scheduled")
)

// RoutineObserver receives the outcome of each planning run.
type RoutineObserver interface {
	ObserveRoutine(scheduled, dropped, unplaced int)
}

type PlanRoutineRequest struct {
	// Seed makes the placement reproducible; nil uses the system source.
	Seed *uint64
}

// RoutinePlanner loads categories, schedules them, resolves coordinates
// and stores the resulting routine.
type RoutinePlanner struct {
	Categories ports.CategoryRepository
	Geocoder   ports.Geocoder
	Routines   ports.RoutineRepository
	Observer   RoutineObserver
	Logger     *zap.Logger

	Now   func() time.Time
	NewID func() string
}

func (p *RoutinePlanner) Plan(ctx context.Context, req PlanRoutineRequest) (_ *domain.Routine, err error) {
	defer obs.Time(ctx, "routine.Plan")(&err)

	all, err := p.Categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan routine: list categories: %w", err)
	}

	valid := ValidCategories(all)
	if len(valid) == 0 {
		return nil, fmt.Errorf("plan routine: %w", ErrNoValidCategories)
	}

	rng := SystemRand()
	if req.Seed != nil {
		rng = SeededRand(*req.Seed)
	}

	activities, err := NewScheduler(rng, WithLogger(p.logger())).Schedule(valid)
	if err != nil {
		return nil, fmt.Errorf("plan routine: %w", err)
	}
	if len(activities) == 0 {
		return nil, fmt.Errorf("plan routine: %w", ErrNothingScheduled)
	}

	addresses := make([]string, len(activities))
	for i, a := range activities {
		addresses[i] = a.Location
	}
	coords, err := p.Geocoder.Geocode(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("plan routine: geocode locations: %w", err)
	}
	for i := range activities {
		if i < len(coords) {
			activities[i].Coords = coords[i]
		}
	}

	shortfalls := Shortfalls(valid, activities)
	routine := &domain.Routine{
		ID:         p.newID(),
		CreatedAt:  p.now(),
		Activities: activities,
		Shortfalls: shortfalls,
		Warnings:   shortfallWarnings(shortfalls),
	}

	if err := p.Routines.SaveRoutine(ctx, routine); err != nil {
		return nil, fmt.Errorf("plan routine: save: %w", err)
	}

	if p.Observer != nil {
		dropped, unplaced := 0, 0
		for _, s := range shortfalls {
			dropped += s.Requested - s.Placed
			if s.Placed == 0 {
				unplaced++
			}
		}
		p.Observer.ObserveRoutine(len(activities), dropped, unplaced)
	}

	return routine, nil
}

// ValidCategories keeps the categories that can be handed to the scheduler,
// with blank locations stripped.
func ValidCategories(categories []domain.Category) []domain.Category {
	out := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if !c.Schedulable() {
			continue
		}
		c.Name = strings.TrimSpace(c.Name)
		c.Locations = c.UsableLocations()
		out = append(out, c)
	}
	return out
}

// Shortfalls lists the categories that received fewer activities than requested,
// in the order the categories were given.
func Shortfalls(categories []domain.Category, activities []domain.ScheduledActivity) []domain.Shortfall {
	placed := make(map[string]int, len(categories))
	for _, a := range activities {
		placed[a.CategoryID]++
	}

	out := []domain.Shortfall{}
	for _, c := range categories {
		if placed[c.ID] >= c.Repetitions {
			continue
		}
		out = append(out, domain.Shortfall{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Requested:    c.Repetitions,
			Placed:       placed[c.ID],
		})
	}
	return out
}

func shortfallWarnings(shortfalls []domain.Shortfall) []string {
	out := make([]string, 0, len(shortfalls))
	for _, s := range shortfalls {
		if s.Placed == 0 {
			out = append(out, fmt.Sprintf("%s could not be scheduled: no free time in its window", s.CategoryName))
			continue
		}
		out = append(out, fmt.Sprintf("%s scheduled %d of %d times", s.CategoryName, s.Placed, s.Requested))
	}
	return out
}

func (p *RoutinePlanner) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.L()
	}
	return p.Logger
}

func (p *RoutinePlanner) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now()
}

func (p *RoutinePlanner) newID() string {
	if p.NewID == nil {
		return uuid.NewString()
	}
	return p.NewID()
}
