package ports

import (
	"context"
	"daily-routine-service/internal/domain"
)

// Port: persistence for planned routines and their tracking state.
type RoutineRepository interface {
	SaveRoutine(ctx context.Context, r *domain.Routine) error
	GetRoutine(ctx context.Context, id string) (*domain.Routine, error)
	// Persist tracking changes (completion flags and current index).
	UpdateRoutine(ctx context.Context, r *domain.Routine) error
}
