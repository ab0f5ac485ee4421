package handlers

import (
	"context"
	"daily-routine-service/internal/api/dto"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/ports"
	"daily-routine-service/internal/services"
	"errors"
	"net/http"
	"strconv"
)

type RoutinePlanner interface {
	Plan(ctx context.Context, req services.PlanRoutineRequest) (*domain.Routine, error)
}

// RoutineHandler plans routines and tracks progress through them.
type RoutineHandler struct {
	Planner  RoutinePlanner
	Routines ports.RoutineRepository
}

func (h *RoutineHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRoutineRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	routine, err := h.Planner.Plan(r.Context(), services.PlanRoutineRequest{Seed: req.Seed})
	switch {
	case errors.Is(err, services.ErrNoValidCategories):
		writeError(w, r, http.StatusUnprocessableEntity, "no valid categories to schedule")
		return
	case errors.Is(err, services.ErrNothingScheduled):
		writeError(w, r, http.StatusUnprocessableEntity, "no activities could be scheduled")
		return
	case err != nil:
		writeInternal(w, r, "plan routine failed", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toRoutineResponse(routine))
}

func (h *RoutineHandler) Get(w http.ResponseWriter, r *http.Request) {
	routine, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, toRoutineResponse(routine))
}

func (h *RoutineHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, (*domain.Routine).Complete)
}

func (h *RoutineHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, (*domain.Routine).Skip)
}

func (h *RoutineHandler) resolve(w http.ResponseWriter, r *http.Request, mark func(*domain.Routine, int) error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "activity index must be an integer")
		return
	}

	routine, ok := h.load(w, r)
	if !ok {
		return
	}

	switch err := mark(routine, index); {
	case errors.Is(err, domain.ErrActivityIndexOutOfRange):
		writeError(w, r, http.StatusNotFound, "activity not found")
		return
	case errors.Is(err, domain.ErrActivityAlreadyResolved):
		writeError(w, r, http.StatusConflict, "activity already completed or skipped")
		return
	case err != nil:
		writeInternal(w, r, "update activity failed", err)
		return
	}

	if err := h.Routines.UpdateRoutine(r.Context(), routine); err != nil {
		writeInternal(w, r, "update routine failed", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toRoutineResponse(routine))
}

// Route returns map links through the routine's stops. The primary URL
// depends on the caller's User-Agent.
func (h *RoutineHandler) Route(w http.ResponseWriter, r *http.Request) {
	routine, ok := h.load(w, r)
	if !ok {
		return
	}

	url, err := services.RouteURL(routine.Activities, r.UserAgent())
	if errors.Is(err, services.ErrNoRoutableStops) {
		writeError(w, r, http.StatusUnprocessableEntity, "no stops with coordinates")
		return
	}
	if err != nil {
		writeInternal(w, r, "build route failed", err)
		return
	}

	// Both succeed once RouteURL did.
	google, _ := services.GoogleMapsURL(routine.Activities)
	apple, _ := services.AppleMapsURL(routine.Activities)

	writeJSON(w, r, http.StatusOK, dto.RouteResponse{
		URL:           url,
		GoogleMapsURL: google,
		AppleMapsURL:  apple,
		Description:   services.RouteDescription(routine.Activities),
	})
}

// Next returns the current activity. With lat and lon query parameters it
// also reports the straight-line distance to the activity's location.
func (h *RoutineHandler) Next(w http.ResponseWriter, r *http.Request) {
	var from *domain.Coordinates
	q := r.URL.Query()
	if q.Has("lat") || q.Has("lon") {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			writeError(w, r, http.StatusBadRequest, "lat and lon must be valid coordinates")
			return
		}
		from = &domain.Coordinates{Lon: lon, Lat: lat}
	}

	routine, ok := h.load(w, r)
	if !ok {
		return
	}

	current, ok := routine.Current()
	if !ok || current.Resolved() {
		writeJSON(w, r, http.StatusOK, dto.NextActivityResponse{Done: true, Index: routine.CurrentIndex})
		return
	}

	activity := toActivityResponse(current)
	res := dto.NextActivityResponse{Index: routine.CurrentIndex, Activity: &activity}
	if from != nil && current.Coords != nil {
		d := from.DistanceKm(*current.Coords)
		res.DistanceKm = &d
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RoutineHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Routine, bool) {
	routine, err := h.Routines.GetRoutine(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrRoutineNotFound) {
		writeError(w, r, http.StatusNotFound, "routine not found")
		return nil, false
	}
	if err != nil {
		writeInternal(w, r, "get routine failed", err)
		return nil, false
	}
	return routine, true
}

func toActivityResponse(a domain.ScheduledActivity) dto.ActivityResponse {
	res := dto.ActivityResponse{
		CategoryID:      a.CategoryID,
		CategoryName:    a.CategoryName,
		LocationID:      a.LocationID,
		Location:        a.Location,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Duration:        a.Duration,
		RepetitionIndex: a.RepetitionIndex,
		Completed:       a.Completed,
		Skipped:         a.Skipped,
	}
	if a.Coords != nil {
		res.Coords = &dto.CoordinatesResponse{Lon: a.Coords.Lon, Lat: a.Coords.Lat}
	}
	return res
}

func toRoutineResponse(r *domain.Routine) dto.RoutineResponse {
	res := dto.RoutineResponse{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		CurrentIndex: r.CurrentIndex,
		Activities:   make([]dto.ActivityResponse, 0, len(r.Activities)),
		Warnings:     r.Warnings,
		Shortfalls:   make([]dto.ShortfallResponse, 0, len(r.Shortfalls)),
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	for _, a := range r.Activities {
		res.Activities = append(res.Activities, toActivityResponse(a))
	}
	for _, s := range r.Shortfalls {
		res.Shortfalls = append(res.Shortfalls, dto.ShortfallResponse(s))
	}
	return res
}
