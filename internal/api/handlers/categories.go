package handlers

import (
	"daily-routine-service/internal/api/dto"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/ports"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CategoryHandler manages the user's category definitions.
type CategoryHandler struct {
	Repo     ports.CategoryRepository
	Validate *validator.Validate
	// Seed returns the initial category set used by Reset.
	Seed func() ([]domain.Category, error)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Repo.ListCategories(r.Context())
	if err != nil {
		writeInternal(w, r, "list categories failed", err)
		return
	}

	res := dto.ListCategoriesResponse{
		Categories: make([]dto.CategoryResponse, 0, len(categories)),
	}
	for _, c := range categories {
		res.Categories = append(res.Categories, toCategoryResponse(c))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCategory(w, r)
	if !ok {
		return
	}

	c := toCategory(uuid.NewString(), req)
	if err := h.Repo.SaveCategory(r.Context(), c); err != nil {
		writeInternal(w, r, "create category failed", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toCategoryResponse(c))
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, ok := h.decodeCategory(w, r)
	if !ok {
		return
	}

	if _, err := h.Repo.GetCategory(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			writeError(w, r, http.StatusNotFound, "category not found")
			return
		}
		writeInternal(w, r, "get category failed", err)
		return
	}

	c := toCategory(id, req)
	if err := h.Repo.SaveCategory(r.Context(), c); err != nil {
		writeInternal(w, r, "update category failed", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toCategoryResponse(c))
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Repo.DeleteCategory(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrCategoryNotFound) {
		writeError(w, r, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		writeInternal(w, r, "delete category failed", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reset replaces every category with the initial data set.
func (h *CategoryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.Seed == nil {
		writeError(w, r, http.StatusNotImplemented, "reset is not configured")
		return
	}

	categories, err := h.Seed()
	if err != nil {
		writeInternal(w, r, "load seed failed", err)
		return
	}
	if err := h.Repo.ReplaceAll(r.Context(), categories); err != nil {
		writeInternal(w, r, "reset categories failed", err)
		return
	}

	h.List(w, r)
}

func (h *CategoryHandler) decodeCategory(w http.ResponseWriter, r *http.Request) (dto.CategoryRequest, bool) {
	var req dto.CategoryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeDecodeError(w, r, err)
		return req, false
	}

	req.Name = strings.TrimSpace(req.Name)
	for i := range req.Locations {
		req.Locations[i].Address = strings.TrimSpace(req.Locations[i].Address)
	}

	if err := h.validator().Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return req, false
	}
	return req, true
}

func (h *CategoryHandler) validator() *validator.Validate {
	if h.Validate == nil {
		return validator.New()
	}
	return h.Validate
}

// validationMessage names the first failing field and rule.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid " + fe.Namespace() + ": failed " + fe.Tag()
	}
	return "invalid request"
}

func toCategory(id string, req dto.CategoryRequest) domain.Category {
	c := domain.Category{
		ID:               id,
		Name:             req.Name,
		ActivityDuration: req.ActivityDuration,
		TimeRange:        domain.TimeRange{Start: req.TimeRange.Start, End: req.TimeRange.End},
		Repetitions:      req.Repetitions,
		AllowConsecutive: req.AllowConsecutive,
		Locations:        make([]domain.Location, 0, len(req.Locations)),
	}
	for _, l := range req.Locations {
		locID := strings.TrimSpace(l.ID)
		if locID == "" {
			locID = uuid.NewString()
		}
		c.Locations = append(c.Locations, domain.Location{ID: locID, Address: l.Address})
	}
	return c
}

func toCategoryResponse(c domain.Category) dto.CategoryResponse {
	res := dto.CategoryResponse{
		ID:               c.ID,
		Name:             c.Name,
		ActivityDuration: c.ActivityDuration,
		TimeRange:        dto.TimeRangeResponse{Start: c.TimeRange.Start, End: c.TimeRange.End},
		Repetitions:      c.Repetitions,
		AllowConsecutive: c.AllowConsecutive,
		Locations:        make([]dto.LocationResponse, 0, len(c.Locations)),
	}
	for _, l := range c.Locations {
		res.Locations = append(res.Locations, dto.LocationResponse{ID: l.ID, Address: l.Address})
	}
	return res
}
