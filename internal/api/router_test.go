package api

import (
	"bytes"
	"context"
	"daily-routine-service/internal/adapters/cache"
	"daily-routine-service/internal/adapters/geocode"
	"daily-routine-service/internal/adapters/repositories"
	"daily-routine-service/internal/api/dto"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/db"
	"daily-routine-service/internal/platform/metrics"
	"daily-routine-service/internal/services"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"

type testServer struct {
	handler    http.Handler
	categories *repositories.SqliteCategoryRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repositories.InitSchema(conn))
	_, err = repositories.SeedIfEmpty(context.Background(), conn, "")
	require.NoError(t, err)

	m := metrics.New()
	categories := repositories.NewSqliteCategoryRepository(conn)
	routines := repositories.NewSqliteRoutineRepository(conn)
	geocoder := geocode.NewCachedGeocoder(
		geocode.NewMockGeocoder(geocode.PuertoPenasco),
		cache.NewSqliteGeocodeCache(conn),
		m,
		geocode.WithCacheLogger(zap.NewNop()),
	)

	planner := &services.RoutinePlanner{
		Categories: categories,
		Geocoder:   geocoder,
		Routines:   routines,
		Observer:   m,
		Logger:     zap.NewNop(),
	}

	h := NewRouter(Deps{
		DB:         conn,
		Categories: categories,
		Routines:   routines,
		Planner:    planner,
		Seed:       func() ([]domain.Category, error) { return repositories.LoadSeed("") },
		Metrics:    m,
		Logger:     zap.NewNop(),
	})
	return &testServer{handler: h, categories: categories}
}

func (s *testServer) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(t, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCategoryLifecycle(t *testing.T) {
	s := newTestServer(t)

	list := decode[dto.ListCategoriesResponse](t, s.do(t, http.MethodGet, "/categories", ""))
	require.Len(t, list.Categories, 5)
	assert.Equal(t, "Gym", list.Categories[0].Name)

	body := `{
		"name": " Swim ",
		"activity_duration": 45,
		"time_range": {"start": "07:00", "end": "10:00"},
		"repetitions": 1,
		"locations": [{"address": "Pool"}, {"id": "beach", "address": "Beach"}]
	}`
	rec := s.do(t, http.MethodPost, "/categories", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.CategoryResponse](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Swim", created.Name)
	require.Len(t, created.Locations, 2)
	assert.NotEmpty(t, created.Locations[0].ID)
	assert.Equal(t, "beach", created.Locations[1].ID)

	update := strings.Replace(body, `"repetitions": 1`, `"repetitions": 2`, 1)
	rec = s.do(t, http.MethodPut, "/categories/"+created.ID, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[dto.CategoryResponse](t, rec).Repetitions)

	stored, err := s.categories.GetCategory(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Repetitions)

	rec = s.do(t, http.MethodPut, "/categories/missing", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/categories/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/categories/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCategoryRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	valid := `{"name":"Swim","activity_duration":45,"time_range":{"start":"07:00","end":"10:00"},"repetitions":1,"locations":[{"address":"Pool"}]}`
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"unknown field", strings.Replace(valid, `"repetitions":1`, `"repetitions":1,"color":"red"`, 1)},
		{"two objects", valid + valid},
		{"bad window", strings.Replace(valid, `"07:00"`, `"25:00"`, 1)},
		{"zero duration", strings.Replace(valid, `"activity_duration":45`, `"activity_duration":0`, 1)},
		{"no locations", strings.Replace(valid, `[{"address":"Pool"}]`, `[]`, 1)},
		{"blank address", strings.Replace(valid, `"Pool"`, `"  "`, 1)},
		{"blank name", strings.Replace(valid, `"Swim"`, `""`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/categories", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	list := decode[dto.ListCategoriesResponse](t, s.do(t, http.MethodGet, "/categories", ""))
	assert.Len(t, list.Categories, 5)
}

func TestResetCategories(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.categories.ReplaceAll(context.Background(), nil))

	rec := s.do(t, http.MethodPost, "/categories/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.ListCategoriesResponse](t, rec).Categories, 5)
}

func TestPlanAndTrackRoutine(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/routines", `{"seed": 7}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	planned := decode[dto.RoutineResponse](t, rec)
	require.GreaterOrEqual(t, len(planned.Activities), 2)
	assert.Equal(t, 0, planned.CurrentIndex)
	for i, a := range planned.Activities {
		require.NotNil(t, a.Coords, "activity %d", i)
		if i > 0 {
			assert.LessOrEqual(t, planned.Activities[i-1].StartTime, a.StartTime)
		}
	}

	got := decode[dto.RoutineResponse](t, s.do(t, http.MethodGet, "/routines/"+planned.ID, ""))
	assert.Equal(t, planned.Activities, got.Activities)

	base := "/routines/" + planned.ID + "/activities/"
	rec = s.do(t, http.MethodPost, base+"0/complete", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tracked := decode[dto.RoutineResponse](t, rec)
	assert.True(t, tracked.Activities[0].Completed)
	assert.Equal(t, 1, tracked.CurrentIndex)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, base+"0/skip", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, base+"99/complete", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, base+"first/complete", "").Code)

	rec = s.do(t, http.MethodPost, base+"1/skip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.RoutineResponse](t, rec).Activities[1].Skipped)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/routines/missing", "").Code)
}

func TestSeededPlansAreReproducible(t *testing.T) {
	s := newTestServer(t)

	first := decode[dto.RoutineResponse](t, s.do(t, http.MethodPost, "/routines", `{"seed": 42}`))
	second := decode[dto.RoutineResponse](t, s.do(t, http.MethodPost, "/routines", `{"seed": 42}`))

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Activities, second.Activities)
}

func TestPlanRoutineWithoutCategories(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.categories.ReplaceAll(context.Background(), nil))

	rec := s.do(t, http.MethodPost, "/routines", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/routines", `{"seed": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteAndNext(t *testing.T) {
	s := newTestServer(t)
	planned := decode[dto.RoutineResponse](t, s.do(t, http.MethodPost, "/routines", `{"seed": 1}`))
	path := "/routines/" + planned.ID

	rec := s.do(t, http.MethodGet, path+"/route", "", "User-Agent", iphoneUA)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	route := decode[dto.RouteResponse](t, rec)
	assert.True(t, strings.HasPrefix(route.URL, "maps://maps.apple.com/"), route.URL)
	assert.True(t, strings.HasPrefix(route.GoogleMapsURL, "https://maps.google.com/maps/dir/"), route.GoogleMapsURL)
	assert.Equal(t, route.URL, route.AppleMapsURL)
	assert.True(t, strings.HasPrefix(route.Description, "Daily Routine Route:"))

	rec = s.do(t, http.MethodGet, path+"/route", "")
	assert.Equal(t, route.GoogleMapsURL, decode[dto.RouteResponse](t, rec).URL)

	first := planned.Activities[0]
	rec = s.do(t, http.MethodGet, path+"/next?lat=31.32&lon=-113.53", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decode[dto.NextActivityResponse](t, rec)
	assert.False(t, next.Done)
	assert.Equal(t, 0, next.Index)
	require.NotNil(t, next.Activity)
	assert.Equal(t, first.StartTime, next.Activity.StartTime)
	require.NotNil(t, next.DistanceKm)
	assert.Less(t, *next.DistanceKm, 5.0)

	rec = s.do(t, http.MethodGet, path+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[dto.NextActivityResponse](t, rec).DistanceKm)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path+"/next?lat=north&lon=1", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path+"/next?lat=91&lon=1", "").Code)
}

func TestNextReportsDoneAfterLastActivity(t *testing.T) {
	s := newTestServer(t)
	planned := decode[dto.RoutineResponse](t, s.do(t, http.MethodPost, "/routines", `{"seed": 5}`))
	path := "/routines/" + planned.ID

	for i := range planned.Activities {
		rec := s.do(t, http.MethodPost, path+"/activities/"+strconv.Itoa(i)+"/complete", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	next := decode[dto.NextActivityResponse](t, s.do(t, http.MethodGet, path+"/next", ""))
	assert.True(t, next.Done)
	assert.Nil(t, next.Activity)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/routines", `{"seed": 3}`)

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="POST",path="POST /routines",status="201"} 1`)
	assert.Contains(t, body, "routines_planned_total 1")
	assert.Contains(t, body, "geocode_cache_misses_total")
}
