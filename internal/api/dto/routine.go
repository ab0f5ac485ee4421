package dto

import "time"

type PlanRoutineRequest struct {
	Seed *uint64 `json:"seed"`
}

type CoordinatesResponse struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type ActivityResponse struct {
	CategoryID      string               `json:"category_id"`
	CategoryName    string               `json:"category_name"`
	LocationID      string               `json:"location_id"`
	Location        string               `json:"location"`
	StartTime       string               `json:"start_time"`
	EndTime         string               `json:"end_time"`
	Duration        int                  `json:"duration"`
	RepetitionIndex int                  `json:"repetition_index"`
	Coords          *CoordinatesResponse `json:"coords"`
	Completed       bool                 `json:"completed"`
	Skipped         bool                 `json:"skipped"`
}

type ShortfallResponse struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Requested    int    `json:"requested"`
	Placed       int    `json:"placed"`
}

type RoutineResponse struct {
	ID           string              `json:"id"`
	CreatedAt    time.Time           `json:"created_at"`
	CurrentIndex int                 `json:"current_index"`
	Activities   []ActivityResponse  `json:"activities"`
	Warnings     []string            `json:"warnings"`
	Shortfalls   []ShortfallResponse `json:"shortfalls"`
}

type RouteResponse struct {
	// URL is the link suited to the requesting device.
	URL           string `json:"url"`
	GoogleMapsURL string `json:"google_maps_url"`
	AppleMapsURL  string `json:"apple_maps_url"`
	Description   string `json:"description"`
}

type NextActivityResponse struct {
	Done       bool              `json:"done"`
	Index      int               `json:"index"`
	Activity   *ActivityResponse `json:"activity,omitempty"`
	DistanceKm *float64          `json:"distance_km,omitempty"`
}
