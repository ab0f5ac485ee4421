package dto

type LocationRequest struct {
	// Empty ids are assigned by the server.
	ID      string `json:"id"`
	Address string `json:"address" validate:"required"`
}

type TimeRangeRequest struct {
	Start string `json:"start" validate:"required,datetime=15:04"`
	End   string `json:"end" validate:"required,datetime=15:04"`
}

type CategoryRequest struct {
	Name             string            `json:"name" validate:"required"`
	ActivityDuration int               `json:"activity_duration" validate:"gt=0,lte=1440"`
	TimeRange        TimeRangeRequest  `json:"time_range"`
	Repetitions      int               `json:"repetitions" validate:"gt=0,lte=48"`
	AllowConsecutive bool              `json:"allow_consecutive"`
	Locations        []LocationRequest `json:"locations" validate:"min=1,dive"`
}

type LocationResponse struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type TimeRangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type CategoryResponse struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ActivityDuration int                `json:"activity_duration"`
	TimeRange        TimeRangeResponse  `json:"time_range"`
	Repetitions      int                `json:"repetitions"`
	AllowConsecutive bool               `json:"allow_consecutive"`
	Locations        []LocationResponse `json:"locations"`
}

type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}
