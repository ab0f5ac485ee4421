package domain

// TimeSlot is a candidate or committed interval of one category's duration.
//
// StartMinute and EndMinute live in the normalized minute space of a single
// scheduling run: the post-midnight part of a wrapping window keeps values
// >= MinutesPerDay so ordering stays monotonic. EndMinute == StartMinute + Duration.
type TimeSlot struct {
	StartMinute int
	EndMinute   int
	Duration    int
	Occupied    bool
	OccupiedBy  string // category ID
}

func NewTimeSlot(start, duration int) TimeSlot {
	return TimeSlot{StartMinute: start, EndMinute: start + duration, Duration: duration}
}

// StartTime is the wall-clock start, wrapped to the 24h clock.
func (s TimeSlot) StartTime() string { return ClockTime(s.StartMinute) }

// EndTime is the wall-clock end, wrapped to the 24h clock.
func (s TimeSlot) EndTime() string { return ClockTime(s.EndMinute) }
