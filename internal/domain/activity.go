package domain

// ScheduledActivity is one placed repetition of a category in a routine.
type ScheduledActivity struct {
	CategoryID      string
	CategoryName    string
	LocationID      string
	Location        string
	StartTime       string
	EndTime         string
	StartMinute     int
	EndMinute       int
	Duration        int
	RepetitionIndex int
	Coords          *Coordinates

	// Set by tracking, never by the scheduler.
	Completed bool
	Skipped   bool
}

// Resolved reports whether the activity was either completed or skipped.
func (a ScheduledActivity) Resolved() bool { return a.Completed || a.Skipped }
