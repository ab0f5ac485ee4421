package services

import (
	"daily-routine-service/internal/domain"
	"reflect"
	"testing"
)

// scriptedRand replays values (reduced mod n) and then returns 0.
type scriptedRand struct {
	values []int
	i      int
}

func (r *scriptedRand) IntN(n int) int {
	if r.i >= len(r.values) {
		return 0
	}
	v := r.values[r.i] % n
	r.i++
	return v
}

// lastRand always picks the last index.
type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

func testCategory(id string, reps, duration int, start, end string) domain.Category {
	return domain.Category{
		ID:               id,
		Name:             "cat-" + id,
		ActivityDuration: duration,
		TimeRange:        domain.TimeRange{Start: start, End: end},
		Repetitions:      reps,
		Locations: []domain.Location{
			{ID: id + "-1", Address: "Address 1 " + id},
			{ID: id + "-2", Address: "Address 2 " + id},
		},
	}
}

func sampleCategories() []domain.Category {
	gym := testCategory("gym", 1, 60, "06:00", "18:00")
	coffee := testCategory("coffee", 2, 30, "08:00", "18:00")
	library := testCategory("library", 1, 90, "09:00", "17:00")
	lunch := testCategory("lunch", 1, 45, "11:00", "15:00")
	park := testCategory("park", 1, 60, "07:00", "19:00")
	return []domain.Category{gym, coffee, library, lunch, park}
}

func TestScheduleSingleRepetitionWithinWindow(t *testing.T) {
	c := testCategory("a", 1, 30, "09:00", "17:00")

	for seed := uint64(0); seed < 50; seed++ {
		got, err := NewScheduler(SeededRand(seed)).Schedule([]domain.Category{c})
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if len(got) != 1 {
			t.Fatalf("seed %d: got %d activities, want 1", seed, len(got))
		}
		if got[0].StartMinute < 9*60 || got[0].StartMinute > 16*60+30 {
			t.Fatalf("seed %d: start %s outside [09:00, 16:30]", seed, got[0].StartTime)
		}
	}
}

func TestScheduleSpreadsRepetitions(t *testing.T) {
	c := testCategory("b", 3, 60, "06:00", "18:00")

	got, err := NewScheduler(&scriptedRand{}).Schedule([]domain.Category{c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"06:00", "10:40", "15:20"}
	if len(got) != len(want) {
		t.Fatalf("got %d activities, want %d", len(got), len(want))
	}
	for i, a := range got {
		if a.StartTime != want[i] {
			t.Errorf("activity %d start = %s, want %s", i, a.StartTime, want[i])
		}
		if a.RepetitionIndex != i {
			t.Errorf("activity %d repetition index = %d", i, a.RepetitionIndex)
		}
	}
	for i := 1; i < len(got); i++ {
		if gap := got[i].StartMinute - got[i-1].EndMinute; gap < MinimumGapMinutes {
			t.Errorf("gap between %d and %d = %d, want >= %d", i-1, i, gap, MinimumGapMinutes)
		}
	}
}

func TestScheduleHigherPriorityClaimsSharedWindow(t *testing.T) {
	a := testCategory("a", 2, 60, "09:00", "12:00")
	a.AllowConsecutive = true
	b := testCategory("b", 1, 45, "09:00", "11:00")

	// b is listed first to show ordering comes from priority, not input order.
	got, err := NewScheduler(&scriptedRand{}).Schedule([]domain.Category{b, a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := map[string]int{}
	for _, act := range got {
		counts[act.CategoryID]++
	}
	if counts["a"] != 2 {
		t.Fatalf("category a placed %d, want 2", counts["a"])
	}
	if counts["b"] != 0 {
		t.Fatalf("category b placed %d, want 0", counts["b"])
	}
}

func TestScheduleWindowShorterThanDuration(t *testing.T) {
	c := testCategory("d", 1, 30, "09:00", "09:20")

	got, err := NewScheduler(SystemRand()).Schedule([]domain.Category{c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d activities, want 0", len(got))
	}
}

func TestScheduleMalformedWindow(t *testing.T) {
	c := testCategory("x", 1, 30, "9am", "17:00")

	if _, err := NewScheduler(SystemRand()).Schedule([]domain.Category{c}); err == nil {
		t.Fatalf("expected error for malformed window")
	}
}

func TestScheduleInvariants(t *testing.T) {
	categories := append(sampleCategories(), testCategory("night", 1, 60, "22:00", "02:00"))
	windows := map[string]domain.Category{}
	for _, c := range categories {
		windows[c.ID] = c
	}

	for seed := uint64(0); seed < 200; seed++ {
		got, err := NewScheduler(SeededRand(seed)).Schedule(categories)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}

		for i, a := range got {
			if a.EndMinute != a.StartMinute+a.Duration {
				t.Fatalf("seed %d: activity %d end mismatch", seed, i)
			}

			c := windows[a.CategoryID]
			if a.Duration != c.ActivityDuration {
				t.Fatalf("seed %d: activity %d duration %d", seed, i, a.Duration)
			}
			ws, we, _ := c.TimeRange.Minutes()
			if we <= ws {
				we += domain.MinutesPerDay
			}
			if a.StartMinute < ws || a.EndMinute > we {
				t.Fatalf("seed %d: %s %s-%s outside window", seed, a.CategoryName, a.StartTime, a.EndTime)
			}
			if !mustInRange(t, a.StartTime, c.TimeRange) || !mustInRange(t, a.EndTime, c.TimeRange) {
				t.Fatalf("seed %d: %s %s-%s not in range", seed, a.CategoryName, a.StartTime, a.EndTime)
			}

			if i > 0 && mustMinutes(t, got[i-1].StartTime) > mustMinutes(t, a.StartTime) {
				t.Fatalf("seed %d: result not sorted by start time at %d: %s before %s", seed, i, got[i-1].StartTime, a.StartTime)
			}

			for j := i + 1; j < len(got); j++ {
				b := got[j]
				if a.CategoryID == b.CategoryID {
					if b.StartMinute-a.EndMinute < MinimumGapMinutes {
						t.Fatalf("seed %d: %s repetitions too close: %s and %s", seed, a.CategoryName, a.EndTime, b.StartTime)
					}
					continue
				}
				if a.StartMinute < b.EndMinute+BufferMinutes && a.EndMinute > b.StartMinute-BufferMinutes {
					t.Fatalf("seed %d: %s and %s within buffer", seed, a.CategoryName, b.CategoryName)
				}
			}
		}
	}
}

func TestScheduleDeterministicWithSeed(t *testing.T) {
	categories := sampleCategories()

	first, err := NewScheduler(SeededRand(42)).Schedule(categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewScheduler(SeededRand(42)).Schedule(categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different routines:\n%v\n%v", first, second)
	}
}

func TestScheduleDoesNotMutateInput(t *testing.T) {
	categories := sampleCategories()
	before := make([]string, len(categories))
	for i, c := range categories {
		before[i] = c.ID
	}

	if _, err := NewScheduler(SeededRand(7)).Schedule(categories); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range categories {
		if c.ID != before[i] {
			t.Fatalf("input reordered at %d: %s, want %s", i, c.ID, before[i])
		}
	}
}

func TestScheduleWrappingWindowFormatsClockTime(t *testing.T) {
	c := testCategory("night", 1, 60, "22:00", "02:00")

	got, err := NewScheduler(lastRand{}).Schedule([]domain.Category{c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d activities, want 1", len(got))
	}
	if got[0].StartTime != "01:00" || got[0].EndTime != "02:00" {
		t.Fatalf("got %s-%s, want 01:00-02:00", got[0].StartTime, got[0].EndTime)
	}
	if got[0].StartMinute != 25*60 {
		t.Fatalf("StartMinute = %d, want %d", got[0].StartMinute, 25*60)
	}
	if got[0].LocationID != "night-2" {
		t.Fatalf("LocationID = %s, want night-2", got[0].LocationID)
	}
}

func TestScheduleOrdersPostMidnightActivitiesFirst(t *testing.T) {
	night := testCategory("night", 1, 60, "22:00", "02:00")
	day := testCategory("day", 1, 60, "09:00", "10:00")

	got, err := NewScheduler(lastRand{}).Schedule([]domain.Category{night, day})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d activities, want 2", len(got))
	}
	if got[0].CategoryID != "night" || got[0].StartTime != "01:00" {
		t.Fatalf("first = %s at %s, want night at 01:00", got[0].CategoryID, got[0].StartTime)
	}
	if got[1].CategoryID != "day" || got[1].StartTime != "09:00" {
		t.Fatalf("second = %s at %s, want day at 09:00", got[1].CategoryID, got[1].StartTime)
	}
}

func mustMinutes(t *testing.T, tm string) int {
	t.Helper()
	m, err := domain.TimeToMinutes(tm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func mustInRange(t *testing.T, tm string, r domain.TimeRange) bool {
	t.Helper()
	ok, err := domain.InRange(tm, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ok
}
