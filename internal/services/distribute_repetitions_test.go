package services

import (
	"daily-routine-service/internal/domain"
	"testing"
)

func slotsFor(t *testing.T, c domain.Category) []domain.TimeSlot {
	t.Helper()
	slots, err := GenerateAvailableSlots(c, nil, DefaultSlotStep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return slots
}

func TestDistributeRepetitionsEmpty(t *testing.T) {
	slots := slotsFor(t, testCategory("a", 1, 30, "09:00", "10:00"))

	if got := DistributeRepetitions(slots, 0, false, &scriptedRand{}); len(got) != 0 {
		t.Fatalf("zero repetitions returned %d slots", len(got))
	}
	if got := DistributeRepetitions(nil, 3, false, &scriptedRand{}); len(got) != 0 {
		t.Fatalf("no slots returned %d slots", len(got))
	}
}

func TestDistributeRepetitionsSinglePicksAnySlot(t *testing.T) {
	slots := slotsFor(t, testCategory("a", 1, 30, "09:00", "17:00"))

	got := DistributeRepetitions(slots, 1, false, lastRand{})
	if len(got) != 1 {
		t.Fatalf("got %d slots, want 1", len(got))
	}
	if got[0] != slots[len(slots)-1] {
		t.Fatalf("got %+v, want last slot", got[0])
	}
}

func TestDistributeRepetitionsFirstPickInFirstThird(t *testing.T) {
	slots := slotsFor(t, testCategory("a", 2, 30, "08:00", "18:00"))
	third := len(slots) / FirstPickDivisor

	got := DistributeRepetitions(slots, 2, false, lastRand{})
	if len(got) != 2 {
		t.Fatalf("got %d slots, want 2", len(got))
	}
	if got[0] != slots[third-1] {
		t.Fatalf("first pick = %s, want %s", got[0].StartTime(), slots[third-1].StartTime())
	}
}

func TestDistributeRepetitionsFallsBackToNonOverlapping(t *testing.T) {
	// 09:00-10:30 leaves no room for a 90 minute gap after the first pick.
	slots := slotsFor(t, testCategory("a", 2, 30, "09:00", "10:30"))

	got := DistributeRepetitions(slots, 2, false, &scriptedRand{})
	if len(got) != 2 {
		t.Fatalf("got %d slots, want 2", len(got))
	}
	if got[0].StartTime() != "09:00" || got[1].StartTime() != "09:30" {
		t.Fatalf("got %s and %s, want 09:00 and 09:30", got[0].StartTime(), got[1].StartTime())
	}
}

func TestDistributeRepetitionsDropsUnplaceable(t *testing.T) {
	// Two candidates that overlap each other.
	slots := slotsFor(t, testCategory("a", 3, 30, "09:00", "09:40"))
	if len(slots) != 2 {
		t.Fatalf("setup: got %d slots, want 2", len(slots))
	}

	got := DistributeRepetitions(slots, 3, false, &scriptedRand{})
	if len(got) != 1 {
		t.Fatalf("got %d slots, want 1", len(got))
	}
}

func TestDistributeRepetitionsConsecutiveAllowed(t *testing.T) {
	slots := slotsFor(t, testCategory("a", 3, 60, "09:00", "13:00"))

	got := DistributeRepetitions(slots, 3, true, &scriptedRand{})
	if len(got) != 3 {
		t.Fatalf("got %d slots, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].StartMinute < got[i-1].EndMinute {
			t.Fatalf("slots %d and %d overlap", i-1, i)
		}
	}
}
