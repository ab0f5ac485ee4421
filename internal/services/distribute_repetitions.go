package services

import (
	"cmp"
	"daily-routine-service/internal/domain"
	"slices"
)

// Spacing heuristics for repeated categories. The fractions are tuning knobs,
// not guarantees.
const (
	// MinimumGapMinutes separates repetitions of one category unless it allows
	// consecutive placement.
	MinimumGapMinutes = 90
	// FirstPickDivisor restricts the first repetition to the first 1/N of slots.
	FirstPickDivisor = 3
	// BestCandidateFraction is the share of best-scored slots a pick is drawn from.
	BestCandidateFraction = 0.3
)

type scoredSlot struct {
	slot  domain.TimeSlot
	score int
}

// DistributeRepetitions selects up to repetitions non-overlapping slots from
// the ordered candidates, spreading them toward an even gap.
//
// The result is in selection order. A repetition with no acceptable slot is
// dropped, so fewer slots than requested may be returned.
func DistributeRepetitions(slots []domain.TimeSlot, repetitions int, allowConsecutive bool, rng Rand) []domain.TimeSlot {
	if repetitions <= 0 || len(slots) == 0 {
		return []domain.TimeSlot{}
	}

	if repetitions == 1 {
		return []domain.TimeSlot{slots[rng.IntN(len(slots))]}
	}

	minGap := MinimumGapMinutes
	if allowConsecutive {
		minGap = 0
	}

	span := slots[len(slots)-1].StartMinute - slots[0].StartMinute
	idealGap := max(minGap, span/repetitions)

	firstThird := max(1, len(slots)/FirstPickDivisor)
	selected := make([]domain.TimeSlot, 0, repetitions)
	selected = append(selected, slots[rng.IntN(firstThird)])

	for len(selected) < repetitions {
		prevEnd := selected[len(selected)-1].EndMinute

		var scored []scoredSlot
		for _, s := range slots {
			if s.StartMinute-prevEnd < minGap {
				continue
			}
			if overlapsAny(s, selected, minGap) {
				continue
			}
			gap := s.StartMinute - prevEnd
			scored = append(scored, scoredSlot{slot: s, score: abs(gap - idealGap)})
		}

		if len(scored) > 0 {
			slices.SortStableFunc(scored, func(a, b scoredSlot) int { return cmp.Compare(a.score, b.score) })
			best := max(1, int(float64(len(scored))*BestCandidateFraction))
			selected = append(selected, scored[rng.IntN(best)].slot)
			continue
		}

		var free []domain.TimeSlot
		for _, s := range slots {
			if !overlapsAny(s, selected, 0) {
				free = append(free, s)
			}
		}
		if len(free) == 0 {
			// Every later repetition would face the same empty candidate set.
			break
		}
		selected = append(selected, free[rng.IntN(len(free))])
	}

	return selected
}

// overlapsAny reports whether s comes within margin minutes of any slot in set.
func overlapsAny(s domain.TimeSlot, set []domain.TimeSlot, margin int) bool {
	for _, o := range set {
		if s.StartMinute < o.EndMinute+margin && s.EndMinute > o.StartMinute-margin {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
