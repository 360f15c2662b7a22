package rules

import (
	"sort"
	"time"

	"github.com/brainpair/backend/internal/domain/enums"
	"github.com/brainpair/backend/internal/domain/model"
)

type StreakChange struct {
	Outcome     enums.StreakOutcome
	PriorStreak int
}

// RecordActivity applies one study activity observed at now to state.
// A second activity on the same calendar day leaves the counters untouched.
func RecordActivity(state model.StreakState, now time.Time, loc *time.Location) (model.StreakState, StreakChange) {
	next := state.Clone()
	today := CalendarDate(now, loc)

	change := StreakChange{PriorStreak: state.Current}
	switch {
	case state.LastActiveDate == nil:
		next.Current = 1
		change.Outcome = enums.StreakStarted
	default:
		switch DaysBetween(*state.LastActiveDate, today) {
		case 0:
			change.Outcome = enums.StreakAlreadyRecorded
			return next, change
		case 1:
			next.Current = state.Current + 1
			change.Outcome = enums.StreakContinued
		default:
			next.Current = 1
			change.Outcome = enums.StreakReset
		}
	}

	next.LastActiveDate = &today
	next.ActivityDates = addActivityDate(next.ActivityDates, today)
	if next.Current > next.Longest {
		next.Longest = next.Current
	}

	return next, change
}

// ReconcileOnLoad is the read-side staleness check. It never increments: a streak whose
// last activity is more than one day old drops to zero and loses its last active date.
func ReconcileOnLoad(state model.StreakState, now time.Time, loc *time.Location) (model.StreakState, StreakChange) {
	next := state.Clone()
	change := StreakChange{Outcome: enums.StreakUnchanged, PriorStreak: state.Current}

	if state.LastActiveDate == nil {
		next.Current = 0
		return next, change
	}

	if DaysBetween(*state.LastActiveDate, CalendarDate(now, loc)) > 1 {
		next.Current = 0
		next.LastActiveDate = nil
		change.Outcome = enums.StreakExpired
	}

	return next, change
}

// ConsecutiveDays counts the run of activity dates ending today. A missing today does not break
// the run, so a streak kept up to yesterday still counts.
func ConsecutiveDays(dates []time.Time, now time.Time, loc *time.Location) int {
	if len(dates) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[DayKey(d, time.UTC)] = struct{}{}
	}

	today := CalendarDate(now, loc)
	streak := 0
	for i := 0; i <= len(set); i++ {
		day := today.AddDate(0, 0, -i)
		if _, ok := set[DayKey(day, time.UTC)]; ok {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}

func addActivityDate(dates []time.Time, day time.Time) []time.Time {
	idx := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(day) })
	if idx < len(dates) && dates[idx].Equal(day) {
		return dates
	}
	dates = append(dates, time.Time{})
	copy(dates[idx+1:], dates[idx:])
	dates[idx] = day
	return dates
}
