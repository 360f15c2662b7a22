package model

import "time"

// StreakState tracks consecutive study days. Dates are calendar dates at UTC midnight.
type StreakState struct {
	UserID         string      `json:"user_id"`
	Current        int         `json:"current"`
	Longest        int         `json:"longest"`
	LastActiveDate *time.Time  `json:"last_active_date"`
	ActivityDates  []time.Time `json:"activity_dates"`
}

func (s StreakState) Clone() StreakState {
	out := s
	if s.LastActiveDate != nil {
		last := *s.LastActiveDate
		out.LastActiveDate = &last
	}
	out.ActivityDates = append([]time.Time(nil), s.ActivityDates...)
	return out
}
