package enums

type StreakOutcome string

const (
	StreakStarted         StreakOutcome = "started"
	StreakAlreadyRecorded StreakOutcome = "already_recorded"
	StreakContinued       StreakOutcome = "continued"
	StreakReset           StreakOutcome = "reset"
	StreakUnchanged       StreakOutcome = "unchanged"
	StreakExpired         StreakOutcome = "expired"
)
