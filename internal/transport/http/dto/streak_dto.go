package dto

type StreakResponse struct {
	Current        int     `json:"current"`
	Longest        int     `json:"longest"`
	LastActiveDate *string `json:"last_active_date"`
	Outcome        string  `json:"outcome"`
	Message        string  `json:"message,omitempty"`
}

type StreakCalendarResponse struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Dates  []string `json:"dates"`
	Streak int      `json:"streak"`
}
