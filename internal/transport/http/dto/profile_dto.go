package dto

import "time"

type ProfileRequest struct {
	DisplayName string   `json:"display_name"`
	City        string   `json:"city"`
	Interests   []string `json:"interests"`
}

type ProfileResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	City        string    `json:"city"`
	Interests   []string  `json:"interests"`
	CreatedAt   time.Time `json:"created_at"`
}

type CandidateItem struct {
	UserID        string   `json:"user_id"`
	DisplayName   string   `json:"display_name"`
	City          string   `json:"city"`
	Interests     []string `json:"interests"`
	ReviewCount   int      `json:"review_count"`
	AverageRating float64  `json:"average_rating"`
}

type CandidatesResponse struct {
	Items      []CandidateItem `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}
