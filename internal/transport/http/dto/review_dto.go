package dto

import "time"

type ReviewRequest struct {
	TargetID string `json:"target_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type ReviewItem struct {
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewResponse struct {
	OK     bool       `json:"ok"`
	Review ReviewItem `json:"review"`
}

type ReviewStatusResponse struct {
	Reviewed bool `json:"reviewed"`
}

type ReviewOverviewResponse struct {
	UserID        string       `json:"user_id"`
	ReviewCount   int          `json:"review_count"`
	AverageRating float64      `json:"average_rating"`
	Recent        []ReviewItem `json:"recent"`
}
