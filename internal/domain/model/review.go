package model

import "time"

type Review struct {
	ReviewerID string    `json:"reviewer_id"`
	TargetID   string    `json:"target_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatingSummary aggregates the reviews a user received.
type RatingSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}
