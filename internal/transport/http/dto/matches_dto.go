package dto

import "time"

type MatchItemResponse struct {
	ID        string    `json:"id"`
	PartnerID string    `json:"partner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type UnmatchRequest struct {
	TargetID string `json:"target_id"`
}

type UnmatchResponse struct {
	OK      bool `json:"ok"`
	Deleted bool `json:"deleted"`
}

type MatchNotificationResponse struct {
	MatchID   string    `json:"match_id"`
	PartnerID string    `json:"partner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MatchNotificationsResponse struct {
	Items []MatchNotificationResponse `json:"items"`
}
