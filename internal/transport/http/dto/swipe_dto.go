package dto

type SwipeRequest struct {
	TargetID  string `json:"target_id"`
	Direction string `json:"direction"`
}

type SwipeResponse struct {
	OK           bool   `json:"ok"`
	MatchCreated bool   `json:"match_created"`
	MatchID      string `json:"match_id,omitempty"`
}
