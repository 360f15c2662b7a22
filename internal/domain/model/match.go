package model

import "time"

type Match struct {
	ID        string    `json:"id"`
	Users     [2]string `json:"users"`
	CreatedAt time.Time `json:"created_at"`
}

// Partner returns the other participant of the match, or "" when userID is not part of it.
func (m Match) Partner(userID string) string {
	switch userID {
	case m.Users[0]:
		return m.Users[1]
	case m.Users[1]:
		return m.Users[0]
	default:
		return ""
	}
}

type MatchNotification struct {
	MatchID   string    `json:"match_id"`
	PartnerID string    `json:"partner_id"`
	CreatedAt time.Time `json:"created_at"`
}
