package model

import "time"

type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	City        string    `json:"city"`
	Interests   []string  `json:"interests"`
	CreatedAt   time.Time `json:"created_at"`
}
