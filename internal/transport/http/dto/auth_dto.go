package dto

type DevTokenRequest struct {
	UserID string `json:"user_id"`
}

type DevTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
