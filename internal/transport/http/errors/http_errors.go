package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if rl, ok := payload.(RateLimitError); ok && rl.RetryAfterSec > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(rl.RetryAfterSec, 10))
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
