package httpdto

import "time"

type CreateCapsuleRequest struct {
	Title    string    `json:"title" binding:"required"`
	Body     string    `json:"body"`
	MediaURL string    `json:"media_url"`
	UnlockAt time.Time `json:"unlock_at" binding:"required"`
}

type UpdateCapsuleRequest struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	UnlockAt time.Time `json:"unlock_at"`
}
