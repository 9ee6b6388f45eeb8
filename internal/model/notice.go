package model

import "time"

// NoticesKey is the key-value store key holding the notice board entries.
const NoticesKey = "notices"

// Notice is a panchayat announcement shown on the user dashboard.
type Notice struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// PublishNoticeRequest is used by admins to publish a new notice
type PublishNoticeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}
