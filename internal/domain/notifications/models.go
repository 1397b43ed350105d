package notifications

import (
	"errors"
	"time"
)

var ErrInvalidMessage = errors.New("notification recipient and type are required")

// Message is a notification addressed to a single user.
type Message struct {
	To      string
	Type    string
	Message string
}

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Settings struct {
	EmailEnabled bool   `json:"emailEnabled"`
	EmailFrom    string `json:"emailFrom"`
}
