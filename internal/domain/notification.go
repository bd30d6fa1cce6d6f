package domain

import "time"

// Notification is a user-facing message derived from a transition. The
// engine pushes these through the NotificationSink; a presentation layer
// drains pending ones and marks them shown.
type Notification struct {
	ID        int64          `json:"id"`
	Type      TransitionType `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	Shown     bool           `json:"shown"`
}
