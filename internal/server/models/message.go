package models

import "time"

// Message is a note attached to a listing thread.
type Message struct {
	ID          string
	ListingID   string
	SenderID    string
	SenderEmail string
	Body        string
	CreatedAt   time.Time
}
