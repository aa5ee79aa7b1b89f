package models

import "time"

// Attachment describes a file attached to a listing. The bytes live in object
// storage under StorageKey; URL is filled per request with a presigned link.
type Attachment struct {
	ID            string
	ListingID     string
	UploaderID    string
	UploaderEmail string
	FileName      string
	StorageKey    string
	CreatedAt     time.Time
	URL           string
}
