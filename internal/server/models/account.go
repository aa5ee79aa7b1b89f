// Package models defines server-side records persisted in the database.
package models

import "time"

// Account is a registered marketplace user. PasswordHash never leaves the server.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
