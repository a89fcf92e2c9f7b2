// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a provider credential record. Email is stored lowercased.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	Disabled     bool
	CreatedAt    time.Time
}
