package models

import "time"

// Record is one document in a collection. Data holds the JSON object as
// written by the owner, with server timestamps already resolved.
type Record struct {
	Collection string
	ID         string
	OwnerID    string
	Data       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
