// Package models defines client-side data models used by the clinicauth CLI.
package models

import (
	"strings"
	"time"
)

// Role is the clinic role an account registers with.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole lowercases s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return r, true
	}
	return r, false
}

// AccountProfile is the application-level account record stored next to the
// identity provider's credential record. It is also the value mirrored into
// local storage as the session.
type AccountProfile struct {
	// ID is the provider-assigned account id.
	ID string `json:"id"`

	Name string `json:"name"`

	// Email is stored lowercased.
	Email string `json:"email"`

	Role Role `json:"role"`

	// CreatedAt is assigned by the document store when the profile is first
	// written.
	CreatedAt time.Time `json:"createdAt"`
}

// Profile record field names in the "users" collection.
const (
	UsersCollection = "users"

	FieldUID       = "uid"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldRole      = "role"
	FieldCreatedAt = "createdAt"
)
