// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Owner, Feed
// and Entry, along with their validation rules and domain-specific errors.
package entity

import "time"

// Owner represents an account that owns feeds and folders.
// Passwords are never stored in clear text; only the keyed hash and the
// per-owner salt are persisted.
type Owner struct {
	ID           int64
	Name         string
	PasswordHash []byte
	Salt         []byte
	Admin        bool
	CreatedAt    time.Time
}

// Validate validates the Owner entity fields.
func (o *Owner) Validate() error {
	if o.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(o.Name) > maxNameLength {
		return &ValidationError{Field: "name", Message: "name is too long"}
	}
	if len(o.PasswordHash) == 0 {
		return &ValidationError{Field: "password_hash", Message: "password hash is required"}
	}
	if len(o.Salt) == 0 {
		return &ValidationError{Field: "salt", Message: "salt is required"}
	}
	return nil
}
