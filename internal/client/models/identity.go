// Package models defines the client-side data types shared by the identity
// store, the job ledger and the feed client.
package models

import "time"

// Identity is the public view of a registered user.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserRecord is one entry of the persisted user directory.
//
// Password is only ever populated on records written by older clients that
// stored the secret in plaintext; such records are upgraded to Salt/Verifier
// on the next successful login.
type UserRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Salt      []byte    `json:"salt,omitempty"`
	Verifier  []byte    `json:"verifier,omitempty"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Identity strips the credential material from r.
func (r UserRecord) Identity() Identity {
	return Identity{ID: r.ID, Name: r.Name, Email: r.Email}
}

// IsLegacy reports whether r still carries a plaintext secret.
func (r UserRecord) IsLegacy() bool {
	return r.Password != "" && len(r.Verifier) == 0
}
