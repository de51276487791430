package models

import "time"

// Account holds a user's balance and identity fields. Balance is a signed
// integer in the smallest currency unit; it is mutated only by the transfer
// engine inside a unit of work. Credential material belongs to the accounts
// service and is never serialized in responses.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Balance      int64     `json:"balance"`
	Color        string    `json:"color"`
	PasswordHash string    `json:"-"`
	PasswordSalt string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot copies the account's identity fields as they are right now.
// Snapshots embedded in transfer records are never refreshed afterwards.
func (a Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
	}
}

// AccountSnapshot is a point-in-time copy of account identity data.
type AccountSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
