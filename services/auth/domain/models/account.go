package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the credential aggregate for this bounded context. It stores only
// what login needs; profile data lives in the user service's read model.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// NewAccount constructs an Account with generated ID and current timestamp.
// The password must already be hashed by the application layer.
func NewAccount(email, name, passwordHash string) *Account {
	return &Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}
