package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account role. Every account has exactly one.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// Starting coin balances granted on signup, by role.
const (
	SignupCoinsWorker = 10
	SignupCoinsBuyer  = 50
)

// Account is one platform user. Email is the unique business key; the coin
// balance is mutated only through the ledger engine's conditional updates.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Coin         int       `json:"coin"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
