package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two caller populations. Citizens browse schemes and
// submit applications; admins create schemes and review applications.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleAdmin
}

// Account is the authentication record for one login identity.
//
// Invariants:
//   - LoginIdentity is unique across all accounts
//   - Role is immutable after creation
//   - Accounts are never deleted
type Account struct {
	ID            uuid.UUID `json:"id"`
	LoginIdentity string    `json:"-"`
	PhoneNumber   string    `json:"phone_number"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

// Profile is the role-specific display record linked 1:1 to an Account.
// A phone number may appear once per role.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"username"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// LoginIdentity derives the unique login identity for a phone number and
// role. The derivations are distinct per role so the same phone number can
// register once as a citizen and once as an admin.
func LoginIdentity(role Role, phoneNumber string) string {
	if role == RoleAdmin {
		return fmt.Sprintf("admin_%s@scheme.gov.in", phoneNumber)
	}
	return fmt.Sprintf("%s@scheme.gov.in", phoneNumber)
}
