package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the application review state.
//
// State machine: created as pending; an admin moves pending to approved or
// rejected. Both outcomes are terminal; there is no re-review, withdrawal,
// or edit.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Application is one citizen's submission against one scheme. At most one
// application exists per (citizen profile, scheme) pair; the store's unique
// index is the arbiter when concurrent submissions race.
type Application struct {
	ID               uuid.UUID         `json:"id"`
	CitizenProfileID uuid.UUID         `json:"citizen_profile_id"`
	SchemeID         uuid.UUID         `json:"scheme_id"`
	Status           Status            `json:"status"`
	Data             map[string]string `json:"application_data"`
	AppliedAt        time.Time         `json:"applied_at"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
	AdminNotes       *string           `json:"admin_notes,omitempty"`
}

// SchemeSummary is the scheme fields joined onto application listings.
type SchemeSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// CitizenSummary is the citizen fields joined onto the admin listing.
type CitizenSummary struct {
	DisplayName string `json:"username"`
	PhoneNumber string `json:"phone_number"`
}

// ApplicationWithScheme is the citizen-facing listing entry.
type ApplicationWithScheme struct {
	Application
	Scheme SchemeSummary `json:"scheme"`
}

// ApplicationDetails is the admin-facing listing entry.
type ApplicationDetails struct {
	Application
	Scheme  SchemeSummary  `json:"scheme"`
	Citizen CitizenSummary `json:"citizen"`
}
