package models

import (
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "schemeportal/pkg/domain-errors"
)

// SignUpRequest carries a citizen or admin registration.
type SignUpRequest struct {
	Role        Role   `json:"-"`
	DisplayName string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	SecretKey   string `json:"secret_key,omitempty"`
}

func (r *SignUpRequest) Normalize() {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

func (r *SignUpRequest) Validate() error {
	if !r.Role.Valid() {
		return dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	if !govalidator.StringLength(r.DisplayName, "1", "100") {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if !govalidator.IsNumeric(r.PhoneNumber) || !govalidator.StringLength(r.PhoneNumber, "10", "15") {
		return dErrors.New(dErrors.CodeValidation, "phone number must be 10-15 digits")
	}
	if !govalidator.StringLength(r.Password, "6", "72") {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	return nil
}

// SignInRequest carries a login attempt for either role.
type SignInRequest struct {
	Role        Role   `json:"-"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

func (r *SignInRequest) Normalize() {
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

func (r *SignInRequest) Validate() error {
	if !r.Role.Valid() {
		return dErrors.New(dErrors.CodeValidation, "unknown role")
	}
	if r.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "phone number is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}
