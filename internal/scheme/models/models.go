package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	dErrors "schemeportal/pkg/domain-errors"
)

// Criterion is one yes/no eligibility question. Order matters for display
// only; evaluation treats the list as an unordered AND.
type Criterion struct {
	Question string `json:"question"`
}

// Scheme is a welfare program definition. The catalog is append-only: name
// is unique across all schemes, active or not, and there is no update or
// delete operation.
type Scheme struct {
	ID                  uuid.UUID   `json:"id"`
	Name                string      `json:"name"`
	Category            string      `json:"category"`
	Description         string      `json:"description"`
	Benefits            string      `json:"benefits"`
	RequiredDocuments   []string    `json:"required_documents"`
	ImportantNotes      string      `json:"important_notes"`
	ApplicationFields   []string    `json:"application_fields"`
	EligibilityCriteria []Criterion `json:"eligibility_criteria"`
	IsActive            bool        `json:"is_active"`
	CreatedAt           time.Time   `json:"created_at"`
}

// CreateSchemeRequest carries an admin's new scheme definition.
type CreateSchemeRequest struct {
	Name                string      `json:"name"`
	Category            string      `json:"category"`
	Description         string      `json:"description"`
	Benefits            string      `json:"benefits"`
	RequiredDocuments   []string    `json:"required_documents"`
	ImportantNotes      string      `json:"important_notes"`
	ApplicationFields   []string    `json:"application_fields"`
	EligibilityCriteria []Criterion `json:"eligibility_criteria"`
}

func (r *CreateSchemeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	for i := range r.EligibilityCriteria {
		r.EligibilityCriteria[i].Question = strings.TrimSpace(r.EligibilityCriteria[i].Question)
	}
}

func (r *CreateSchemeRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "200") {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	if r.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if r.Benefits == "" {
		return dErrors.New(dErrors.CodeValidation, "benefits is required")
	}
	for _, c := range r.EligibilityCriteria {
		if c.Question == "" {
			return dErrors.New(dErrors.CodeValidation, "eligibility questions cannot be blank")
		}
	}
	return nil
}
