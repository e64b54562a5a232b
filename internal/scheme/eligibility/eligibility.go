// Package eligibility evaluates a scheme's yes/no questions against a
// citizen's answers. The verdict is advisory: it never blocks an
// application, which keeps self-assessment and submission independent.
package eligibility

import (
	"schemeportal/internal/scheme/models"
	dErrors "schemeportal/pkg/domain-errors"
)

// Evaluate returns true iff every criterion is answered true. An empty
// criteria list is vacuously eligible. The answers map is keyed by criterion
// index and must contain exactly one entry per criterion; the UI should
// prevent incomplete submissions, but this function is the single source of
// truth for the rule and enforces it regardless.
func Evaluate(criteria []models.Criterion, answers map[int]bool) (bool, error) {
	if len(criteria) == 0 {
		return true, nil
	}
	if len(answers) != len(criteria) {
		return false, dErrors.New(dErrors.CodeValidation, "incomplete answers: one answer required per question")
	}
	for i := range criteria {
		answer, ok := answers[i]
		if !ok {
			return false, dErrors.New(dErrors.CodeValidation, "incomplete answers: one answer required per question")
		}
		if !answer {
			return false, nil
		}
	}
	return true, nil
}
