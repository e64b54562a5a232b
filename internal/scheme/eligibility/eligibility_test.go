package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemeportal/internal/scheme/models"
	dErrors "schemeportal/pkg/domain-errors"
)

func criteria(questions ...string) []models.Criterion {
	cs := make([]models.Criterion, 0, len(questions))
	for _, q := range questions {
		cs = append(cs, models.Criterion{Question: q})
	}
	return cs
}

func TestEvaluate_NoCriteriaIsEligible(t *testing.T) {
	eligible, err := Evaluate(nil, nil)
	require.NoError(t, err)
	assert.True(t, eligible)

	eligible, err = Evaluate([]models.Criterion{}, map[int]bool{})
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestEvaluate_AllYes(t *testing.T) {
	cs := criteria("Are you a resident?", "Is your income below the threshold?")
	eligible, err := Evaluate(cs, map[int]bool{0: true, 1: true})
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestEvaluate_AnyNoMeansIneligible(t *testing.T) {
	cs := criteria("Are you a resident?", "Is your income below the threshold?")
	eligible, err := Evaluate(cs, map[int]bool{0: true, 1: false})
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestEvaluate_MissingAnswerFails(t *testing.T) {
	cs := criteria("Are you a resident?", "Is your income below the threshold?")
	_, err := Evaluate(cs, map[int]bool{0: true})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestEvaluate_WrongIndexFails(t *testing.T) {
	cs := criteria("Are you a resident?")
	// Right count, wrong key.
	_, err := Evaluate(cs, map[int]bool{5: true})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestEvaluate_ExtraAnswersFail(t *testing.T) {
	cs := criteria("Are you a resident?")
	_, err := Evaluate(cs, map[int]bool{0: true, 1: true})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
