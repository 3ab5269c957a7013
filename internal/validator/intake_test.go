package validator

import (
	"strings"
	"testing"

	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeIntake() map[string]string {
	return map[string]string{
		"sender_name":       "Jordan Blake",
		"recipient_name":    "Acme Corp",
		"issue_description": "Unpaid invoice",
		"desired_outcome":   "Payment in full",
		"amount_owed":       "1200.00",
	}
}

func TestValidateIntakeComplete(t *testing.T) {
	sanitized, err := ValidateIntake(types.LetterTypeDemand, completeIntake())
	require.NoError(t, err)
	assert.Equal(t, "Jordan Blake", sanitized["sender_name"])
}

func TestValidateIntakeUnknownType(t *testing.T) {
	_, err := ValidateIntake("postcard", completeIntake())
	assert.True(t, ierr.IsValidation(err))
}

func TestValidateIntakeMissingFields(t *testing.T) {
	intake := completeIntake()
	delete(intake, "amount_owed")
	delete(intake, "desired_outcome")

	_, err := ValidateIntake(types.LetterTypeDemand, intake)
	assert.True(t, ierr.IsValidation(err))
}

func TestValidateIntakeWhitespaceOnlyIsMissing(t *testing.T) {
	intake := completeIntake()
	intake["issue_description"] = "   \t  "

	_, err := ValidateIntake(types.LetterTypeDemand, intake)
	assert.True(t, ierr.IsValidation(err))
}

func TestValidateIntakeStripsControlCharacters(t *testing.T) {
	intake := completeIntake()
	intake["sender_name"] = "  Jordan\x00 Blake\x07  "

	sanitized, err := ValidateIntake(types.LetterTypeDemand, intake)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Blake", sanitized["sender_name"])
}

func TestValidateIntakeKeepsNewlines(t *testing.T) {
	intake := completeIntake()
	intake["issue_description"] = "line one\nline two"

	sanitized, err := ValidateIntake(types.LetterTypeDemand, intake)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", sanitized["issue_description"])
}

func TestValidateIntakeFieldTooLong(t *testing.T) {
	intake := completeIntake()
	intake["issue_description"] = strings.Repeat("a", maxIntakeFieldLength+1)

	_, err := ValidateIntake(types.LetterTypeDemand, intake)
	assert.True(t, ierr.IsValidation(err))
}

func TestValidateIntakePerTypeRequirements(t *testing.T) {
	intake := map[string]string{
		"sender_name":       "A",
		"recipient_name":    "B",
		"issue_description": "C",
		"desired_outcome":   "D",
		"property_address":  "12 Main St",
	}

	_, err := ValidateIntake(types.LetterTypeLandlordTenant, intake)
	assert.NoError(t, err)

	_, err = ValidateIntake(types.LetterTypeEmploymentDispute, intake)
	assert.True(t, ierr.IsValidation(err))
}
