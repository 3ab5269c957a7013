package validator

import (
	"strings"
	"unicode"

	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

const maxIntakeFieldLength = 8000

// intakeRequiredFields lists the required intake fields per letter type.
// Common fields apply to every type.
var intakeCommonFields = []string{
	"sender_name",
	"recipient_name",
	"issue_description",
	"desired_outcome",
}

var intakeRequiredFields = map[types.LetterType][]string{
	types.LetterTypeDemand:            {"amount_owed"},
	types.LetterTypeCeaseAndDesist:    {"conduct_description"},
	types.LetterTypeContractDispute:   {"contract_date"},
	types.LetterTypeEmploymentDispute: {"employer_name"},
	types.LetterTypeLandlordTenant:    {"property_address"},
}

// ValidateIntake checks the intake form for a letter type and returns the
// sanitized copy. It runs before any allowance deduction so a rejected form
// never costs the subscriber a credit.
func ValidateIntake(letterType types.LetterType, intake map[string]string) (map[string]string, error) {
	if !letterType.Valid() {
		return nil, ierr.NewError("unknown letter type").
			WithHintf("Letter type %q is not supported", letterType).
			Mark(ierr.ErrValidation)
	}

	sanitized := make(map[string]string, len(intake))
	for key, value := range intake {
		sanitized[key] = sanitizeField(value)
	}

	var missing []string
	required := append(append([]string{}, intakeCommonFields...), intakeRequiredFields[letterType]...)
	for _, field := range required {
		if strings.TrimSpace(sanitized[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, ierr.NewError("intake data incomplete").
			WithHint("Required intake fields are missing").
			WithReportableDetails(map[string]interface{}{
				"missing_fields": missing,
				"letter_type":    letterType,
			}).
			Mark(ierr.ErrValidation)
	}

	for field, value := range sanitized {
		if len(value) > maxIntakeFieldLength {
			return nil, ierr.NewError("intake field too long").
				WithHintf("Field %q exceeds %d characters", field, maxIntakeFieldLength).
				Mark(ierr.ErrValidation)
		}
	}

	return sanitized, nil
}

// sanitizeField trims whitespace and strips non-printable runes.
func sanitizeField(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(cleaned)
}
