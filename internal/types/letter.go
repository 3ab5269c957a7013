package types

// LetterStatus is the lifecycle status of a letter. Status changes go
// exclusively through the review service's transition executor.
type LetterStatus string

const (
	LetterStatusDraft         LetterStatus = "draft"
	LetterStatusGenerating    LetterStatus = "generating"
	LetterStatusPendingReview LetterStatus = "pending_review"
	LetterStatusUnderReview   LetterStatus = "under_review"
	LetterStatusApproved      LetterStatus = "approved"
	LetterStatusRejected      LetterStatus = "rejected"
	LetterStatusCompleted     LetterStatus = "completed"
	LetterStatusFailed        LetterStatus = "failed"
)

// LetterStatuses is the closed set of valid letter statuses.
var LetterStatuses = []LetterStatus{
	LetterStatusDraft,
	LetterStatusGenerating,
	LetterStatusPendingReview,
	LetterStatusUnderReview,
	LetterStatusApproved,
	LetterStatusRejected,
	LetterStatusCompleted,
	LetterStatusFailed,
}

func (s LetterStatus) Valid() bool {
	for _, status := range LetterStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s LetterStatus) String() string {
	return string(s)
}

// DeletableLetterStatuses are the statuses in which the owner may delete a
// letter.
var DeletableLetterStatuses = []LetterStatus{
	LetterStatusDraft,
	LetterStatusRejected,
	LetterStatusFailed,
}

func (s LetterStatus) IsDeletable() bool {
	for _, status := range DeletableLetterStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status.
// failed keeps a retry edge back to draft, so completed is the only
// terminal status in the graph.
func (s LetterStatus) IsTerminal() bool {
	return s == LetterStatusCompleted
}

// LetterType identifies the intake template a letter was requested from.
type LetterType string

const (
	LetterTypeDemand            LetterType = "demand_letter"
	LetterTypeCeaseAndDesist    LetterType = "cease_and_desist"
	LetterTypeContractDispute   LetterType = "contract_dispute"
	LetterTypeEmploymentDispute LetterType = "employment_dispute"
	LetterTypeLandlordTenant    LetterType = "landlord_tenant"
)

var LetterTypes = []LetterType{
	LetterTypeDemand,
	LetterTypeCeaseAndDesist,
	LetterTypeContractDispute,
	LetterTypeEmploymentDispute,
	LetterTypeLandlordTenant,
}

func (t LetterType) Valid() bool {
	for _, lt := range LetterTypes {
		if t == lt {
			return true
		}
	}
	return false
}

func (t LetterType) String() string {
	return string(t)
}
