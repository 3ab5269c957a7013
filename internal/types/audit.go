package types

// AuditAction names the event recorded in the audit trail. One entry is
// written per state transition or administrative action.
type AuditAction string

const (
	AuditActionLetterCreated     AuditAction = "letter_created"
	AuditActionStatusTransition  AuditAction = "status_transition"
	AuditActionGenerationFailed  AuditAction = "generation_failed"
	AuditActionAllowanceDeducted AuditAction = "allowance_deducted"
	AuditActionAllowanceRefunded AuditAction = "allowance_refunded"
	AuditActionLetterResubmitted AuditAction = "letter_resubmitted"
	AuditActionLetterDeleted     AuditAction = "letter_deleted"
)

func (a AuditAction) String() string {
	return string(a)
}
