package types

import (
	"github.com/shopspring/decimal"
)

// PlanType identifies a subscription plan.
type PlanType string

const (
	PlanTypeFreeTrial    PlanType = "free_trial"
	PlanTypeMonthlyBasic PlanType = "monthly_basic"
	PlanTypeMonthlyPro   PlanType = "monthly_pro"
	PlanTypeYearlyPro    PlanType = "yearly_pro"
)

var PlanTypes = []PlanType{
	PlanTypeFreeTrial,
	PlanTypeMonthlyBasic,
	PlanTypeMonthlyPro,
	PlanTypeYearlyPro,
}

func (p PlanType) Valid() bool {
	for _, plan := range PlanTypes {
		if p == plan {
			return true
		}
	}
	return false
}

func (p PlanType) String() string {
	return string(p)
}

// Plan describes a purchasable plan: its letter allowance per billing
// period and its list price.
type Plan struct {
	Type             PlanType        `json:"type"`
	DisplayName      string          `json:"display_name"`
	LettersPerPeriod int             `json:"letters_per_period"`
	PeriodDays       int             `json:"period_days"`
	Price            decimal.Decimal `json:"price"`
}

// PlanCatalog is the closed catalog of purchasable plans. free_trial is not
// purchasable: trial eligibility is derived from letter history, not from a
// subscription row.
var PlanCatalog = map[PlanType]Plan{
	PlanTypeMonthlyBasic: {
		Type:             PlanTypeMonthlyBasic,
		DisplayName:      "Basic",
		LettersPerPeriod: 2,
		PeriodDays:       30,
		Price:            decimal.NewFromInt(49),
	},
	PlanTypeMonthlyPro: {
		Type:             PlanTypeMonthlyPro,
		DisplayName:      "Professional",
		LettersPerPeriod: 5,
		PeriodDays:       30,
		Price:            decimal.NewFromInt(99),
	},
	PlanTypeYearlyPro: {
		Type:             PlanTypeYearlyPro,
		DisplayName:      "Professional (Annual)",
		LettersPerPeriod: 60,
		PeriodDays:       365,
		Price:            decimal.NewFromInt(999),
	},
}

// SubscriptionStatus is the lifecycle status of a subscription row.
type SubscriptionStatus string

const (
	// SubscriptionStatusPending is a checkout that has not completed payment.
	// The row retains everything needed to activate on a later webhook retry.
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// TransactionReason classifies allowance balance movements for the audit
// metadata.
type TransactionReason string

const (
	TransactionReasonGeneration       TransactionReason = "letter_generation"
	TransactionReasonGenerationRefund TransactionReason = "generation_refund"
	TransactionReasonPeriodRollover   TransactionReason = "period_rollover"
	TransactionReasonActivation       TransactionReason = "subscription_activation"
)

// CommissionStatus is the payout status of an employee referral commission.
type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "pending"
	CommissionStatusPaid    CommissionStatus = "paid"
)
