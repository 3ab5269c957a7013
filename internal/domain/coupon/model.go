package coupon

import (
	"context"

	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/shopspring/decimal"
)

// Coupon is an employee referral code. DiscountPercent of 100 routes the
// checkout through the free activation path.
type Coupon struct {
	Code       string `json:"code"`
	EmployeeID string `json:"employee_id"`

	DiscountPercent int             `json:"discount_percent"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	UsageCount      int             `json:"usage_count"`

	types.BaseModel
}

// IsFullDiscount reports whether checkout with this coupon requires no payment.
func (c *Coupon) IsFullDiscount() bool {
	return c.DiscountPercent >= 100
}

// DiscountedPrice applies the coupon to a list price.
func (c *Coupon) DiscountedPrice(price decimal.Decimal) decimal.Decimal {
	if c.DiscountPercent <= 0 {
		return price
	}
	factor := decimal.NewFromInt(int64(100 - c.DiscountPercent)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(2)
}

// Commission is an employee's referral earning for one subscription. At
// most one commission exists per subscription.
type Commission struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	SubscriptionID string `json:"subscription_id"`
	CouponCode     string `json:"coupon_code"`

	// Amount is Rate applied to the final (post-discount) price.
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`

	CommissionStatus types.CommissionStatus `json:"commission_status"`

	types.BaseModel
}

// NewCommission computes the commission for an activated subscription.
func NewCommission(ctx context.Context, c *Coupon, subscriptionID string, finalPrice decimal.Decimal) *Commission {
	return &Commission{
		ID:               types.GenerateUUIDWithPrefix(types.UUIDPrefixCommission),
		EmployeeID:       c.EmployeeID,
		SubscriptionID:   subscriptionID,
		CouponCode:       c.Code,
		Amount:           finalPrice.Mul(c.CommissionRate).Round(2),
		Rate:             c.CommissionRate,
		CommissionStatus: types.CommissionStatusPending,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}
