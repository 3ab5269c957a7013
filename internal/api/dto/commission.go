package dto

import (
	"time"

	"github.com/lettercounsel/lettercounsel/internal/domain/coupon"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/shopspring/decimal"
)

type CommissionResponse struct {
	ID               string                 `json:"id"`
	SubscriptionID   string                 `json:"subscription_id"`
	CouponCode       string                 `json:"coupon_code"`
	Amount           decimal.Decimal        `json:"amount"`
	Rate             decimal.Decimal        `json:"rate"`
	CommissionStatus types.CommissionStatus `json:"commission_status"`
	CreatedAt        time.Time              `json:"created_at"`
}

type ListCommissionsResponse struct {
	Items []*CommissionResponse `json:"items"`
	Total decimal.Decimal       `json:"total"`
}

func NewListCommissionsResponse(commissions []*coupon.Commission) *ListCommissionsResponse {
	items := make([]*CommissionResponse, 0, len(commissions))
	total := decimal.Zero
	for _, c := range commissions {
		items = append(items, &CommissionResponse{
			ID:               c.ID,
			SubscriptionID:   c.SubscriptionID,
			CouponCode:       c.CouponCode,
			Amount:           c.Amount,
			Rate:             c.Rate,
			CommissionStatus: c.CommissionStatus,
			CreatedAt:        c.CreatedAt,
		})
		total = total.Add(c.Amount)
	}
	return &ListCommissionsResponse{Items: items, Total: total}
}
