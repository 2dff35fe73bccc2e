package dto

import "github.com/shopspring/decimal"

// DashboardResponse is the per-role dashboard payload. Lecturers see their own
// numbers; coordinators and managers see the institution-wide view plus the
// oldest pending claims awaiting review.
type DashboardResponse struct {
	TotalClaims    int             `json:"total_claims"`
	PendingClaims  int             `json:"pending_claims"`
	ApprovedClaims int             `json:"approved_claims"`
	RejectedClaims int             `json:"rejected_claims"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	TotalLecturers int             `json:"total_lecturers,omitempty"`
	RecentClaims   []ClaimResponse `json:"recent_claims"`
	MonthlyTrend   []MonthlyTrend  `json:"monthly_trend"`
}

// MonthlyTrend is one month of claim volume for the trend chart.
type MonthlyTrend struct {
	Month          string          `json:"month"`
	ClaimsCount    int             `json:"claims_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
}
