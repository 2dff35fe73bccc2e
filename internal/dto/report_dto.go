package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report types supported by the report generator.
const (
	ReportTypeMonthlySummary      = "monthly_summary"
	ReportTypeLecturerPerformance = "lecturer_performance"
	ReportTypeClaimsDetail        = "claims_detail"
)

// ReportRequest selects the claims included in a report or CSV export.
type ReportRequest struct {
	StartDate    string `json:"start_date" query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" query:"end_date" validate:"required,datetime=2006-01-02"`
	StatusFilter string `json:"status_filter" query:"status_filter" validate:"omitempty,oneof=pending approved rejected revision_requested"`
	ReportType   string `json:"report_type" query:"report_type" validate:"omitempty,oneof=monthly_summary lecturer_performance claims_detail"`
}

// ReportLine is one claim row of a generated report.
type ReportLine struct {
	ClaimID      uint            `json:"claim_id"`
	LecturerName string          `json:"lecturer_name"`
	ModuleCode   string          `json:"module_code"`
	ClaimDate    string          `json:"claim_date"`
	HoursWorked  decimal.Decimal `json:"hours_worked"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	ApprovedBy   string          `json:"approved_by"`
	ApprovedAt   *time.Time      `json:"approved_at"`
}

// ReportSummary aggregates the claims selected by a report.
type ReportSummary struct {
	TotalClaims    int             `json:"total_claims"`
	PendingClaims  int             `json:"pending_claims"`
	ApprovedClaims int             `json:"approved_claims"`
	RejectedClaims int             `json:"rejected_claims"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	TotalLecturers int             `json:"total_lecturers"`
}

// ReportGroup is a per-lecturer or per-month aggregation row.
type ReportGroup struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	ClaimsCount int             `json:"claims_count"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ReportResponse is the structured result of report generation.
type ReportResponse struct {
	Title       string        `json:"title"`
	GeneratedAt time.Time     `json:"generated_at"`
	Summary     ReportSummary `json:"summary"`
	Groups      []ReportGroup `json:"groups,omitempty"`
	Lines       []ReportLine  `json:"lines"`
}

// CSVExport pairs rendered CSV bytes with the download filename.
type CSVExport struct {
	FileName string
	Data     []byte
}
