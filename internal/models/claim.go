package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim statuses. A claim starts pending; the three decision statuses are
// terminal for engine transitions.
const (
	ClaimStatusPending           = "pending"
	ClaimStatusApproved          = "approved"
	ClaimStatusRejected          = "rejected"
	ClaimStatusRevisionRequested = "revision_requested"
)

// Claim is a lecturer's request for payment for hours worked on a module.
// TotalAmount snapshots hours x rate at submission time and is never
// recomputed from the module's current rate.
type Claim struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	LecturerID  uint            `gorm:"not null;index" json:"lecturer_id"`
	ModuleID    uint            `gorm:"not null" json:"module_id"`
	ClaimDate   time.Time       `gorm:"type:date;not null" json:"claim_date"`
	HoursWorked decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"hours_worked"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Description string          `gorm:"size:2000" json:"description"`
	Status      string          `gorm:"size:20;not null;default:pending;index" json:"status"`
	SubmittedAt time.Time       `gorm:"not null" json:"submitted_at"`
	ApprovedBy  *uint           `json:"approved_by"`
	ApprovedAt  *time.Time      `json:"approved_at"`

	Lecturer  User                 `gorm:"foreignKey:LecturerID;constraint:OnDelete:RESTRICT" json:"lecturer"`
	Module    Module               `gorm:"foreignKey:ModuleID;constraint:OnDelete:RESTRICT" json:"module"`
	Approver  *User                `gorm:"foreignKey:ApprovedBy;constraint:OnDelete:RESTRICT" json:"approver,omitempty"`
	Documents []SupportingDocument `gorm:"foreignKey:ClaimID" json:"documents"`
}

// IsPending reports whether the claim is still open to lecturer edits and
// reviewer decisions.
func (c Claim) IsPending() bool {
	return c.Status == ClaimStatusPending
}

// ValidDecision reports whether status names one of the three reviewer outcomes.
func ValidDecision(status string) bool {
	switch status {
	case ClaimStatusApproved, ClaimStatusRejected, ClaimStatusRevisionRequested:
		return true
	default:
		return false
	}
}
