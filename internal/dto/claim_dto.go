package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/claims-api/internal/models"
)

// SubmitClaimRequest is the payload for submitting a new claim. The module is
// resolved (or created) from the code and rate supplied here.
type SubmitClaimRequest struct {
	ModuleCode  string  `json:"module_code" validate:"required,max=20"`
	HourlyRate  float64 `json:"hourly_rate" validate:"required,gt=0,lte=1000"`
	ClaimDate   string  `json:"claim_date" validate:"required,datetime=2006-01-02"`
	HoursWorked float64 `json:"hours_worked" validate:"required,gte=0.5,lte=100"`
	Description string  `json:"description" validate:"max=500"`
}

// DecideClaimRequest records a reviewer decision on a pending claim.
type DecideClaimRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected revision_requested"`
	Notes  string `json:"notes" validate:"max=500"`
}

// ClaimFilter narrows a lecturer's claim listing.
type ClaimFilter struct {
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected revision_requested"`
	Sort   string `query:"sort" validate:"omitempty,oneof=newest oldest amount_high amount_low"`
}

// ClaimResponse is returned to API clients when viewing claims.
type ClaimResponse struct {
	ID          uint               `json:"id"`
	LecturerID  uint               `json:"lecturer_id"`
	ClaimDate   string             `json:"claim_date"`
	HoursWorked decimal.Decimal    `json:"hours_worked"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	SubmittedAt time.Time          `json:"submitted_at"`
	ApprovedBy  *uint              `json:"approved_by"`
	ApprovedAt  *time.Time         `json:"approved_at"`
	Module      ModuleLite         `json:"module"`
	Lecturer    UserLite           `json:"lecturer"`
	Approver    *UserLite          `json:"approver,omitempty"`
	Documents   []DocumentResponse `json:"documents"`
}

// ModuleLite summarizes a module inside claim responses.
type ModuleLite struct {
	ID         uint            `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// UserLite summarizes a user without exposing credentials.
type UserLite struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// NewClaimResponse converts a Claim model into a DTO.
func NewClaimResponse(model models.Claim) ClaimResponse {
	response := ClaimResponse{
		ID:          model.ID,
		LecturerID:  model.LecturerID,
		ClaimDate:   model.ClaimDate.Format("2006-01-02"),
		HoursWorked: model.HoursWorked,
		TotalAmount: model.TotalAmount,
		Description: model.Description,
		Status:      model.Status,
		SubmittedAt: model.SubmittedAt,
		ApprovedBy:  model.ApprovedBy,
		ApprovedAt:  model.ApprovedAt,
		Documents:   make([]DocumentResponse, 0, len(model.Documents)),
	}

	if model.Module.ID != 0 {
		response.Module = ModuleLite{
			ID:         model.Module.ID,
			Code:       model.Module.Code,
			Name:       model.Module.Name,
			HourlyRate: model.Module.HourlyRate,
		}
	}

	if model.Lecturer.ID != 0 {
		response.Lecturer = NewUserLite(model.Lecturer)
	}

	if model.Approver != nil && model.Approver.ID != 0 {
		approver := NewUserLite(*model.Approver)
		response.Approver = &approver
	}

	for _, doc := range model.Documents {
		response.Documents = append(response.Documents, NewDocumentResponse(doc))
	}

	return response
}

// NewClaimResponseSlice converts claim models into DTOs.
func NewClaimResponseSlice(claims []models.Claim) []ClaimResponse {
	responses := make([]ClaimResponse, 0, len(claims))
	for _, claim := range claims {
		responses = append(responses, NewClaimResponse(claim))
	}
	return responses
}

// NewUserLite converts a User into its summary form.
func NewUserLite(user models.User) UserLite {
	return UserLite{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
	}
}
