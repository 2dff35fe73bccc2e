package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/observability"
	"github.com/noah-isme/claims-api/internal/repository"
)

var (
	// ErrClaimNotFound indicates the claim does not exist.
	ErrClaimNotFound = errors.New("claim not found")
	// ErrRoleNotAllowed indicates the actor's role may not perform the operation.
	ErrRoleNotAllowed = errors.New("role not allowed for this operation")
	// ErrNotClaimOwner indicates the actor is not the claim's submitter.
	ErrNotClaimOwner = errors.New("claim belongs to another lecturer")
	// ErrClaimLocked indicates the claim left the pending state and is closed
	// to lecturer edits and deletion.
	ErrClaimLocked = errors.New("claim is no longer pending")
	// ErrClaimConflict indicates a concurrent decision won; the claim was
	// already decided when this operation committed.
	ErrClaimConflict = errors.New("claim was decided concurrently")
)

// ClaimService orchestrates the claim lifecycle: submission, lecturer edits,
// reviewer decisions, deletion and the read projections over claims.
type ClaimService interface {
	Submit(ctx context.Context, actor Actor, payload dto.SubmitClaimRequest) (dto.ClaimResponse, error)
	Edit(ctx context.Context, actor Actor, claimID uint, payload dto.SubmitClaimRequest) (dto.ClaimResponse, error)
	Decide(ctx context.Context, actor Actor, claimID uint, payload dto.DecideClaimRequest) (dto.ClaimResponse, error)
	Delete(ctx context.Context, actor Actor, claimID uint) error
	ListForLecturer(ctx context.Context, actor Actor, filter dto.ClaimFilter) ([]dto.ClaimResponse, error)
	ListPending(ctx context.Context, actor Actor, sort string) ([]dto.ClaimResponse, error)
	GetByID(ctx context.Context, actor Actor, claimID uint) (dto.ClaimResponse, error)
}

type claimService struct {
	claims    repository.ClaimRepository
	modules   repository.ModuleRepository
	storage   Storage
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewClaimService constructs the claim lifecycle service.
func NewClaimService(claims repository.ClaimRepository, modules repository.ModuleRepository, storage Storage, validate *validator.Validate, logger zerolog.Logger) ClaimService {
	return &claimService{
		claims:    claims,
		modules:   modules,
		storage:   storage,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "claim_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/claims-api/internal/service/claim"),
		now:       time.Now,
	}
}

func (s *claimService) Submit(ctx context.Context, actor Actor, payload dto.SubmitClaimRequest) (dto.ClaimResponse, error) {
	ctx, span := s.tracer.Start(ctx, "claim.submit")
	defer span.End()
	span.SetAttributes(attribute.Int64("claim.lecturer_id", int64(actor.ID)))

	if actor.Role != models.RoleLecturer {
		span.SetStatus(codes.Error, "role_not_allowed")
		return dto.ClaimResponse{}, ErrRoleNotAllowed
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ClaimResponse{}, err
	}

	claimDate, err := time.Parse("2006-01-02", payload.ClaimDate)
	if err != nil {
		return dto.ClaimResponse{}, err
	}

	now := s.now()
	hours := decimal.NewFromFloat(payload.HoursWorked)
	rate := decimal.NewFromFloat(payload.HourlyRate)

	module, err := s.resolveModule(ctx, actor, payload.ModuleCode, rate, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "module_resolution_failed")
		return dto.ClaimResponse{}, err
	}

	claim := models.Claim{
		LecturerID:  actor.ID,
		ModuleID:    module.ID,
		ClaimDate:   claimDate,
		HoursWorked: hours,
		TotalAmount: hours.Mul(rate),
		Description: s.sanitizer.Sanitize(payload.Description),
		Status:      models.ClaimStatusPending,
		SubmittedAt: now,
	}

	audit := newAuditEntry(models.AuditActionCreated, models.AuditTableClaim, models.ClaimCreated(claim), actor, now)
	if err := s.claims.Create(ctx, &claim, audit); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim_create_failed")
		return dto.ClaimResponse{}, err
	}

	observability.ClaimsSubmitted().Inc()
	s.logger.Info().Uint("claim_id", claim.ID).Str("module_code", module.Code).Msg("claim submitted")

	created, err := s.claims.GetByID(ctx, claim.ID)
	if err != nil {
		return dto.ClaimResponse{}, err
	}

	return dto.NewClaimResponse(created), nil
}

func (s *claimService) Edit(ctx context.Context, actor Actor, claimID uint, payload dto.SubmitClaimRequest) (dto.ClaimResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClaimResponse{}, err
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClaimResponse{}, ErrClaimNotFound
		}
		return dto.ClaimResponse{}, err
	}

	if claim.LecturerID != actor.ID {
		return dto.ClaimResponse{}, ErrNotClaimOwner
	}

	if !claim.IsPending() {
		return dto.ClaimResponse{}, ErrClaimLocked
	}

	claimDate, err := time.Parse("2006-01-02", payload.ClaimDate)
	if err != nil {
		return dto.ClaimResponse{}, err
	}

	now := s.now()
	hours := decimal.NewFromFloat(payload.HoursWorked)
	rate := decimal.NewFromFloat(payload.HourlyRate)

	module, err := s.resolveModule(ctx, actor, payload.ModuleCode, rate, now)
	if err != nil {
		return dto.ClaimResponse{}, err
	}

	updated := claim
	updated.ModuleID = module.ID
	updated.ClaimDate = claimDate
	updated.HoursWorked = hours
	updated.TotalAmount = hours.Mul(rate)
	updated.Description = s.sanitizer.Sanitize(payload.Description)
	// An edit counts as a re-submission.
	updated.SubmittedAt = now

	values := map[string]interface{}{
		"module_id":    updated.ModuleID,
		"claim_date":   updated.ClaimDate,
		"hours_worked": updated.HoursWorked,
		"total_amount": updated.TotalAmount,
		"description":  updated.Description,
		"submitted_at": updated.SubmittedAt,
	}

	audit := newAuditEntry(models.AuditActionUpdated, models.AuditTableClaim, models.DiffClaims(claim, updated), actor, now)
	if err := s.claims.UpdatePending(ctx, claimID, values, audit); err != nil {
		return dto.ClaimResponse{}, s.mapPendingGuard(err, ErrClaimLocked)
	}

	s.logger.Info().Uint("claim_id", claimID).Msg("claim updated by lecturer")

	reloaded, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return dto.ClaimResponse{}, err
	}

	return dto.NewClaimResponse(reloaded), nil
}

func (s *claimService) Decide(ctx context.Context, actor Actor, claimID uint, payload dto.DecideClaimRequest) (dto.ClaimResponse, error) {
	ctx, span := s.tracer.Start(ctx, "claim.decide")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("claim.id", int64(claimID)),
		attribute.Int64("claim.reviewer_id", int64(actor.ID)),
		attribute.String("claim.decision", payload.Status),
	)

	if actor.Role != models.RoleCoordinator && actor.Role != models.RoleManager {
		span.SetStatus(codes.Error, "role_not_allowed")
		return dto.ClaimResponse{}, ErrRoleNotAllowed
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ClaimResponse{}, err
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "claim_not_found")
			return dto.ClaimResponse{}, ErrClaimNotFound
		}
		return dto.ClaimResponse{}, err
	}

	if !claim.IsPending() {
		span.SetStatus(codes.Error, "claim_not_pending")
		return dto.ClaimResponse{}, ErrClaimConflict
	}

	now := s.now()
	reviewer := actor.ID

	updated := claim
	updated.Status = payload.Status
	updated.ApprovedBy = &reviewer
	updated.ApprovedAt = &now
	updated.Description = appendDecisionNotes(claim.Description, payload.Status, s.sanitizer.Sanitize(payload.Notes))

	values := map[string]interface{}{
		"status":      updated.Status,
		"approved_by": updated.ApprovedBy,
		"approved_at": updated.ApprovedAt,
		"description": updated.Description,
	}

	audit := newAuditEntry(models.AuditActionUpdated, models.AuditTableClaim, models.DiffClaims(claim, updated), actor, now)
	if err := s.claims.UpdatePending(ctx, claimID, values, audit); err != nil {
		err = s.mapPendingGuard(err, ErrClaimConflict)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decision_failed")
		return dto.ClaimResponse{}, err
	}

	observability.ClaimDecisions().WithLabelValues(payload.Status).Inc()
	s.logger.Info().
		Uint("claim_id", claimID).
		Str("status", payload.Status).
		Uint("reviewer_id", actor.ID).
		Msg("claim decided")

	reloaded, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return dto.ClaimResponse{}, err
	}

	return dto.NewClaimResponse(reloaded), nil
}

func (s *claimService) Delete(ctx context.Context, actor Actor, claimID uint) error {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClaimNotFound
		}
		return err
	}

	if claim.LecturerID != actor.ID {
		return ErrNotClaimOwner
	}

	if !claim.IsPending() {
		return ErrClaimLocked
	}

	// Remove stored bytes first. A storage failure is logged, not fatal: the
	// metadata deletion still proceeds.
	for _, doc := range claim.Documents {
		if err := s.storage.Remove(ctx, doc.FilePath); err != nil {
			s.logger.Warn().Err(err).Str("file_path", doc.FilePath).Msg("failed to remove stored document")
		}
	}

	audit := newAuditEntry(models.AuditActionDeleted, models.AuditTableClaim, models.ClaimDeleted(claim), actor, s.now())
	if err := s.claims.DeletePending(ctx, claimID, audit); err != nil {
		return s.mapPendingGuard(err, ErrClaimLocked)
	}

	s.logger.Info().Uint("claim_id", claimID).Msg("claim deleted by lecturer")
	return nil
}

func (s *claimService) ListForLecturer(ctx context.Context, actor Actor, filter dto.ClaimFilter) ([]dto.ClaimResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	claims, err := s.claims.ListByLecturer(ctx, repository.ClaimListFilter{
		LecturerID: actor.ID,
		Status:     filter.Status,
		Sort:       filter.Sort,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewClaimResponseSlice(claims), nil
}

func (s *claimService) ListPending(ctx context.Context, actor Actor, sort string) ([]dto.ClaimResponse, error) {
	if actor.Role != models.RoleCoordinator && actor.Role != models.RoleManager {
		return nil, ErrRoleNotAllowed
	}

	claims, err := s.claims.ListPending(ctx, sort)
	if err != nil {
		return nil, err
	}

	return dto.NewClaimResponseSlice(claims), nil
}

func (s *claimService) GetByID(ctx context.Context, actor Actor, claimID uint) (dto.ClaimResponse, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClaimResponse{}, ErrClaimNotFound
		}
		return dto.ClaimResponse{}, err
	}

	reviewer := actor.Role == models.RoleCoordinator || actor.Role == models.RoleManager
	if !reviewer && claim.LecturerID != actor.ID {
		return dto.ClaimResponse{}, ErrNotClaimOwner
	}

	return dto.NewClaimResponse(claim), nil
}

// resolveModule finds the module by code or creates it with the submitted
// rate. Codes are uppercased so lookups are case-insensitive.
func (s *claimService) resolveModule(ctx context.Context, actor Actor, code string, rate decimal.Decimal, now time.Time) (models.Module, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	candidate := models.Module{
		Code:       normalized,
		Name:       normalized + " - Custom Module",
		HourlyRate: rate,
		IsActive:   true,
		CreatedAt:  now,
	}

	audit := newAuditEntry(models.AuditActionCreated, models.AuditTableModule, models.ModuleCreated(candidate), actor, now)
	return s.modules.FindOrCreate(ctx, candidate, audit)
}

func (s *claimService) mapPendingGuard(err error, lockedErr error) error {
	switch {
	case errors.Is(err, repository.ErrClaimNotPending):
		return lockedErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrClaimNotFound
	default:
		return err
	}
}

func appendDecisionNotes(description, status, notes string) string {
	if strings.TrimSpace(notes) == "" {
		return description
	}
	tag := strings.ToUpper(strings.ReplaceAll(status, "_", " "))
	return description + "\n\n--- " + tag + " NOTES ---\n" + notes
}
