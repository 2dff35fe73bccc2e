package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/models"
)

// ErrClaimNotPending is returned when a guarded mutation finds the claim
// already decided (or deleted) at commit time. Exactly one of two concurrent
// deciders observes the pending row; the other gets this error.
var ErrClaimNotPending = errors.New("claim is no longer pending")

// ClaimListFilter narrows a lecturer's claim listing.
type ClaimListFilter struct {
	LecturerID uint
	Status     string
	Sort       string
}

// ClaimRepository defines persistence operations for claims. Every mutation
// takes its audit entry and runs both writes in one transaction; an audit
// failure rolls the mutation back.
type ClaimRepository interface {
	GetByID(ctx context.Context, id uint) (models.Claim, error)
	ListByLecturer(ctx context.Context, filter ClaimListFilter) ([]models.Claim, error)
	ListPending(ctx context.Context, sort string) ([]models.Claim, error)
	ListByDateRange(ctx context.Context, start, end time.Time, status string) ([]models.Claim, error)
	Create(ctx context.Context, claim *models.Claim, audit *models.AuditLog) error
	UpdatePending(ctx context.Context, id uint, values map[string]interface{}, audit *models.AuditLog) error
	DeletePending(ctx context.Context, id uint, audit *models.AuditLog) error
}

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository instantiates a GORM-backed repository.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Claim{}).
		Preload("Module").
		Preload("Lecturer").
		Preload("Approver").
		Preload("Documents")
}

func (r *claimRepository) GetByID(ctx context.Context, id uint) (models.Claim, error) {
	var claim models.Claim
	if err := r.baseQuery(ctx).First(&claim, id).Error; err != nil {
		return models.Claim{}, err
	}
	return claim, nil
}

func (r *claimRepository) ListByLecturer(ctx context.Context, filter ClaimListFilter) ([]models.Claim, error) {
	query := r.baseQuery(ctx).Where("lecturer_id = ?", filter.LecturerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var claims []models.Claim
	if err := query.Order(normalizeClaimSort(filter.Sort, "submitted_at DESC")).Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) ListPending(ctx context.Context, sort string) ([]models.Claim, error) {
	var claims []models.Claim
	// Review queue defaults to oldest-first so early submissions are seen first.
	err := r.baseQuery(ctx).
		Where("status = ?", models.ClaimStatusPending).
		Order(normalizeClaimSort(sort, "submitted_at ASC")).
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) ListByDateRange(ctx context.Context, start, end time.Time, status string) ([]models.Claim, error) {
	query := r.baseQuery(ctx).Where("claim_date >= ? AND claim_date <= ?", start, end)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var claims []models.Claim
	if err := query.Order("submitted_at DESC").Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) Create(ctx context.Context, claim *models.Claim, audit *models.AuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(claim).Error; err != nil {
			return err
		}
		audit.RecordID = claim.ID
		return tx.Create(audit).Error
	})
}

// UpdatePending applies values to the claim only if it is still pending at
// commit time. The WHERE guard is the optimistic check that serializes
// concurrent decisions.
func (r *claimRepository) UpdatePending(ctx context.Context, id uint, values map[string]interface{}, audit *models.AuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Claim{}).
			Where("id = ? AND status = ?", id, models.ClaimStatusPending).
			Updates(values)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pendingGuardError(tx, id)
		}
		audit.RecordID = id
		return tx.Create(audit).Error
	})
}

func (r *claimRepository) DeletePending(ctx context.Context, id uint, audit *models.AuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", id, models.ClaimStatusPending).
			Delete(&models.Claim{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pendingGuardError(tx, id)
		}
		if err := tx.Where("claim_id = ?", id).Delete(&models.SupportingDocument{}).Error; err != nil {
			return err
		}
		audit.RecordID = id
		return tx.Create(audit).Error
	})
}

func pendingGuardError(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Claim{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrClaimNotPending
}

func normalizeClaimSort(sort, fallback string) string {
	switch sort {
	case "newest":
		return "submitted_at DESC"
	case "oldest":
		return "submitted_at ASC"
	case "amount_high":
		return "total_amount DESC"
	case "amount_low":
		return "total_amount ASC"
	default:
		return fallback
	}
}
