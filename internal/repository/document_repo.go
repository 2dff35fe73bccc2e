package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/models"
)

// DocumentRepository defines persistence operations for supporting documents.
type DocumentRepository interface {
	GetByID(ctx context.Context, id uint) (models.SupportingDocument, error)
	ListByClaim(ctx context.Context, claimID uint) ([]models.SupportingDocument, error)
	Create(ctx context.Context, document *models.SupportingDocument, audit *models.AuditLog) error
	Delete(ctx context.Context, id uint, audit *models.AuditLog) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository instantiates the repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (models.SupportingDocument, error) {
	var document models.SupportingDocument
	if err := r.db.WithContext(ctx).First(&document, id).Error; err != nil {
		return models.SupportingDocument{}, err
	}
	return document, nil
}

func (r *documentRepository) ListByClaim(ctx context.Context, claimID uint) ([]models.SupportingDocument, error) {
	var documents []models.SupportingDocument
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("uploaded_at ASC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *documentRepository) Create(ctx context.Context, document *models.SupportingDocument, audit *models.AuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(document).Error; err != nil {
			return err
		}
		audit.RecordID = document.ID
		return tx.Create(audit).Error
	})
}

func (r *documentRepository) Delete(ctx context.Context, id uint, audit *models.AuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.SupportingDocument{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		audit.RecordID = id
		return tx.Create(audit).Error
	})
}
