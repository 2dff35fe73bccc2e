package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/claims-api/internal/models"
)

// ModuleRepository defines persistence operations for billable modules.
type ModuleRepository interface {
	// FindOrCreate resolves a module by its (already uppercased) code,
	// inserting it when absent. The insert relies on the unique index rather
	// than a read-then-write check, so concurrent callers converge on one row.
	// The audit entry is written only when this call created the module.
	FindOrCreate(ctx context.Context, module models.Module, audit *models.AuditLog) (models.Module, error)
	GetByCode(ctx context.Context, code string) (models.Module, error)
	ListActive(ctx context.Context) ([]models.Module, error)
}

type moduleRepository struct {
	db *gorm.DB
}

// NewModuleRepository instantiates the repository.
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) FindOrCreate(ctx context.Context, module models.Module, audit *models.AuditLog) (models.Module, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&module)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 && audit != nil {
			audit.RecordID = module.ID
			if err := tx.Create(audit).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Module{}, err
	}

	// Re-read so a lost insert race still returns the winning row.
	return r.GetByCode(ctx, module.Code)
}

func (r *moduleRepository) GetByCode(ctx context.Context, code string) (models.Module, error) {
	var module models.Module
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&module).Error; err != nil {
		return models.Module{}, err
	}
	return module, nil
}

func (r *moduleRepository) ListActive(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("code ASC").Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}
