package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/models"
)

// auditListCap bounds how many entries one listing can return.
const auditListCap = 1000

// AuditLogFilter narrows audit trail queries.
type AuditLogFilter struct {
	Start  *time.Time
	End    *time.Time
	Action string
}

// AuditLogRepository reads the append-only audit trail. Writes happen inside
// the entity repositories' transactions; there is no standalone update or
// delete path.
type AuditLogRepository interface {
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).Preload("User")

	if filter.Start != nil {
		query = query.Where("changed_at >= ?", *filter.Start)
	}

	if filter.End != nil {
		query = query.Where("changed_at <= ?", *filter.End)
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var entries []models.AuditLog
	if err := query.Order("changed_at DESC").Limit(auditListCap).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
