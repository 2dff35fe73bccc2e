package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/claims-api/internal/models"
)

func TestModuleRepositoryFindOrCreateConverges(t *testing.T) {
	db := setupTestDB(t, "repo_module_upsert")
	repo := NewModuleRepository(db)

	candidate := models.Module{
		Code:       "PROG6212",
		Name:       "PROG6212 - Custom Module",
		HourlyRate: decimal.NewFromInt(250),
		IsActive:   true,
	}

	moduleAudit := func() *models.AuditLog {
		return &models.AuditLog{
			Action:    models.AuditActionCreated,
			TableName: models.AuditTableModule,
			ChangedBy: 1,
			ChangedAt: time.Now().UTC(),
			IPAddress: "10.0.0.5",
		}
	}

	first, err := repo.FindOrCreate(context.Background(), candidate, moduleAudit())
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// A repeat with a different rate resolves to the existing row untouched.
	repeat := candidate
	repeat.HourlyRate = decimal.NewFromInt(999)
	second, err := repo.FindOrCreate(context.Background(), repeat, moduleAudit())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.True(t, second.HourlyRate.Equal(decimal.NewFromInt(250)))

	// Only the winning insert audits module creation.
	var audits int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("table_name = ?", models.AuditTableModule).Count(&audits).Error)
	require.Equal(t, int64(1), audits)
}

func TestModuleRepositoryListActive(t *testing.T) {
	db := setupTestDB(t, "repo_module_list")
	repo := NewModuleRepository(db)

	require.NoError(t, db.Create(&models.Module{Code: "WEB6211", Name: "Web Development", HourlyRate: decimal.NewFromInt(200), IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Module{Code: "CLDV6211", Name: "Cloud Development", HourlyRate: decimal.NewFromInt(300), IsActive: false}).Error)
	require.NoError(t, db.Create(&models.Module{Code: "PROG6212", Name: "Programming 2B", HourlyRate: decimal.NewFromInt(250), IsActive: true}).Error)

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "PROG6212", active[0].Code, "ordered by code")
	require.Equal(t, "WEB6211", active[1].Code)
}
