package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/models"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Module{}, &models.Claim{}, &models.SupportingDocument{}, &models.AuditLog{}))
	return db
}

func seedClaimDeps(t *testing.T, db *gorm.DB) models.Module {
	t.Helper()
	user := models.User{ID: 1, Username: "jsmith", PasswordHash: "x", Email: "jsmith@example.ac.za", Role: models.RoleLecturer, FullName: "John Smith", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	module := models.Module{Code: "PROG6212", Name: "PROG6212 - Custom Module", HourlyRate: decimal.NewFromInt(250), IsActive: true}
	require.NoError(t, db.Create(&module).Error)
	return module
}

func testAudit(action string) *models.AuditLog {
	return &models.AuditLog{
		Action:    action,
		TableName: models.AuditTableClaim,
		ChangedBy: 1,
		ChangedAt: time.Now().UTC(),
		IPAddress: "10.0.0.5",
	}
}

func pendingClaim(moduleID uint, hours int64, submittedAt time.Time) models.Claim {
	amount := decimal.NewFromInt(hours).Mul(decimal.NewFromInt(250))
	return models.Claim{
		LecturerID:  1,
		ModuleID:    moduleID,
		ClaimDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		HoursWorked: decimal.NewFromInt(hours),
		TotalAmount: amount,
		Status:      models.ClaimStatusPending,
		SubmittedAt: submittedAt,
	}
}

func TestClaimRepositoryCreateWritesAuditAtomically(t *testing.T) {
	db := setupTestDB(t, "repo_claim_create")
	module := seedClaimDeps(t, db)
	repo := NewClaimRepository(db)

	claim := pendingClaim(module.ID, 8, time.Now().UTC())
	audit := testAudit(models.AuditActionCreated)
	require.NoError(t, repo.Create(context.Background(), &claim, audit))
	require.NotZero(t, claim.ID)
	require.Equal(t, claim.ID, audit.RecordID)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("record_id = ?", claim.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	loaded, err := repo.GetByID(context.Background(), claim.ID)
	require.NoError(t, err)
	require.Equal(t, "PROG6212", loaded.Module.Code)
	require.Equal(t, "John Smith", loaded.Lecturer.FullName)
}

func TestClaimRepositoryPendingGuard(t *testing.T) {
	db := setupTestDB(t, "repo_claim_guard")
	module := seedClaimDeps(t, db)
	repo := NewClaimRepository(db)

	claim := pendingClaim(module.ID, 8, time.Now().UTC())
	require.NoError(t, repo.Create(context.Background(), &claim, testAudit(models.AuditActionCreated)))

	values := map[string]interface{}{"status": models.ClaimStatusApproved}
	require.NoError(t, repo.UpdatePending(context.Background(), claim.ID, values, testAudit(models.AuditActionUpdated)))

	// A second guarded update must lose: the row is no longer pending.
	err := repo.UpdatePending(context.Background(), claim.ID, map[string]interface{}{"status": models.ClaimStatusRejected}, testAudit(models.AuditActionUpdated))
	require.ErrorIs(t, err, ErrClaimNotPending)

	err = repo.UpdatePending(context.Background(), claim.ID+99, values, testAudit(models.AuditActionUpdated))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.DeletePending(context.Background(), claim.ID, testAudit(models.AuditActionDeleted))
	require.ErrorIs(t, err, ErrClaimNotPending)

	// The losing attempts must not have written audit rows.
	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	loaded, err := repo.GetByID(context.Background(), claim.ID)
	require.NoError(t, err)
	require.Equal(t, models.ClaimStatusApproved, loaded.Status)
}

func TestClaimRepositoryDeletePendingRemovesDocuments(t *testing.T) {
	db := setupTestDB(t, "repo_claim_delete")
	module := seedClaimDeps(t, db)
	repo := NewClaimRepository(db)

	claim := pendingClaim(module.ID, 8, time.Now().UTC())
	require.NoError(t, repo.Create(context.Background(), &claim, testAudit(models.AuditActionCreated)))
	require.NoError(t, db.Create(&models.SupportingDocument{ClaimID: claim.ID, FileName: "a.pdf", FilePath: "x.pdf", FileSize: 10}).Error)

	require.NoError(t, repo.DeletePending(context.Background(), claim.ID, testAudit(models.AuditActionDeleted)))

	var docs int64
	require.NoError(t, db.Model(&models.SupportingDocument{}).Where("claim_id = ?", claim.ID).Count(&docs).Error)
	require.Zero(t, docs)

	_, err := repo.GetByID(context.Background(), claim.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClaimRepositorySortsAndFilters(t *testing.T) {
	db := setupTestDB(t, "repo_claim_sorts")
	module := seedClaimDeps(t, db)
	repo := NewClaimRepository(db)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, hours := range []int64{2, 8, 4} {
		claim := pendingClaim(module.ID, hours, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(context.Background(), &claim, testAudit(models.AuditActionCreated)))
	}

	newest, err := repo.ListByLecturer(context.Background(), ClaimListFilter{LecturerID: 1})
	require.NoError(t, err)
	require.Len(t, newest, 3)
	require.True(t, newest[0].SubmittedAt.After(newest[2].SubmittedAt))

	amountHigh, err := repo.ListByLecturer(context.Background(), ClaimListFilter{LecturerID: 1, Sort: "amount_high"})
	require.NoError(t, err)
	require.True(t, amountHigh[0].TotalAmount.Equal(decimal.NewFromInt(2000)))

	queue, err := repo.ListPending(context.Background(), "")
	require.NoError(t, err)
	require.True(t, queue[0].SubmittedAt.Before(queue[1].SubmittedAt), "pending queue defaults to oldest first")

	ranged, err := repo.ListByDateRange(context.Background(),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		models.ClaimStatusPending)
	require.NoError(t, err)
	require.Len(t, ranged, 3)
}
