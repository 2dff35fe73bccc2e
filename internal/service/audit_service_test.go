package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/repository"
)

func TestNewAuditEntryDefaults(t *testing.T) {
	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	changes := []models.FieldChange{
		{Field: "Status", Old: "pending", New: "approved"},
		{Field: "ApprovedBy", New: "5"},
	}

	entry := newAuditEntry(models.AuditActionUpdated, models.AuditTableClaim, changes, Actor{}, at)
	require.Equal(t, models.SystemActorID, entry.ChangedBy)
	require.Equal(t, "Unknown", entry.IPAddress)
	require.Equal(t, "Status: pending; ", entry.OldValues)
	require.Equal(t, "Status: approved; ApprovedBy: 5; ", entry.NewValues)
	require.JSONEq(t, `[{"field":"Status","old":"pending","new":"approved"},{"field":"ApprovedBy","new":"5"}]`, string(entry.Changes))

	entry = newAuditEntry(models.AuditActionUpdated, models.AuditTableClaim, changes, Actor{ID: 7, IPAddress: " 10.0.0.5 "}, at)
	require.Equal(t, uint(7), entry.ChangedBy)
	require.Equal(t, "10.0.0.5", entry.IPAddress)
}

func TestAuditServiceListFilters(t *testing.T) {
	db := openServiceDB(t, "audit_list")
	seedUser(t, db, 7, models.RoleManager, "Mark Manager")

	entries := []models.AuditLog{
		{Action: models.AuditActionCreated, TableName: models.AuditTableClaim, RecordID: 1, ChangedBy: 7, ChangedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), IPAddress: "10.0.0.1"},
		{Action: models.AuditActionUpdated, TableName: models.AuditTableClaim, RecordID: 1, ChangedBy: 7, ChangedAt: time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC), IPAddress: "10.0.0.1"},
		{Action: models.AuditActionDeleted, TableName: models.AuditTableClaim, RecordID: 2, ChangedBy: 99, ChangedAt: time.Date(2026, 8, 9, 23, 30, 0, 0, time.UTC), IPAddress: "10.0.0.2"},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuditService(repository.NewAuditLogRepository(db), validate, zerolog.Nop())

	all, err := svc.List(context.Background(), dto.AuditListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, models.AuditActionDeleted, all[0].Action, "newest entry first")
	require.Equal(t, "Mark Manager", all[1].UserName)
	require.Equal(t, "Unknown User", all[0].UserName, "missing account falls back")

	updatedOnly, err := svc.List(context.Background(), dto.AuditListRequest{Action: models.AuditActionUpdated})
	require.NoError(t, err)
	require.Len(t, updatedOnly, 1)

	// The end date is inclusive of the whole day.
	ranged, err := svc.List(context.Background(), dto.AuditListRequest{StartDate: "2026-08-02", EndDate: "2026-08-09"})
	require.NoError(t, err)
	require.Len(t, ranged, 2)

	_, err = svc.List(context.Background(), dto.AuditListRequest{Action: "Exploded"})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}
