package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/repository"
)

func newReportFixture(t *testing.T, name string) (*gorm.DB, ReportService) {
	t.Helper()
	db := openServiceDB(t, name)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReportService(repository.NewClaimRepository(db), validate, zerolog.Nop())
	return db, svc
}

func seedReportClaims(t *testing.T, db *gorm.DB) {
	t.Helper()
	seedUser(t, db, 1, models.RoleLecturer, "Smith, John")
	seedUser(t, db, 2, models.RoleLecturer, "Jane Brown")
	seedUser(t, db, 5, models.RoleCoordinator, "Carol Reviewer")

	module := models.Module{Code: "PROG6212", Name: "PROG6212 - Custom Module", HourlyRate: decimal.NewFromInt(250), IsActive: true}
	require.NoError(t, db.Create(&module).Error)

	reviewer := uint(5)
	approvedAt := time.Date(2026, 8, 10, 14, 30, 0, 0, time.UTC)
	claims := []models.Claim{
		{
			LecturerID: 1, ModuleID: module.ID,
			ClaimDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			HoursWorked: decimal.NewFromInt(8), TotalAmount: decimal.NewFromInt(2000),
			Status:      models.ClaimStatusApproved,
			SubmittedAt: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC),
			ApprovedBy:  &reviewer, ApprovedAt: &approvedAt,
		},
		{
			LecturerID: 2, ModuleID: module.ID,
			ClaimDate:   time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
			HoursWorked: decimal.NewFromInt(4), TotalAmount: decimal.NewFromInt(1000),
			Status:      models.ClaimStatusPending,
			SubmittedAt: time.Date(2026, 8, 6, 9, 0, 0, 0, time.UTC),
		},
		{
			LecturerID: 1, ModuleID: module.ID,
			ClaimDate:   time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
			HoursWorked: decimal.NewFromInt(2), TotalAmount: decimal.NewFromInt(500),
			Status:      models.ClaimStatusRejected,
			SubmittedAt: time.Date(2026, 9, 4, 9, 0, 0, 0, time.UTC),
		},
	}
	for i := range claims {
		require.NoError(t, db.Create(&claims[i]).Error)
	}
}

func TestReportServiceGenerateSummaryAndGroups(t *testing.T) {
	db, svc := newReportFixture(t, "report_generate")
	seedReportClaims(t, db)

	reviewer := Actor{ID: 5, Role: models.RoleCoordinator}

	_, err := svc.Generate(context.Background(), Actor{ID: 1, Role: models.RoleLecturer}, dto.ReportRequest{
		StartDate: "2026-08-01", EndDate: "2026-09-30",
	})
	require.ErrorIs(t, err, ErrRoleNotAllowed)

	report, err := svc.Generate(context.Background(), reviewer, dto.ReportRequest{
		StartDate:  "2026-08-01",
		EndDate:    "2026-09-30",
		ReportType: dto.ReportTypeMonthlySummary,
	})
	require.NoError(t, err)
	require.Equal(t, "Monthly Claims Summary Report", report.Title)
	require.Equal(t, 3, report.Summary.TotalClaims)
	require.Equal(t, 1, report.Summary.ApprovedClaims)
	require.Equal(t, 1, report.Summary.PendingClaims)
	require.Equal(t, 1, report.Summary.RejectedClaims)
	require.Equal(t, 2, report.Summary.TotalLecturers)
	require.True(t, report.Summary.TotalAmount.Equal(decimal.NewFromInt(3500)))
	require.True(t, report.Summary.ApprovedAmount.Equal(decimal.NewFromInt(2000)))

	require.Len(t, report.Groups, 2)
	require.Equal(t, "2026-08", report.Groups[0].Key)
	require.Equal(t, "August 2026", report.Groups[0].Label)
	require.Equal(t, 2, report.Groups[0].ClaimsCount)
	require.True(t, report.Groups[0].TotalAmount.Equal(decimal.NewFromInt(3000)))

	// Status filter narrows the selection.
	approvedOnly, err := svc.Generate(context.Background(), reviewer, dto.ReportRequest{
		StartDate:    "2026-08-01",
		EndDate:      "2026-09-30",
		StatusFilter: models.ClaimStatusApproved,
	})
	require.NoError(t, err)
	require.Equal(t, 1, approvedOnly.Summary.TotalClaims)

	perLecturer, err := svc.Generate(context.Background(), reviewer, dto.ReportRequest{
		StartDate:  "2026-08-01",
		EndDate:    "2026-09-30",
		ReportType: dto.ReportTypeLecturerPerformance,
	})
	require.NoError(t, err)
	require.Len(t, perLecturer.Groups, 2)
	require.Equal(t, "user1", perLecturer.Groups[0].Key)
	require.Equal(t, 2, perLecturer.Groups[0].ClaimsCount)
}

func TestReportServiceExportCSV(t *testing.T) {
	db, svc := newReportFixture(t, "report_csv")
	seedReportClaims(t, db)

	rs := svc.(*reportService)
	rs.now = func() time.Time { return time.Date(2026, 9, 15, 10, 30, 45, 0, time.UTC) }

	export, err := svc.ExportCSV(context.Background(), Actor{ID: 5, Role: models.RoleManager}, dto.ReportRequest{
		StartDate: "2026-08-01",
		EndDate:   "2026-09-30",
	})
	require.NoError(t, err)
	require.Equal(t, "ClaimsReport_20260915103045.csv", export.FileName)

	records, err := csv.NewReader(bytes.NewReader(export.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus three claim rows")
	require.Equal(t, csvHeader, records[0])

	// Rows come back newest submission first.
	require.Equal(t, "Smith, John", records[1][1], "comma in names must survive the CSV round trip")
	require.Equal(t, "rejected", records[1][6])
	require.Equal(t, "N/A", records[1][8])

	require.Equal(t, "2000", records[3][5])
	require.Equal(t, "Carol Reviewer", records[3][8])
	require.Equal(t, "2026-08-10 14:30", records[3][9])
}

func TestReportServiceValidatesRange(t *testing.T) {
	_, svc := newReportFixture(t, "report_validate")

	_, err := svc.Generate(context.Background(), Actor{ID: 5, Role: models.RoleManager}, dto.ReportRequest{
		StartDate: "01-08-2026",
		EndDate:   "2026-09-30",
	})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}
