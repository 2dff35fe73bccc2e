package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/observability"
	"github.com/noah-isme/claims-api/internal/repository"
)

var csvHeader = []string{
	"Claim ID", "Lecturer", "Module", "Claim Date", "Hours Worked",
	"Total Amount", "Status", "Submitted Date", "Approved By", "Approved Date",
}

// ReportService produces read-only aggregations and CSV exports over claims.
type ReportService interface {
	Generate(ctx context.Context, actor Actor, req dto.ReportRequest) (dto.ReportResponse, error)
	ExportCSV(ctx context.Context, actor Actor, req dto.ReportRequest) (dto.CSVExport, error)
}

type reportService struct {
	claims    repository.ClaimRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReportService constructs the reporting service.
func NewReportService(claims repository.ClaimRepository, validate *validator.Validate, logger zerolog.Logger) ReportService {
	return &reportService{
		claims:    claims,
		validator: validate,
		logger:    logger.With().Str("component", "report_service").Logger(),
		now:       time.Now,
	}
}

func (s *reportService) Generate(ctx context.Context, actor Actor, req dto.ReportRequest) (dto.ReportResponse, error) {
	claims, err := s.selectClaims(ctx, actor, req)
	if err != nil {
		return dto.ReportResponse{}, err
	}

	response := dto.ReportResponse{
		Title:       reportTitle(req.ReportType),
		GeneratedAt: s.now(),
		Summary:     summarize(claims),
		Lines:       reportLines(claims),
	}

	switch req.ReportType {
	case dto.ReportTypeMonthlySummary:
		response.Groups = groupByMonth(claims)
	case dto.ReportTypeLecturerPerformance:
		response.Groups = groupByLecturer(claims)
	}

	observability.ReportsGenerated().WithLabelValues("structured").Inc()
	return response, nil
}

func (s *reportService) ExportCSV(ctx context.Context, actor Actor, req dto.ReportRequest) (dto.CSVExport, error) {
	claims, err := s.selectClaims(ctx, actor, req)
	if err != nil {
		return dto.CSVExport{}, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return dto.CSVExport{}, err
	}

	for _, line := range reportLines(claims) {
		approvedAt := "N/A"
		if line.ApprovedAt != nil {
			approvedAt = line.ApprovedAt.Format("2006-01-02 15:04")
		}
		record := []string{
			strconv.FormatUint(uint64(line.ClaimID), 10),
			line.LecturerName,
			line.ModuleCode,
			line.ClaimDate,
			line.HoursWorked.String(),
			line.TotalAmount.String(),
			line.Status,
			line.SubmittedAt.Format("2006-01-02 15:04"),
			line.ApprovedBy,
			approvedAt,
		}
		if err := writer.Write(record); err != nil {
			return dto.CSVExport{}, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return dto.CSVExport{}, err
	}

	observability.ReportsGenerated().WithLabelValues("csv").Inc()
	return dto.CSVExport{
		FileName: "ClaimsReport_" + s.now().Format("20060102150405") + ".csv",
		Data:     buf.Bytes(),
	}, nil
}

func (s *reportService) selectClaims(ctx context.Context, actor Actor, req dto.ReportRequest) ([]models.Claim, error) {
	if actor.Role != models.RoleCoordinator && actor.Role != models.RoleManager {
		return nil, ErrRoleNotAllowed
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, err
	}

	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, err
	}

	return s.claims.ListByDateRange(ctx, start, end, req.StatusFilter)
}

func reportTitle(reportType string) string {
	switch reportType {
	case dto.ReportTypeMonthlySummary:
		return "Monthly Claims Summary Report"
	case dto.ReportTypeLecturerPerformance:
		return "Lecturer Performance Report"
	default:
		return "Claims Detail Report"
	}
}

func summarize(claims []models.Claim) dto.ReportSummary {
	summary := dto.ReportSummary{
		TotalAmount:    decimal.Zero,
		ApprovedAmount: decimal.Zero,
	}

	lecturers := map[uint]struct{}{}
	for _, claim := range claims {
		summary.TotalClaims++
		summary.TotalAmount = summary.TotalAmount.Add(claim.TotalAmount)
		lecturers[claim.LecturerID] = struct{}{}

		switch claim.Status {
		case models.ClaimStatusPending:
			summary.PendingClaims++
		case models.ClaimStatusApproved:
			summary.ApprovedClaims++
			summary.ApprovedAmount = summary.ApprovedAmount.Add(claim.TotalAmount)
		case models.ClaimStatusRejected:
			summary.RejectedClaims++
		}
	}

	summary.TotalLecturers = len(lecturers)
	return summary
}

func reportLines(claims []models.Claim) []dto.ReportLine {
	lines := make([]dto.ReportLine, 0, len(claims))
	for _, claim := range claims {
		approvedBy := "N/A"
		if claim.Approver != nil && claim.Approver.ID != 0 {
			approvedBy = claim.Approver.FullName
		}
		lines = append(lines, dto.ReportLine{
			ClaimID:      claim.ID,
			LecturerName: claim.Lecturer.FullName,
			ModuleCode:   claim.Module.Code,
			ClaimDate:    claim.ClaimDate.Format("2006-01-02"),
			HoursWorked:  claim.HoursWorked,
			TotalAmount:  claim.TotalAmount,
			Status:       claim.Status,
			SubmittedAt:  claim.SubmittedAt,
			ApprovedBy:   approvedBy,
			ApprovedAt:   claim.ApprovedAt,
		})
	}
	return lines
}

func groupByMonth(claims []models.Claim) []dto.ReportGroup {
	groups := map[string]*dto.ReportGroup{}
	for _, claim := range claims {
		key := claim.ClaimDate.Format("2006-01")
		group, ok := groups[key]
		if !ok {
			group = &dto.ReportGroup{
				Key:         key,
				Label:       claim.ClaimDate.Format("January 2006"),
				TotalHours:  decimal.Zero,
				TotalAmount: decimal.Zero,
			}
			groups[key] = group
		}
		group.ClaimsCount++
		group.TotalHours = group.TotalHours.Add(claim.HoursWorked)
		group.TotalAmount = group.TotalAmount.Add(claim.TotalAmount)
	}
	return sortedGroups(groups)
}

func groupByLecturer(claims []models.Claim) []dto.ReportGroup {
	groups := map[string]*dto.ReportGroup{}
	for _, claim := range claims {
		key := claim.Lecturer.Username
		group, ok := groups[key]
		if !ok {
			group = &dto.ReportGroup{
				Key:         key,
				Label:       claim.Lecturer.FullName,
				TotalHours:  decimal.Zero,
				TotalAmount: decimal.Zero,
			}
			groups[key] = group
		}
		group.ClaimsCount++
		group.TotalHours = group.TotalHours.Add(claim.HoursWorked)
		group.TotalAmount = group.TotalAmount.Add(claim.TotalAmount)
	}
	return sortedGroups(groups)
}

func sortedGroups(groups map[string]*dto.ReportGroup) []dto.ReportGroup {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]dto.ReportGroup, 0, len(keys))
	for _, key := range keys {
		result = append(result, *groups[key])
	}
	return result
}
