package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/repository"
)

// Actor identifies who is performing an operation. It is passed explicitly
// into every service call; services never read identity from ambient state.
type Actor struct {
	ID        uint
	Role      string
	IPAddress string
}

// newAuditEntry builds the audit row for one mutation. Old/new values are the
// flat "Field: value; " rendering of the structured diff; the diff itself is
// kept as JSON. An unknown actor is attributed to the system account and a
// missing source address becomes "Unknown" rather than blocking the write.
func newAuditEntry(action, tableName string, changes []models.FieldChange, actor Actor, at time.Time) *models.AuditLog {
	changedBy := actor.ID
	if changedBy == 0 {
		changedBy = models.SystemActorID
	}

	ip := strings.TrimSpace(actor.IPAddress)
	if ip == "" {
		ip = "Unknown"
	}

	encoded, err := json.Marshal(changes)
	if err != nil {
		encoded = []byte("[]")
	}

	return &models.AuditLog{
		Action:    action,
		TableName: tableName,
		OldValues: renderOldValues(changes),
		NewValues: renderNewValues(changes),
		Changes:   encoded,
		ChangedBy: changedBy,
		ChangedAt: at,
		IPAddress: ip,
	}
}

func renderOldValues(changes []models.FieldChange) string {
	var b strings.Builder
	for _, change := range changes {
		if change.Old == "" {
			continue
		}
		b.WriteString(change.Field)
		b.WriteString(": ")
		b.WriteString(change.Old)
		b.WriteString("; ")
	}
	return b.String()
}

func renderNewValues(changes []models.FieldChange) string {
	var b strings.Builder
	for _, change := range changes {
		if change.New == "" {
			continue
		}
		b.WriteString(change.Field)
		b.WriteString(": ")
		b.WriteString(change.New)
		b.WriteString("; ")
	}
	return b.String()
}

// AuditService exposes read access to the audit trail.
type AuditService interface {
	List(ctx context.Context, req dto.AuditListRequest) ([]dto.AuditLogResponse, error)
}

type auditService struct {
	repo      repository.AuditLogRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuditService constructs the audit trail service.
func NewAuditService(repo repository.AuditLogRepository, validate *validator.Validate, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) List(ctx context.Context, req dto.AuditListRequest) ([]dto.AuditLogResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	filter := repository.AuditLogFilter{Action: req.Action}

	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err == nil {
			filter.Start = &start
		}
	}

	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err == nil {
			// Inclusive end-of-day bound.
			end = end.Add(24*time.Hour - time.Nanosecond)
			filter.End = &end
		}
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		userName := "Unknown User"
		if entry.User.ID != 0 {
			userName = entry.User.FullName
		}
		responses = append(responses, dto.AuditLogResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			TableName: entry.TableName,
			RecordID:  entry.RecordID,
			OldValues: entry.OldValues,
			NewValues: entry.NewValues,
			Changes:   json.RawMessage(entry.Changes),
			ChangedBy: entry.ChangedBy,
			UserName:  userName,
			ChangedAt: entry.ChangedAt,
			IPAddress: entry.IPAddress,
		})
	}

	return responses, nil
}
