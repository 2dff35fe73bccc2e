package dto

import (
	"encoding/json"
	"time"
)

// AuditListRequest filters the audit log listing.
type AuditListRequest struct {
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Action    string `query:"action" validate:"omitempty,oneof=Created Updated Deleted"`
}

// AuditLogResponse serializes one audit trail entry.
type AuditLogResponse struct {
	ID        uint            `json:"id"`
	Action    string          `json:"action"`
	TableName string          `json:"table_name"`
	RecordID  uint            `json:"record_id"`
	OldValues string          `json:"old_values"`
	NewValues string          `json:"new_values"`
	Changes   json.RawMessage `json:"changes"`
	ChangedBy uint            `json:"changed_by"`
	UserName  string          `json:"user_name"`
	ChangedAt time.Time       `json:"changed_at"`
	IPAddress string          `json:"ip_address"`
}
