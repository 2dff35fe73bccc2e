package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions.
const (
	AuditActionCreated = "Created"
	AuditActionUpdated = "Updated"
	AuditActionDeleted = "Deleted"
)

// Entity names recorded in audit entries.
const (
	AuditTableUser     = "User"
	AuditTableModule   = "Module"
	AuditTableClaim    = "Claim"
	AuditTableDocument = "SupportingDocument"
)

// SystemActorID is recorded when a mutation has no identifiable actor.
// Anonymous writes are attributed rather than dropped.
const SystemActorID uint = 1

// AuditLog is an immutable record of one mutation. OldValues/NewValues hold
// the flat "Field: value; " rendering; Changes keeps the structured diff.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Action    string         `gorm:"size:50;not null" json:"action"`
	TableName string         `gorm:"size:50;not null" json:"table_name"`
	RecordID  uint           `gorm:"not null" json:"record_id"`
	OldValues string         `gorm:"type:text" json:"old_values"`
	NewValues string         `gorm:"type:text" json:"new_values"`
	Changes   datatypes.JSON `gorm:"type:json" json:"changes"`
	ChangedBy uint           `gorm:"not null" json:"changed_by"`
	ChangedAt time.Time      `gorm:"not null;index" json:"changed_at"`
	IPAddress string         `gorm:"size:45" json:"ip_address"`

	User User `gorm:"foreignKey:ChangedBy;constraint:OnDelete:RESTRICT" json:"-"`
}
