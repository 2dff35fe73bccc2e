package models

import "time"

// SupportingDocument associates an uploaded file with a claim. FileName keeps
// the human-readable original name; FilePath is the generated storage name.
type SupportingDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClaimID    uint      `gorm:"not null;index" json:"claim_id"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FilePath   string    `gorm:"size:500;not null" json:"file_path"`
	FileSize   int64     `gorm:"not null" json:"file_size"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`

	Claim Claim `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"-"`
}
