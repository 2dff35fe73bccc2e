package dto

import (
	"time"

	"github.com/noah-isme/claims-api/internal/models"
)

// DocumentResponse describes a stored supporting document.
type DocumentResponse struct {
	ID         uint      `json:"id"`
	ClaimID    uint      `json:"claim_id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentContent carries the bytes of a fetched document alongside the
// metadata a download response needs.
type DocumentContent struct {
	FileName    string
	ContentType string
	Data        []byte
}

// NewDocumentResponse converts a SupportingDocument model into a DTO.
func NewDocumentResponse(model models.SupportingDocument) DocumentResponse {
	return DocumentResponse{
		ID:         model.ID,
		ClaimID:    model.ClaimID,
		FileName:   model.FileName,
		FileSize:   model.FileSize,
		UploadedAt: model.UploadedAt,
	}
}
