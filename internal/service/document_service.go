package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/observability"
	"github.com/noah-isme/claims-api/internal/repository"
)

// maxDocumentSize bounds a single supporting document upload.
const maxDocumentSize = 10 * 1024 * 1024

var (
	// ErrDocumentNotFound indicates the document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentTooLarge indicates the upload exceeds the 10 MiB limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum allowed size")
	// ErrDocumentTypeNotAllowed indicates a disallowed file extension.
	ErrDocumentTypeNotAllowed = errors.New("document type not allowed")
)

// allowedDocumentExtensions lists acceptable upload types, lowercased.
var allowedDocumentExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".xlsx": {},
	".jpg":  {},
	".png":  {},
}

// documentContentTypes maps stored extensions to download content types.
var documentContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// Storage abstracts where attachment bytes live.
type Storage interface {
	Save(ctx context.Context, name string, reader io.Reader) (string, error)
	Open(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

// DocumentService manages supporting document uploads and downloads.
type DocumentService interface {
	Attach(ctx context.Context, actor Actor, claimID uint, file *multipart.FileHeader) (dto.DocumentResponse, error)
	Remove(ctx context.Context, actor Actor, documentID uint) error
	Fetch(ctx context.Context, actor Actor, documentID uint) (dto.DocumentContent, error)
}

type documentService struct {
	documents repository.DocumentRepository
	claims    repository.ClaimRepository
	storage   Storage
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDocumentService constructs the document attachment service.
func NewDocumentService(documents repository.DocumentRepository, claims repository.ClaimRepository, storage Storage, logger zerolog.Logger) DocumentService {
	return &documentService{
		documents: documents,
		claims:    claims,
		storage:   storage,
		logger:    logger.With().Str("component", "document_service").Logger(),
		now:       time.Now,
	}
}

func (s *documentService) Attach(ctx context.Context, actor Actor, claimID uint, file *multipart.FileHeader) (dto.DocumentResponse, error) {
	if file == nil {
		return dto.DocumentResponse{}, errors.New("file is required")
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrClaimNotFound
		}
		return dto.DocumentResponse{}, err
	}

	if claim.LecturerID != actor.ID {
		return dto.DocumentResponse{}, ErrNotClaimOwner
	}

	if !claim.IsPending() {
		return dto.DocumentResponse{}, ErrClaimLocked
	}

	if file.Size > maxDocumentSize {
		observability.DocumentRejections().WithLabelValues("size").Inc()
		return dto.DocumentResponse{}, ErrDocumentTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedDocumentExtensions[ext]; !ok {
		observability.DocumentRejections().WithLabelValues("type").Inc()
		return dto.DocumentResponse{}, ErrDocumentTypeNotAllowed
	}

	handle, err := file.Open()
	if err != nil {
		return dto.DocumentResponse{}, err
	}
	defer handle.Close()

	// Stored names are generated, collision-free; the original name survives
	// only as metadata.
	storedName := uuid.NewString() + ext
	path, err := s.storage.Save(ctx, storedName, handle)
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	now := s.now()
	document := models.SupportingDocument{
		ClaimID:    claimID,
		FileName:   file.Filename,
		FilePath:   path,
		FileSize:   file.Size,
		UploadedAt: now,
	}

	audit := newAuditEntry(models.AuditActionCreated, models.AuditTableDocument, models.DocumentCreated(document), actor, now)
	if err := s.documents.Create(ctx, &document, audit); err != nil {
		// The record failed; do not leave orphaned bytes behind.
		if removeErr := s.storage.Remove(ctx, path); removeErr != nil {
			s.logger.Warn().Err(removeErr).Str("file_path", path).Msg("failed to clean up stored document")
		}
		return dto.DocumentResponse{}, err
	}

	s.logger.Info().Uint("document_id", document.ID).Uint("claim_id", claimID).Msg("document attached")

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) Remove(ctx context.Context, actor Actor, documentID uint) error {
	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	claim, err := s.claims.GetByID(ctx, document.ClaimID)
	if err != nil {
		return err
	}

	if claim.LecturerID != actor.ID {
		return ErrNotClaimOwner
	}

	// Missing bytes are tolerated; delete is idempotent on the storage side.
	if err := s.storage.Remove(ctx, document.FilePath); err != nil {
		s.logger.Warn().Err(err).Str("file_path", document.FilePath).Msg("failed to remove stored document")
	}

	audit := newAuditEntry(models.AuditActionDeleted, models.AuditTableDocument, models.DocumentDeleted(document), actor, s.now())
	if err := s.documents.Delete(ctx, documentID, audit); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	s.logger.Info().Uint("document_id", documentID).Msg("document removed")
	return nil
}

func (s *documentService) Fetch(ctx context.Context, actor Actor, documentID uint) (dto.DocumentContent, error) {
	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentContent{}, ErrDocumentNotFound
		}
		return dto.DocumentContent{}, err
	}

	claim, err := s.claims.GetByID(ctx, document.ClaimID)
	if err != nil {
		return dto.DocumentContent{}, err
	}

	reviewer := actor.Role == models.RoleCoordinator || actor.Role == models.RoleManager
	if !reviewer && claim.LecturerID != actor.ID {
		return dto.DocumentContent{}, ErrNotClaimOwner
	}

	data, err := s.storage.Open(ctx, document.FilePath)
	if err != nil {
		return dto.DocumentContent{}, err
	}

	return dto.DocumentContent{
		FileName:    document.FileName,
		ContentType: documentContentType(document.FilePath, data),
		Data:        data,
	}, nil
}

// documentContentType resolves the download content type from the stored
// extension, sniffing the bytes only when the extension is unknown.
func documentContentType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if contentType, ok := documentContentTypes[ext]; ok {
		return contentType
	}
	if detected := mimetype.Detect(data); detected != nil {
		return detected.String()
	}
	return "application/octet-stream"
}
