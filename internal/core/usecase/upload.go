package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkrashin/document-insight/internal/core/domain"
	"github.com/mkrashin/document-insight/internal/core/ports"
)

// UploadDocumentUseCase is the upload glue around the analysis core: it
// stores the file, creates the metadata row with status=uploaded, and leaves
// analysis to an explicit trigger.
type UploadDocumentUseCase struct {
	docs     ports.DocumentRepository
	projects ports.ProjectRepository
	storage  ports.ObjectStorage
}

func NewUploadDocumentUseCase(
	docs ports.DocumentRepository,
	projects ports.ProjectRepository,
	storage ports.ObjectStorage,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		docs:     docs,
		projects: projects,
		storage:  storage,
	}
}

func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	projectID, uploaderID, filename, mimeType string,
	size int64,
	body io.Reader,
) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	if strings.TrimSpace(uploaderID) == "" {
		return nil, domain.WrapError(domain.ErrAccessDenied, "upload document", errors.New("uploader id is required"))
	}
	ok, err := uc.projects.HasAccess(ctx, projectID, uploaderID)
	if err != nil {
		return nil, fmt.Errorf("check project access: %w", err)
	}
	if !ok {
		return nil, domain.WrapError(
			domain.ErrAccessDenied,
			"upload document",
			fmt.Errorf("user %s has no access to project %s", uploaderID, projectID),
		)
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		ProjectID:   projectID,
		UploaderID:  uploaderID,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		SizeBytes:   size,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}
	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
