package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

type uploadDocRepoFake struct {
	created *domain.Document
	err     error
}

func (f *uploadDocRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	copyDoc := *doc
	f.created = &copyDoc
	return nil
}

func (f *uploadDocRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}
func (f *uploadDocRepoFake) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return errors.New("not implemented")
}
func (f *uploadDocRepoFake) ListAnalyzedByProject(context.Context, string) ([]domain.Document, error) {
	return nil, errors.New("not implemented")
}

type uploadStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *uploadStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *uploadStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func TestUploadDocumentSuccess(t *testing.T) {
	docs := &uploadDocRepoFake{}
	storage := &uploadStorageFake{}
	uc := NewUploadDocumentUseCase(docs, &projectAccessFake{allowed: true}, storage)

	doc, err := uc.Upload(context.Background(), "proj-1", "user-1", "balance sheet.pdf", "application/pdf", 5, bytes.NewBufferString("bytes"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected document id")
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected status uploaded, got %s", doc.Status)
	}
	if doc.ProjectID != "proj-1" || doc.UploaderID != "user-1" {
		t.Fatalf("ownership fields not set: %+v", doc)
	}
	if docs.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if !strings.Contains(storage.savedKey, "_balance_sheet.pdf") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if storage.savedBody != "bytes" {
		t.Fatalf("expected saved body, got %s", storage.savedBody)
	}
}

func TestUploadDocumentDeniedWithoutAccess(t *testing.T) {
	storage := &uploadStorageFake{}
	uc := NewUploadDocumentUseCase(&uploadDocRepoFake{}, &projectAccessFake{allowed: false}, storage)

	_, err := uc.Upload(context.Background(), "proj-1", "stranger", "a.pdf", "application/pdf", 1, bytes.NewBufferString("x"))
	if !domain.IsKind(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if storage.savedKey != "" {
		t.Fatalf("denied upload must not store the file")
	}
}
