package ports

import (
	"context"
	"io"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload glue.
type DocumentIngestor interface {
	Upload(ctx context.Context, projectID, uploaderID, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error)
}

// AnalysisService is the inbound contract for triggering document analysis.
// The bool result reports whether an existing result was reused instead of
// recomputed.
type AnalysisService interface {
	RequestAnalysis(ctx context.Context, documentID, requesterID string) (*domain.AnalysisResult, bool, error)
}

// ChatService is the inbound contract for the project chat assistant.
type ChatService interface {
	Ask(ctx context.Context, projectID, userID, question string) (*domain.ChatAnswer, error)
	History(ctx context.Context, projectID, userID string) ([]domain.ChatTurn, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// AnalysisReader is the inbound read model for persisted analysis results.
type AnalysisReader interface {
	GetByDocumentID(ctx context.Context, documentID string) (*domain.AnalysisResult, error)
}
