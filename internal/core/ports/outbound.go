package ports

import (
	"context"
	"io"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	ListAnalyzedByProject(ctx context.Context, projectID string) ([]domain.Document, error)
}

// AnalysisRepository persists write-once analysis results. SaveResult must
// insert the result and move the owning document to status=analyzed in one
// transaction.
type AnalysisRepository interface {
	SaveResult(ctx context.Context, result *domain.AnalysisResult) error
	GetByDocumentID(ctx context.Context, documentID string) (*domain.AnalysisResult, error)
	ListByDocumentIDs(ctx context.Context, documentIDs []string) (map[string]domain.AnalysisResult, error)
}

// DocumentLocker serializes analysis runs for a single document.
type DocumentLocker interface {
	WithDocumentLock(ctx context.Context, documentID string, fn func(context.Context) error) error
}

// ChatRepository persists the append-only chat history.
type ChatRepository interface {
	Append(ctx context.Context, turn *domain.ChatTurn) error
	ListRecent(ctx context.Context, projectID string, limit int) ([]domain.ChatTurn, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.ChatTurn, error)
}

// ProjectRepository reads project rows owned by external CRUD glue.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	HasAccess(ctx context.Context, projectID, userID string) (bool, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// DocumentIntelligence extracts structured content from a stored document.
type DocumentIntelligence interface {
	Analyze(ctx context.Context, storagePath, modelID string) (domain.ExtractedData, error)
}

// LanguageModel issues one stateless completion call.
type LanguageModel interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// EventPublisher emits best-effort notifications after a successful analysis.
type EventPublisher interface {
	PublishDocumentAnalyzed(ctx context.Context, documentID string) error
}
