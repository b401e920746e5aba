package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkrashin/document-insight/internal/core/domain"
	"github.com/mkrashin/document-insight/internal/core/ports"
)

// AnalyzeDocumentUseCase owns the document status state machine:
// uploaded -> processing -> analyzed|error. Analysis is write-once per
// document; repeat requests return the stored result without touching
// either external service.
type AnalyzeDocumentUseCase struct {
	docs         ports.DocumentRepository
	results      ports.AnalysisRepository
	projects     ports.ProjectRepository
	locker       ports.DocumentLocker
	orchestrator *AnalysisOrchestrator
	events       ports.EventPublisher
}

func NewAnalyzeDocumentUseCase(
	docs ports.DocumentRepository,
	results ports.AnalysisRepository,
	projects ports.ProjectRepository,
	locker ports.DocumentLocker,
	orchestrator *AnalysisOrchestrator,
	events ports.EventPublisher,
) *AnalyzeDocumentUseCase {
	return &AnalyzeDocumentUseCase{
		docs:         docs,
		results:      results,
		projects:     projects,
		locker:       locker,
		orchestrator: orchestrator,
		events:       events,
	}
}

func (uc *AnalyzeDocumentUseCase) RequestAnalysis(
	ctx context.Context,
	documentID, requesterID string,
) (*domain.AnalysisResult, bool, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, false, fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.authorize(ctx, doc.ProjectID, requesterID); err != nil {
		return nil, false, err
	}

	if existing, ok, err := uc.existingResult(ctx, documentID); err != nil {
		return nil, false, err
	} else if ok {
		return existing, true, nil
	}

	if strings.TrimSpace(doc.StoragePath) == "" {
		return nil, false, domain.WrapError(
			domain.ErrInvalidInput,
			"request analysis",
			errors.New("document has no storage locator"),
		)
	}

	var (
		result *domain.AnalysisResult
		reused bool
	)
	err = uc.locker.WithDocumentLock(ctx, documentID, func(lockCtx context.Context) error {
		// A concurrent caller may have finished while we waited for the lock.
		if existing, ok, checkErr := uc.existingResult(lockCtx, documentID); checkErr != nil {
			return checkErr
		} else if ok {
			result = existing
			reused = true
			return nil
		}

		produced, runErr := uc.runPipeline(lockCtx, doc)
		if runErr != nil {
			return runErr
		}
		result = produced
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !reused {
		uc.publishAnalyzed(ctx, documentID)
	}
	return result, reused, nil
}

func (uc *AnalyzeDocumentUseCase) runPipeline(ctx context.Context, doc *domain.Document) (*domain.AnalysisResult, error) {
	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("set status=processing: %w", err)
	}

	outcome, err := uc.orchestrator.Run(ctx, doc.StoragePath)
	if err != nil {
		uc.markError(ctx, doc.ID, err)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	outcome.ID = uuid.NewString()
	outcome.DocumentID = doc.ID
	outcome.CreatedAt = time.Now().UTC()

	// SaveResult inserts the row and moves the document to analyzed in one
	// transaction, keeping the status<->result invariant.
	if err := uc.results.SaveResult(ctx, outcome); err != nil {
		uc.markError(ctx, doc.ID, err)
		return nil, fmt.Errorf("persist analysis result: %w", err)
	}
	return outcome, nil
}

func (uc *AnalyzeDocumentUseCase) authorize(ctx context.Context, projectID, requesterID string) error {
	if strings.TrimSpace(requesterID) == "" {
		return domain.WrapError(domain.ErrAccessDenied, "request analysis", errors.New("requester id is required"))
	}
	ok, err := uc.projects.HasAccess(ctx, projectID, requesterID)
	if err != nil {
		return fmt.Errorf("check project access: %w", err)
	}
	if !ok {
		return domain.WrapError(
			domain.ErrAccessDenied,
			"request analysis",
			fmt.Errorf("user %s has no access to project %s", requesterID, projectID),
		)
	}
	return nil
}

func (uc *AnalyzeDocumentUseCase) existingResult(ctx context.Context, documentID string) (*domain.AnalysisResult, bool, error) {
	existing, err := uc.results.GetByDocumentID(ctx, documentID)
	if err == nil {
		return existing, true, nil
	}
	if domain.IsKind(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	return nil, false, fmt.Errorf("check existing result: %w", err)
}

// markError reconciles status after a failed run; best-effort only.
func (uc *AnalyzeDocumentUseCase) markError(ctx context.Context, documentID string, cause error) {
	if err := uc.docs.UpdateStatus(ctx, documentID, domain.StatusError, cause.Error()); err != nil {
		slog.Error("status_reconcile_failed", "document_id", documentID, "error", err)
	}
}

func (uc *AnalyzeDocumentUseCase) publishAnalyzed(ctx context.Context, documentID string) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishDocumentAnalyzed(ctx, documentID); err != nil {
		slog.Warn("analyzed_event_publish_failed", "document_id", documentID, "error", err)
	}
}
