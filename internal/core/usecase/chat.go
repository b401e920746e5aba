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

const chatHistoryLimit = 5

type ChatConfig struct {
	AnswerTimeout   time.Duration
	AnswerMaxTokens int
	Temperature     float64
}

func (c ChatConfig) normalize() ChatConfig {
	out := c
	if out.AnswerTimeout <= 0 {
		out.AnswerTimeout = 60 * time.Second
	}
	if out.AnswerMaxTokens <= 0 {
		out.AnswerMaxTokens = 800
	}
	if out.Temperature <= 0 {
		out.Temperature = 0.4
	}
	return out
}

// ProjectChatUseCase answers free-text questions grounded in a project's
// analyzed documents and the five most recent chat turns. Each request is a
// self-contained read-then-single-write cycle; no conversational state is
// carried beyond the persisted history.
type ProjectChatUseCase struct {
	projects ports.ProjectRepository
	docs     ports.DocumentRepository
	results  ports.AnalysisRepository
	history  ports.ChatRepository
	llm      ports.LanguageModel
	cfg      ChatConfig
}

func NewProjectChatUseCase(
	projects ports.ProjectRepository,
	docs ports.DocumentRepository,
	results ports.AnalysisRepository,
	history ports.ChatRepository,
	llm ports.LanguageModel,
	cfg ChatConfig,
) *ProjectChatUseCase {
	return &ProjectChatUseCase{
		projects: projects,
		docs:     docs,
		results:  results,
		history:  history,
		llm:      llm,
		cfg:      cfg.normalize(),
	}
}

func (uc *ProjectChatUseCase) Ask(ctx context.Context, projectID, userID, question string) (*domain.ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "project chat", errors.New("question is required"))
	}

	project, err := uc.authorizedProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	documents, results, err := uc.loadContextDocuments(ctx, projectID)
	if err != nil {
		return nil, err
	}

	recentTurns, err := uc.history.ListRecent(ctx, projectID, chatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent chat turns: %w", err)
	}

	answer, err := uc.complete(ctx, buildChatSystemPrompt(project, documents, results, recentTurns), question)
	if err != nil {
		return nil, err
	}

	contextIDs := make([]string, 0, len(documents))
	for _, doc := range documents {
		contextIDs = append(contextIDs, doc.ID)
	}

	turn := &domain.ChatTurn{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		UserID:           userID,
		Question:         question,
		Answer:           answer,
		ContextDocuments: contextIDs,
		CreatedAt:        time.Now().UTC(),
	}
	// History is a best-effort traceability record; a failed write must not
	// withhold a produced answer.
	if err := uc.history.Append(ctx, turn); err != nil {
		slog.Warn("chat_history_persist_failed", "project_id", projectID, "error", err)
	}

	return &domain.ChatAnswer{
		TurnID:               turn.ID,
		Answer:               answer,
		ContextDocumentCount: len(contextIDs),
	}, nil
}

func (uc *ProjectChatUseCase) History(ctx context.Context, projectID, userID string) ([]domain.ChatTurn, error) {
	if _, err := uc.authorizedProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	turns, err := uc.history.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	return turns, nil
}

func (uc *ProjectChatUseCase) authorizedProject(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetch project by id: %w", err)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, domain.WrapError(domain.ErrAccessDenied, "project chat", errors.New("user id is required"))
	}
	ok, err := uc.projects.HasAccess(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("check project access: %w", err)
	}
	if !ok {
		return nil, domain.WrapError(
			domain.ErrAccessDenied,
			"project chat",
			fmt.Errorf("user %s has no access to project %s", userID, projectID),
		)
	}
	return project, nil
}

func (uc *ProjectChatUseCase) loadContextDocuments(ctx context.Context, projectID string) ([]domain.Document, map[string]domain.AnalysisResult, error) {
	documents, err := uc.docs.ListAnalyzedByProject(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("list analyzed documents: %w", err)
	}
	if len(documents) == 0 {
		return nil, map[string]domain.AnalysisResult{}, nil
	}

	ids := make([]string, 0, len(documents))
	for _, doc := range documents {
		ids = append(ids, doc.ID)
	}
	results, err := uc.results.ListByDocumentIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load analysis results: %w", err)
	}
	return documents, results, nil
}

func (uc *ProjectChatUseCase) complete(ctx context.Context, systemPrompt, question string) (string, error) {
	answerCtx, cancel := context.WithTimeout(ctx, uc.cfg.AnswerTimeout)
	defer cancel()

	answer, err := uc.llm.Complete(answerCtx, systemPrompt, question, uc.cfg.AnswerMaxTokens, uc.cfg.Temperature)
	if err != nil {
		return "", domain.WrapError(domain.ErrUpstream, "generate chat answer", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", domain.WrapError(domain.ErrUpstream, "generate chat answer", errors.New("empty completion"))
	}
	return answer, nil
}
