package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkrashin/document-insight/internal/config"
	"github.com/mkrashin/document-insight/internal/core/ports"
	"github.com/mkrashin/document-insight/internal/core/usecase"
	"github.com/mkrashin/document-insight/internal/infrastructure/docintel/azure"
	"github.com/mkrashin/document-insight/internal/infrastructure/llm/ollama"
	"github.com/mkrashin/document-insight/internal/infrastructure/queue/nats"
	"github.com/mkrashin/document-insight/internal/infrastructure/repository/postgres"
	"github.com/mkrashin/document-insight/internal/infrastructure/resilience"
	"github.com/mkrashin/document-insight/internal/infrastructure/storage/localfs"
	"github.com/mkrashin/document-insight/internal/observability/metrics"
)

type App struct {
	Config config.Config

	UploadUC  ports.DocumentIngestor
	AnalyzeUC ports.AnalysisService
	ChatUC    ports.ChatService
	Documents ports.DocumentReader
	Results   ports.AnalysisReader

	HTTPMetrics     *metrics.HTTPServerMetrics
	PipelineMetrics *metrics.PipelineMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docs := postgres.NewDocumentRepository(db)
	results := postgres.NewAnalysisRepository(db)
	projects := postgres.NewProjectRepository(db)
	chatHistory := postgres.NewChatRepository(db)
	locker := postgres.NewDocumentLocker(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	var events ports.EventPublisher = noopPublisher{}
	var publisherClose func()
	if cfg.NATSURL != "" {
		publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = publisher
		publisherClose = publisher.Close
	}

	docintel := azure.New(cfg.DocIntelEndpoint, cfg.DocIntelAPIKey, storage, azure.Options{
		PollInterval:       time.Duration(cfg.DocIntelPollSeconds) * time.Second,
		ResilienceExecutor: executor,
	})
	llm := ollama.New(cfg.OllamaURL, cfg.OllamaModel, executor)

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	pipelineMetrics := metrics.NewPipelineMetrics("api", httpMetrics.Registry())

	orchestrator := usecase.NewAnalysisOrchestrator(docintel, llm, usecase.OrchestratorConfig{
		ExtractionTimeout: time.Duration(cfg.DocIntelTimeoutSeconds) * time.Second,
		SummaryTimeout:    time.Duration(cfg.SummaryTimeoutSeconds) * time.Second,
		SummaryMaxTokens:  cfg.SummaryMaxTokens,
		Temperature:       cfg.SummaryTemperature,
	}, pipelineMetrics)

	uploadUC := usecase.NewUploadDocumentUseCase(docs, projects, storage)
	analyzeUC := usecase.NewAnalyzeDocumentUseCase(docs, results, projects, locker, orchestrator, events)
	chatUC := usecase.NewProjectChatUseCase(projects, docs, results, chatHistory, llm, usecase.ChatConfig{
		AnswerTimeout:   time.Duration(cfg.ChatTimeoutSeconds) * time.Second,
		AnswerMaxTokens: cfg.ChatMaxTokens,
		Temperature:     cfg.ChatTemperature,
	})

	return &App{
		Config: cfg,

		UploadUC:  uploadUC,
		AnalyzeUC: analyzeUC,
		ChatUC:    chatUC,
		Documents: docs,
		Results:   results,

		HTTPMetrics:     httpMetrics,
		PipelineMetrics: pipelineMetrics,

		closeFn: func() {
			if publisherClose != nil {
				publisherClose()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// noopPublisher stands in when no broker is configured; analyzed events
// are logged and dropped.
type noopPublisher struct{}

func (noopPublisher) PublishDocumentAnalyzed(_ context.Context, documentID string) error {
	slog.Debug("analyzed_event_dropped", "document_id", documentID)
	return nil
}
