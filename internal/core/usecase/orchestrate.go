package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mkrashin/document-insight/internal/core/domain"
	"github.com/mkrashin/document-insight/internal/core/ports"
)

const (
	// ExtractionModelID is the fixed general-purpose extraction model used
	// for every pipeline run.
	ExtractionModelID = "prebuilt-document"

	// summaryFallback replaces the narrative summary when the language
	// model call fails or returns nothing; summarization is degradable.
	summaryFallback = "AI analysis unavailable - using extracted data only"
)

// PipelineObserver receives pipeline telemetry. Implementations live in the
// observability layer; a nil observer disables recording.
type PipelineObserver interface {
	ObserveStage(stage string, duration time.Duration)
	ObserveDegradedSummary()
}

type OrchestratorConfig struct {
	ExtractionTimeout time.Duration
	SummaryTimeout    time.Duration
	SummaryMaxTokens  int
	Temperature       float64
}

func (c OrchestratorConfig) normalize() OrchestratorConfig {
	out := c
	if out.ExtractionTimeout <= 0 {
		out.ExtractionTimeout = 2 * time.Minute
	}
	if out.SummaryTimeout <= 0 {
		out.SummaryTimeout = 60 * time.Second
	}
	if out.SummaryMaxTokens <= 0 {
		out.SummaryMaxTokens = 1000
	}
	if out.Temperature <= 0 {
		out.Temperature = 0.3
	}
	return out
}

// AnalysisOrchestrator runs the extraction/summarization/scoring pipeline
// for one document. It never touches persistent state; the caller persists
// the assembled result.
type AnalysisOrchestrator struct {
	docintel ports.DocumentIntelligence
	llm      ports.LanguageModel
	cfg      OrchestratorConfig
	observer PipelineObserver
}

func NewAnalysisOrchestrator(
	docintel ports.DocumentIntelligence,
	llm ports.LanguageModel,
	cfg OrchestratorConfig,
	observer PipelineObserver,
) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{
		docintel: docintel,
		llm:      llm,
		cfg:      cfg.normalize(),
		observer: observer,
	}
}

// Run executes the pipeline. Extraction failure is fatal; summarization
// failure degrades to a fixed fallback summary and the run still succeeds.
func (o *AnalysisOrchestrator) Run(ctx context.Context, storagePath string) (*domain.AnalysisResult, error) {
	started := time.Now()

	data, err := o.extract(ctx, storagePath)
	if err != nil {
		return nil, err
	}

	summary := o.summarize(ctx, data)
	score := ConfidenceScore(data)
	redFlags := RedFlags(summary)
	highlights := Highlights(summary)

	return &domain.AnalysisResult{
		ExtractedData:    data,
		AISummary:        summary,
		RedFlags:         redFlags,
		Highlights:       highlights,
		ConfidenceScore:  score,
		ProcessingTimeMS: time.Since(started).Milliseconds(),
	}, nil
}

func (o *AnalysisOrchestrator) extract(ctx context.Context, storagePath string) (domain.ExtractedData, error) {
	extractCtx, cancel := context.WithTimeout(ctx, o.cfg.ExtractionTimeout)
	defer cancel()

	started := time.Now()
	data, err := o.docintel.Analyze(extractCtx, storagePath, ExtractionModelID)
	o.observeStage("extraction", time.Since(started))
	if err != nil {
		return domain.ExtractedData{}, domain.WrapError(domain.ErrUpstream, "extract document content", err)
	}
	return data, nil
}

func (o *AnalysisOrchestrator) summarize(ctx context.Context, data domain.ExtractedData) string {
	summaryCtx, cancel := context.WithTimeout(ctx, o.cfg.SummaryTimeout)
	defer cancel()

	started := time.Now()
	text, err := o.llm.Complete(
		summaryCtx,
		summarySystemPrompt,
		buildSummaryUserPrompt(data),
		o.cfg.SummaryMaxTokens,
		o.cfg.Temperature,
	)
	o.observeStage("summarization", time.Since(started))

	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		slog.Warn("summary_degraded", "error", err)
		if o.observer != nil {
			o.observer.ObserveDegradedSummary()
		}
		return summaryFallback
	}
	return text
}

func (o *AnalysisOrchestrator) observeStage(stage string, duration time.Duration) {
	if o.observer != nil {
		o.observer.ObserveStage(stage, duration)
	}
}
