package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

type docintelFake struct {
	data    domain.ExtractedData
	err     error
	calls   int
	modelID string
}

func (f *docintelFake) Analyze(_ context.Context, _ string, modelID string) (domain.ExtractedData, error) {
	f.calls++
	f.modelID = modelID
	if f.err != nil {
		return domain.ExtractedData{}, f.err
	}
	return f.data, nil
}

type llmFake struct {
	text         string
	err          error
	calls        int
	systemPrompt string
	userPrompt   string
}

func (f *llmFake) Complete(_ context.Context, systemPrompt, userPrompt string, _ int, _ float64) (string, error) {
	f.calls++
	f.systemPrompt = systemPrompt
	f.userPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type observerFake struct {
	stages   []string
	degraded int
}

func (f *observerFake) ObserveStage(stage string, _ time.Duration) { f.stages = append(f.stages, stage) }
func (f *observerFake) ObserveDegradedSummary()                    { f.degraded++ }

func fullExtraction() domain.ExtractedData {
	return domain.ExtractedData{
		Tables:        []domain.Table{{RowCount: 1, ColumnCount: 2, Cells: []domain.TableCell{{Content: "total"}}}},
		KeyValuePairs: map[string]string{"vendor": "Acme"},
		Content:       strings.Repeat("invoice line ", 20),
	}
}

func TestOrchestratorRunSuccess(t *testing.T) {
	docintel := &docintelFake{data: fullExtraction()}
	llm := &llmFake{text: "The key finding is a discrepancy in vendor totals."}
	orch := NewAnalysisOrchestrator(docintel, llm, OrchestratorConfig{}, nil)

	result, err := orch.Run(context.Background(), "doc-1_invoice.pdf")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if docintel.modelID != ExtractionModelID {
		t.Fatalf("expected model %s, got %s", ExtractionModelID, docintel.modelID)
	}
	if result.AISummary != llm.text {
		t.Fatalf("unexpected summary: %s", result.AISummary)
	}
	if result.ConfidenceScore != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", result.ConfidenceScore)
	}
	if len(result.RedFlags) != 1 || result.RedFlags[0] != "Potential discrepancies detected" {
		t.Fatalf("unexpected red flags: %v", result.RedFlags)
	}
	if len(result.Highlights) != 1 {
		t.Fatalf("unexpected highlights: %v", result.Highlights)
	}
	if result.ProcessingTimeMS < 0 {
		t.Fatalf("expected non-negative processing time, got %d", result.ProcessingTimeMS)
	}
	if !strings.Contains(llm.userPrompt, "Acme") {
		t.Fatalf("expected extraction payload embedded in prompt, got %s", llm.userPrompt)
	}
}

func TestOrchestratorExtractionFailureIsFatal(t *testing.T) {
	docintel := &docintelFake{err: errors.New("service down")}
	llm := &llmFake{text: "never used"}
	orch := NewAnalysisOrchestrator(docintel, llm, OrchestratorConfig{}, nil)

	_, err := orch.Run(context.Background(), "doc-1_invoice.pdf")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if llm.calls != 0 {
		t.Fatalf("summarization must not run after fatal extraction failure")
	}
}

func TestOrchestratorSummarizationFailureDegrades(t *testing.T) {
	docintel := &docintelFake{data: fullExtraction()}
	llm := &llmFake{err: errors.New("model unavailable")}
	observer := &observerFake{}
	orch := NewAnalysisOrchestrator(docintel, llm, OrchestratorConfig{}, observer)

	result, err := orch.Run(context.Background(), "doc-1_invoice.pdf")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.AISummary != "AI analysis unavailable - using extracted data only" {
		t.Fatalf("expected fallback summary, got %q", result.AISummary)
	}
	if observer.degraded != 1 {
		t.Fatalf("expected degraded summary observation, got %d", observer.degraded)
	}
	if result.ConfidenceScore != 1.0 {
		t.Fatalf("confidence must still derive from the extraction, got %v", result.ConfidenceScore)
	}
}

func TestOrchestratorEmptyCompletionDegrades(t *testing.T) {
	docintel := &docintelFake{data: fullExtraction()}
	llm := &llmFake{text: "   "}
	orch := NewAnalysisOrchestrator(docintel, llm, OrchestratorConfig{}, nil)

	result, err := orch.Run(context.Background(), "doc-1_invoice.pdf")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.AISummary != "AI analysis unavailable - using extracted data only" {
		t.Fatalf("expected fallback summary, got %q", result.AISummary)
	}
}
