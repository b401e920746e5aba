package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// SaveResult inserts the result row and flips the owning document to
// analyzed in one transaction, so readers never observe a result without
// the matching status or the other way around.
func (r *AnalysisRepository) SaveResult(ctx context.Context, result *domain.AnalysisResult) error {
	extractedJSON, err := json.Marshal(result.ExtractedData)
	if err != nil {
		return fmt.Errorf("marshal extracted data: %w", err)
	}
	redFlagsJSON, err := json.Marshal(result.RedFlags)
	if err != nil {
		return fmt.Errorf("marshal red flags: %w", err)
	}
	highlightsJSON, err := json.Marshal(result.Highlights)
	if err != nil {
		return fmt.Errorf("marshal highlights: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save result tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO analysis_results (
	id, document_id, extracted_data, ai_summary, red_flags, highlights, confidence_score, processing_time_ms, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		result.ID, result.DocumentID, extractedJSON, result.AISummary, redFlagsJSON, highlightsJSON,
		result.ConfidenceScore, result.ProcessingTimeMS, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis result: %w", err)
	}

	updated, err := tx.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = '', updated_at = $3
WHERE id = $1
`, result.DocumentID, string(domain.StatusAnalyzed), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark document analyzed: %w", err)
	}
	affected, err := updated.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark document analyzed rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "mark document analyzed", fmt.Errorf("document %s", result.DocumentID))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save result tx: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetByDocumentID(ctx context.Context, documentID string) (*domain.AnalysisResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, extracted_data, ai_summary, red_flags, highlights, confidence_score, processing_time_ms, created_at
FROM analysis_results
WHERE document_id = $1
`, documentID)

	result, err := scanAnalysisResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get analysis result", fmt.Errorf("document %s", documentID))
		}
		return nil, err
	}
	return result, nil
}

func (r *AnalysisRepository) ListByDocumentIDs(ctx context.Context, documentIDs []string) (map[string]domain.AnalysisResult, error) {
	out := make(map[string]domain.AnalysisResult, len(documentIDs))
	if len(documentIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, extracted_data, ai_summary, red_flags, highlights, confidence_score, processing_time_ms, created_at
FROM analysis_results
WHERE document_id = ANY($1)
`, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("list analysis results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		result, err := scanAnalysisResult(rows)
		if err != nil {
			return nil, err
		}
		out[result.DocumentID] = *result
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis results: %w", err)
	}
	return out, nil
}

func scanAnalysisResult(row rowScanner) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	var extractedRaw, redFlagsRaw, highlightsRaw []byte

	err := row.Scan(
		&result.ID, &result.DocumentID, &extractedRaw, &result.AISummary, &redFlagsRaw, &highlightsRaw,
		&result.ConfidenceScore, &result.ProcessingTimeMS, &result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan analysis result: %w", err)
	}

	result.ExtractedData = domain.NewExtractedData()
	if err := json.Unmarshal(extractedRaw, &result.ExtractedData); err != nil {
		return nil, fmt.Errorf("unmarshal extracted data: %w", err)
	}
	if err := json.Unmarshal(redFlagsRaw, &result.RedFlags); err != nil {
		return nil, fmt.Errorf("unmarshal red flags: %w", err)
	}
	if err := json.Unmarshal(highlightsRaw, &result.Highlights); err != nil {
		return nil, fmt.Errorf("unmarshal highlights: %w", err)
	}
	return &result, nil
}
