package domain

import "time"

// TableCell is one cell of an extracted table, addressed by zero-based
// row/column indexes.
type TableCell struct {
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Content string `json:"content"`
}

type Table struct {
	RowCount    int         `json:"row_count"`
	ColumnCount int         `json:"column_count"`
	Cells       []TableCell `json:"cells"`
}

// ExtractedData is the closed shape of a document-intelligence payload.
// Adapters must fill every field with an empty (never nil) default so
// downstream scoring and insight mining operate without optional-field
// checks.
type ExtractedData struct {
	Tables        []Table           `json:"tables"`
	KeyValuePairs map[string]string `json:"key_value_pairs"`
	Content       string            `json:"content"`
}

// NewExtractedData returns a payload with empty defaults in place.
func NewExtractedData() ExtractedData {
	return ExtractedData{
		Tables:        []Table{},
		KeyValuePairs: map[string]string{},
	}
}

// AnalysisResult is written exactly once per successful pipeline run and
// never mutated afterward.
type AnalysisResult struct {
	ID               string        `json:"id"`
	DocumentID       string        `json:"document_id"`
	ExtractedData    ExtractedData `json:"extracted_data"`
	AISummary        string        `json:"ai_summary"`
	RedFlags         []string      `json:"red_flags"`
	Highlights       []string      `json:"highlights"`
	ConfidenceScore  float64       `json:"confidence_score"`
	ProcessingTimeMS int64         `json:"processing_time_ms"`
	CreatedAt        time.Time     `json:"created_at"`
}
