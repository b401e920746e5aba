package usecase

import "github.com/mkrashin/document-insight/internal/core/domain"

const (
	confidenceBase         = 0.5
	confidenceTablesBonus  = 0.2
	confidenceKVBonus      = 0.2
	confidenceContentBonus = 0.1
	confidenceContentMin   = 100
)

// ConfidenceScore rates extraction completeness on a 0..1 scale. It is a
// deterministic heuristic over the closed ExtractedData shape, not a model
// output, and it must never fail: absent fields simply earn no bonus.
func ConfidenceScore(data domain.ExtractedData) float64 {
	score := confidenceBase
	if len(data.Tables) > 0 {
		score += confidenceTablesBonus
	}
	if len(data.KeyValuePairs) > 0 {
		score += confidenceKVBonus
	}
	if len(data.Content) > confidenceContentMin {
		score += confidenceContentBonus
	}
	// Bonuses cannot exceed 1.0 today; the clamp guards future rule changes.
	if score > 1.0 {
		score = 1.0
	}
	return score
}
