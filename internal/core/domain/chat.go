package domain

import "time"

// ChatTurn is an append-only record of one question/answer exchange.
// ContextDocuments lists every analyzed document included in the prompt,
// regardless of whether the model referenced it; it is a traceability
// record, not a relevance claim.
type ChatTurn struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id"`
	UserID           string    `json:"user_id"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	ContextDocuments []string  `json:"context_documents"`
	CreatedAt        time.Time `json:"created_at"`
}

type ChatAnswer struct {
	TurnID               string `json:"turn_id"`
	Answer               string `json:"answer"`
	ContextDocumentCount int    `json:"context_document_count"`
}
