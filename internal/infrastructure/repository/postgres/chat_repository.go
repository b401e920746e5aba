package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Append(ctx context.Context, turn *domain.ChatTurn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	contextJSON, err := json.Marshal(turn.ContextDocuments)
	if err != nil {
		return fmt.Errorf("marshal context documents: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO chat_turns (id, project_id, user_id, question, answer, context_documents, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, turn.ID, turn.ProjectID, turn.UserID, turn.Question, turn.Answer, contextJSON, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}
	return nil
}

// ListRecent returns up to limit turns newest-first, matching how prompt
// building consumes them.
func (r *ChatRepository) ListRecent(ctx context.Context, projectID string, limit int) ([]domain.ChatTurn, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.queryTurns(ctx, `
SELECT id, project_id, user_id, question, answer, context_documents, created_at
FROM chat_turns
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT $2
`, projectID, limit)
}

func (r *ChatRepository) ListByProject(ctx context.Context, projectID string) ([]domain.ChatTurn, error) {
	return r.queryTurns(ctx, `
SELECT id, project_id, user_id, question, answer, context_documents, created_at
FROM chat_turns
WHERE project_id = $1
ORDER BY created_at ASC
`, projectID)
}

func (r *ChatRepository) queryTurns(ctx context.Context, query string, args ...any) ([]domain.ChatTurn, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat turns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChatTurn, 0)
	for rows.Next() {
		var turn domain.ChatTurn
		var contextRaw []byte
		if err := rows.Scan(
			&turn.ID,
			&turn.ProjectID,
			&turn.UserID,
			&turn.Question,
			&turn.Answer,
			&contextRaw,
			&turn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		if err := json.Unmarshal(contextRaw, &turn.ContextDocuments); err != nil {
			return nil, fmt.Errorf("unmarshal context documents: %w", err)
		}
		out = append(out, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat turns: %w", err)
	}
	return out, nil
}
