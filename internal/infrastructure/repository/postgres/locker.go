package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentLocker serializes analysis runs per document with a session
// advisory lock. The lock lives on a dedicated connection so pool reuse
// cannot release it early.
type DocumentLocker struct {
	db *sql.DB
}

func NewDocumentLocker(db *sql.DB) *DocumentLocker {
	return &DocumentLocker{db: db}
}

func (l *DocumentLocker) WithDocumentLock(ctx context.Context, documentID string, fn func(context.Context) error) error {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire lock connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, documentID); err != nil {
		return fmt.Errorf("acquire document lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, documentID)
	}()

	return fn(ctx)
}
