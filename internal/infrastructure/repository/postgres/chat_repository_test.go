package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mkrashin/document-insight/internal/core/domain"
)

func newChatRepoWithMock(t *testing.T) (*ChatRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ChatRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestAppendFillsCreatedAt(t *testing.T) {
	repo, mock, done := newChatRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO chat_turns").
		WithArgs("turn-1", "proj-1", "user-1", "What changed?", "Totals went up.", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	turn := &domain.ChatTurn{
		ID:               "turn-1",
		ProjectID:        "proj-1",
		UserID:           "user-1",
		Question:         "What changed?",
		Answer:           "Totals went up.",
		ContextDocuments: []string{"doc-1"},
	}
	if err := repo.Append(context.Background(), turn); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if turn.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be filled")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecentPassesLimit(t *testing.T) {
	repo, mock, done := newChatRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "project_id", "user_id", "question", "answer", "context_documents", "created_at"}).
		AddRow("turn-2", "proj-1", "user-1", "Q2", "A2", []byte(`["doc-1"]`), now).
		AddRow("turn-1", "proj-1", "user-1", "Q1", "A1", []byte(`[]`), now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, project_id, user_id").
		WithArgs("proj-1", 5).
		WillReturnRows(rows)

	turns, err := repo.ListRecent(context.Background(), "proj-1", 5)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].ID != "turn-2" {
		t.Fatalf("expected newest turn first, got %s", turns[0].ID)
	}
	if len(turns[0].ContextDocuments) != 1 || turns[0].ContextDocuments[0] != "doc-1" {
		t.Fatalf("unexpected context documents: %+v", turns[0].ContextDocuments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecentZeroLimitSkipsQuery(t *testing.T) {
	repo, mock, done := newChatRepoWithMock(t)
	defer done()

	turns, err := repo.ListRecent(context.Background(), "proj-1", 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if turns != nil {
		t.Fatalf("expected nil, got %+v", turns)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
