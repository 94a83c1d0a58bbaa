package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"assessment-quiz-service/internal/domain"
)

func TestSaveSubmissionInsertsOneRowPerCall(t *testing.T) {
	ctx := context.Background()
	sink, err := Open(ctx, filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sink.Close()

	six := 6
	sub := domain.ScoredSubmission{
		Candidate: domain.Candidate{Name: "Ada", Email: "ada@example.com"},
		Role:      domain.DefaultRole,
	}
	sub.Slots[0] = domain.SlotResult{Question: "q1", Answer: "a1", Score: &six}
	sub.Slots[1] = domain.SlotResult{Question: "q2"}

	id, err := sink.SaveSubmission(ctx, sub)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected first id 1, got %d", id)
	}
	id2, err := sink.SaveSubmission(ctx, sub)
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if id2 != 2 {
		t.Fatalf("expected append-only second row, got id %d", id2)
	}
	if n, err := sink.Count(ctx); err != nil || n != 2 {
		t.Fatalf("expected 2 rows, got %d (%v)", n, err)
	}

	var (
		role   string
		score1 sql.NullInt64
		score2 sql.NullInt64
		q10    sql.NullString
	)
	err = sink.db.QueryRowContext(ctx, `SELECT job_role, score1, score2, q10 FROM evaluated WHERE id = ?`, id).
		Scan(&role, &score1, &score2, &q10)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if role != domain.DefaultRole {
		t.Fatalf("unexpected role %q", role)
	}
	if !score1.Valid || score1.Int64 != 6 {
		t.Fatalf("expected score1 6, got %+v", score1)
	}
	if score2.Valid {
		t.Fatalf("expected NULL score2, got %d", score2.Int64)
	}
	if q10.String != "" {
		t.Fatalf("expected empty q10, got %q", q10.String)
	}
}

func TestGetSubmissionReadsRowBack(t *testing.T) {
	ctx := context.Background()
	sink, err := Open(ctx, filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sink.Close()

	if _, err := sink.GetSubmission(ctx, 1); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected not found on empty table, got %v", err)
	}

	nine := 9
	sub := domain.ScoredSubmission{
		Candidate: domain.Candidate{Name: "Ada", Email: "ada@example.com"},
		Role:      domain.DefaultRole,
	}
	sub.Slots[4] = domain.SlotResult{Question: "What is a JIT?", Answer: "runtime compiler", Score: &nine}
	sub.Slots[5] = domain.SlotResult{Question: "What is GC?"}

	id, err := sink.SaveSubmission(ctx, sub)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := sink.GetSubmission(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id || got.Candidate != sub.Candidate || got.Role != sub.Role {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if got.Slots[4].Score == nil || *got.Slots[4].Score != 9 || got.Slots[4].Answer != "runtime compiler" {
		t.Fatalf("unexpected slot 5: %+v", got.Slots[4])
	}
	if got.Slots[5].Question != "What is GC?" || got.Slots[5].Score != nil {
		t.Fatalf("unexpected slot 6: %+v", got.Slots[5])
	}
	if got.SubmittedAt.IsZero() {
		t.Fatalf("expected submission time")
	}
}
