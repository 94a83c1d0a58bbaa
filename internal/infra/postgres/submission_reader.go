package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"assessment-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SubmissionReader reads stored submissions back for operators.
type SubmissionReader struct {
	pool *pgxpool.Pool
}

func NewSubmissionReader(pool *pgxpool.Pool) *SubmissionReader {
	return &SubmissionReader{pool: pool}
}

var selectColumns = buildSelectColumns()

func buildSelectColumns() string {
	cols := []string{"id", "COALESCE(user_name, '')", "COALESCE(user_email, '')", "COALESCE(job_role, '')"}
	for i := 1; i <= domain.SubmissionSlots; i++ {
		cols = append(cols,
			fmt.Sprintf("COALESCE(q%d, '')", i),
			fmt.Sprintf("COALESCE(answer%d, '')", i),
			fmt.Sprintf("score%d", i),
		)
	}
	cols = append(cols, "submission_time")
	return strings.Join(cols, ", ")
}

func (r *SubmissionReader) GetSubmission(ctx context.Context, id int64) (domain.ScoredSubmission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM evaluated WHERE id=$1`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScoredSubmission{}, domain.ErrSubmissionNotFound
		}
		return domain.ScoredSubmission{}, fmt.Errorf("load submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns the newest submissions first.
func (r *SubmissionReader) ListSubmissions(ctx context.Context, limit int) ([]domain.ScoredSubmission, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM evaluated ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ScoredSubmission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func scanSubmission(row pgx.Row) (domain.ScoredSubmission, error) {
	var er EvaluatedRow
	dest := []interface{}{&er.ID, &er.UserName, &er.UserEmail, &er.JobRole}
	for _, cols := range er.slots() {
		dest = append(dest, cols.question, cols.answer, cols.score)
	}
	dest = append(dest, &er.SubmissionTime)
	if err := row.Scan(dest...); err != nil {
		return domain.ScoredSubmission{}, err
	}
	return er.Submission(), nil
}
