package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"assessment-quiz-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// SubmissionSink writes submissions to the evaluated table through bun.
type SubmissionSink struct {
	db *bun.DB
}

func NewSubmissionSink(db *bun.DB) *SubmissionSink {
	return &SubmissionSink{db: db}
}

// OpenDB opens a bun handle for a Postgres DSN.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// SaveSubmission provisions the table if needed and inserts one row.
func (s *SubmissionSink) SaveSubmission(ctx context.Context, sub domain.ScoredSubmission) (int64, error) {
	if _, err := s.db.NewCreateTable().Model((*EvaluatedRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return 0, fmt.Errorf("create evaluated table: %w", err)
	}

	row := NewEvaluatedRow(sub)
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	return row.ID, nil
}

func (s *SubmissionSink) Close() error {
	return s.db.Close()
}
