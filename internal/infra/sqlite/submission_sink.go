package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"assessment-quiz-service/internal/domain"
	_ "modernc.org/sqlite" // driver: sqlite
)

// SubmissionSink writes submissions to a local SQLite file; used when no
// Postgres URL is configured.
type SubmissionSink struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*SubmissionSink, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz.db"
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SubmissionSink{db: db}, nil
}

const createEvaluated = `
CREATE TABLE IF NOT EXISTS evaluated (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_name TEXT,
  user_email TEXT,
  job_role TEXT,
  q1 TEXT, answer1 TEXT, score1 INTEGER,
  q2 TEXT, answer2 TEXT, score2 INTEGER,
  q3 TEXT, answer3 TEXT, score3 INTEGER,
  q4 TEXT, answer4 TEXT, score4 INTEGER,
  q5 TEXT, answer5 TEXT, score5 INTEGER,
  q6 TEXT, answer6 TEXT, score6 INTEGER,
  q7 TEXT, answer7 TEXT, score7 INTEGER,
  q8 TEXT, answer8 TEXT, score8 INTEGER,
  q9 TEXT, answer9 TEXT, score9 INTEGER,
  q10 TEXT, answer10 TEXT, score10 INTEGER,
  submission_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

var insertEvaluated = buildInsert()

func buildInsert() string {
	cols := []string{"user_name", "user_email", "job_role"}
	for i := 1; i <= domain.SubmissionSlots; i++ {
		cols = append(cols, fmt.Sprintf("q%d", i), fmt.Sprintf("answer%d", i), fmt.Sprintf("score%d", i))
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return `INSERT INTO evaluated (` + strings.Join(cols, ", ") + `) VALUES (` + marks + `)`
}

// SaveSubmission provisions the table if needed and inserts one row.
func (s *SubmissionSink) SaveSubmission(ctx context.Context, sub domain.ScoredSubmission) (int64, error) {
	if _, err := s.db.ExecContext(ctx, createEvaluated); err != nil {
		return 0, fmt.Errorf("create evaluated table: %w", err)
	}

	args := []interface{}{sub.Candidate.Name, sub.Candidate.Email, sub.Role}
	for _, slot := range sub.Slots {
		var score interface{}
		if slot.Score != nil {
			score = *slot.Score
		}
		args = append(args, slot.Question, slot.Answer, score)
	}

	res, err := s.db.ExecContext(ctx, insertEvaluated, args...)
	if err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	return res.LastInsertId()
}

var selectEvaluated = buildSelect()

func buildSelect() string {
	cols := []string{"id", "COALESCE(user_name, '')", "COALESCE(user_email, '')", "COALESCE(job_role, '')"}
	for i := 1; i <= domain.SubmissionSlots; i++ {
		cols = append(cols,
			fmt.Sprintf("COALESCE(q%d, '')", i),
			fmt.Sprintf("COALESCE(answer%d, '')", i),
			fmt.Sprintf("score%d", i),
		)
	}
	cols = append(cols, "CAST(strftime('%s', submission_time) AS INTEGER)")
	return `SELECT ` + strings.Join(cols, ", ") + ` FROM evaluated WHERE id = ?`
}

// GetSubmission reads one stored row back.
func (s *SubmissionSink) GetSubmission(ctx context.Context, id int64) (domain.ScoredSubmission, error) {
	if _, err := s.db.ExecContext(ctx, createEvaluated); err != nil {
		return domain.ScoredSubmission{}, fmt.Errorf("create evaluated table: %w", err)
	}

	var (
		sub      domain.ScoredSubmission
		scores   [domain.SubmissionSlots]*int
		unixTime int64
	)
	dest := []interface{}{&sub.ID, &sub.Candidate.Name, &sub.Candidate.Email, &sub.Role}
	for i := range sub.Slots {
		dest = append(dest, &sub.Slots[i].Question, &sub.Slots[i].Answer, &scores[i])
	}
	dest = append(dest, &unixTime)

	err := s.db.QueryRowContext(ctx, selectEvaluated, id).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScoredSubmission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.ScoredSubmission{}, fmt.Errorf("load submission: %w", err)
	}
	for i := range sub.Slots {
		sub.Slots[i].Score = scores[i]
	}
	sub.SubmittedAt = time.Unix(unixTime, 0).UTC()
	return sub, nil
}

// Count returns the number of stored submissions.
func (s *SubmissionSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluated`).Scan(&n)
	return n, err
}

func (s *SubmissionSink) Close() error {
	return s.db.Close()
}
