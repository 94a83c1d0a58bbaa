package postgres

import (
	"time"

	"assessment-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

// EvaluatedRow is one stored submission: candidate identity plus ten
// question/answer/score triples. Unanswered or unscored slots keep a NULL score.
type EvaluatedRow struct {
	bun.BaseModel `bun:"table:evaluated,alias:e"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UserName       string    `bun:"user_name,type:varchar(255)"`
	UserEmail      string    `bun:"user_email,type:varchar(255)"`
	JobRole        string    `bun:"job_role,type:varchar(255)"`
	Q1             string    `bun:"q1,type:text"`
	Answer1        string    `bun:"answer1,type:text"`
	Score1         *int      `bun:"score1,type:integer"`
	Q2             string    `bun:"q2,type:text"`
	Answer2        string    `bun:"answer2,type:text"`
	Score2         *int      `bun:"score2,type:integer"`
	Q3             string    `bun:"q3,type:text"`
	Answer3        string    `bun:"answer3,type:text"`
	Score3         *int      `bun:"score3,type:integer"`
	Q4             string    `bun:"q4,type:text"`
	Answer4        string    `bun:"answer4,type:text"`
	Score4         *int      `bun:"score4,type:integer"`
	Q5             string    `bun:"q5,type:text"`
	Answer5        string    `bun:"answer5,type:text"`
	Score5         *int      `bun:"score5,type:integer"`
	Q6             string    `bun:"q6,type:text"`
	Answer6        string    `bun:"answer6,type:text"`
	Score6         *int      `bun:"score6,type:integer"`
	Q7             string    `bun:"q7,type:text"`
	Answer7        string    `bun:"answer7,type:text"`
	Score7         *int      `bun:"score7,type:integer"`
	Q8             string    `bun:"q8,type:text"`
	Answer8        string    `bun:"answer8,type:text"`
	Score8         *int      `bun:"score8,type:integer"`
	Q9             string    `bun:"q9,type:text"`
	Answer9        string    `bun:"answer9,type:text"`
	Score9         *int      `bun:"score9,type:integer"`
	Q10            string    `bun:"q10,type:text"`
	Answer10       string    `bun:"answer10,type:text"`
	Score10        *int      `bun:"score10,type:integer"`
	SubmissionTime time.Time `bun:"submission_time,nullzero,notnull,default:current_timestamp"`
}

type slotColumns struct {
	question *string
	answer   *string
	score    **int
}

func (r *EvaluatedRow) slots() [domain.SubmissionSlots]slotColumns {
	return [domain.SubmissionSlots]slotColumns{
		{&r.Q1, &r.Answer1, &r.Score1},
		{&r.Q2, &r.Answer2, &r.Score2},
		{&r.Q3, &r.Answer3, &r.Score3},
		{&r.Q4, &r.Answer4, &r.Score4},
		{&r.Q5, &r.Answer5, &r.Score5},
		{&r.Q6, &r.Answer6, &r.Score6},
		{&r.Q7, &r.Answer7, &r.Score7},
		{&r.Q8, &r.Answer8, &r.Score8},
		{&r.Q9, &r.Answer9, &r.Score9},
		{&r.Q10, &r.Answer10, &r.Score10},
	}
}

// NewEvaluatedRow flattens a submission into the table layout.
func NewEvaluatedRow(sub domain.ScoredSubmission) *EvaluatedRow {
	row := &EvaluatedRow{
		UserName:  sub.Candidate.Name,
		UserEmail: sub.Candidate.Email,
		JobRole:   sub.Role,
	}
	for i, cols := range row.slots() {
		slot := sub.Slots[i]
		*cols.question = slot.Question
		*cols.answer = slot.Answer
		if slot.Score != nil {
			score := *slot.Score
			*cols.score = &score
		}
	}
	return row
}

// Submission rebuilds the domain record from a stored row.
func (r *EvaluatedRow) Submission() domain.ScoredSubmission {
	sub := domain.ScoredSubmission{
		ID:          r.ID,
		Candidate:   domain.Candidate{Name: r.UserName, Email: r.UserEmail},
		Role:        r.JobRole,
		SubmittedAt: r.SubmissionTime,
	}
	for i, cols := range r.slots() {
		sub.Slots[i] = domain.SlotResult{
			Question: *cols.question,
			Answer:   *cols.answer,
			Score:    *cols.score,
		}
	}
	return sub
}
