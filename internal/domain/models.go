package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultSampleSize is the number of questions drawn for one attempt.
	DefaultSampleSize = 10
	// DefaultDuration is the time limit of one attempt.
	DefaultDuration = 50 * time.Minute
	// SubmissionSlots is the fixed number of question/answer/score triples in a stored row.
	SubmissionSlots = 10
	// DefaultRole is the role label stored with each submission.
	DefaultRole = "Java Developer"
)

// QuestionBank is the read-only list of question texts loaded from the source file.
type QuestionBank struct {
	Name      string   `json:"name"`
	Questions []string `json:"questions"`
}

// Empty reports whether the bank has no usable questions.
func (b QuestionBank) Empty() bool {
	return len(b.Questions) == 0
}

// Question is one entry of a session sample. Index is its position in the sample.
type Question struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Sample is the ordered set of questions assigned to a session.
type Sample []Question

// Candidate identifies the person taking the quiz.
type Candidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Normalize trims surrounding whitespace from both fields.
func (c Candidate) Normalize() Candidate {
	return Candidate{Name: strings.TrimSpace(c.Name), Email: strings.TrimSpace(c.Email)}
}

// Valid reports whether both name and email are present.
func (c Candidate) Valid() bool {
	n := c.Normalize()
	return n.Name != "" && n.Email != ""
}

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// CompletionReason records why a session left the in-progress phase.
type CompletionReason string

const (
	ReasonNone      CompletionReason = ""
	ReasonSubmitted CompletionReason = "submitted"
	ReasonTimeout   CompletionReason = "timeout"
)

// AnswerMap holds answers keyed by sample index.
type AnswerMap map[int]string

// Clone returns an independent copy.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Indices returns the answered indices in ascending order.
func (m AnswerMap) Indices() []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Snapshot is the read-only view of a session handed to presentation layers.
type Snapshot struct {
	SessionID        string           `json:"sessionId"`
	Phase            Phase            `json:"phase"`
	Candidate        Candidate        `json:"candidate"`
	CurrentIndex     int              `json:"currentIndex"`
	CurrentQuestion  string           `json:"currentQuestion,omitempty"`
	CurrentAnswer    string           `json:"currentAnswer,omitempty"`
	Total            int              `json:"total"`
	Progress         int              `json:"progress"`
	RemainingSeconds int              `json:"remainingSeconds"`
	Answered         []int            `json:"answered"`
	Reason           CompletionReason `json:"reason,omitempty"`
	Persisted        bool             `json:"persisted"`
	SubmissionID     int64            `json:"submissionId,omitempty"`
}

// Countdown formats the remaining time as MM:SS.
func (s Snapshot) Countdown() string {
	secs := s.RemainingSeconds
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// SlotResult is one question/answer/score triple of a submission.
// Score is nil when the slot was unanswered or could not be scored.
type SlotResult struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Score      *int   `json:"score"`
	ScoreError string `json:"scoreError,omitempty"`
}

// Answered reports whether the candidate provided an answer for the slot.
func (s SlotResult) Answered() bool {
	return strings.TrimSpace(s.Answer) != ""
}

// ScoredSubmission is the finalized record of a completed session.
type ScoredSubmission struct {
	ID          int64                       `json:"id,omitempty"`
	SessionID   string                      `json:"sessionId"`
	Candidate   Candidate                   `json:"candidate"`
	Role        string                      `json:"role"`
	Slots       [SubmissionSlots]SlotResult `json:"slots"`
	Reason      CompletionReason            `json:"reason,omitempty"`
	SubmittedAt time.Time                   `json:"submittedAt"`
}

// ScoredCount returns how many slots carry a score.
func (s ScoredSubmission) ScoredCount() int {
	n := 0
	for _, slot := range s.Slots {
		if slot.Score != nil {
			n++
		}
	}
	return n
}

// TotalScore sums the scored slots.
func (s ScoredSubmission) TotalScore() int {
	total := 0
	for _, slot := range s.Slots {
		if slot.Score != nil {
			total += *slot.Score
		}
	}
	return total
}
