package memory

import (
	"context"
	"sync"

	"assessment-quiz-service/internal/domain"
)

// SubmissionSink keeps submissions in process memory. It backs local demo
// runs without a database and is the sink used by service tests.
type SubmissionSink struct {
	mu          sync.Mutex
	submissions []domain.ScoredSubmission
	err         error
}

func NewSubmissionSink() *SubmissionSink {
	return &SubmissionSink{}
}

func (s *SubmissionSink) SaveSubmission(_ context.Context, sub domain.ScoredSubmission) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	sub.ID = int64(len(s.submissions) + 1)
	s.submissions = append(s.submissions, sub)
	return sub.ID, nil
}

// FailWith makes subsequent saves return err; nil restores normal behaviour.
func (s *SubmissionSink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Submissions returns a copy of everything saved so far.
func (s *SubmissionSink) Submissions() []domain.ScoredSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ScoredSubmission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// GetSubmission returns a saved submission by id.
func (s *SubmissionSink) GetSubmission(_ context.Context, id int64) (domain.ScoredSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || int(id) > len(s.submissions) {
		return domain.ScoredSubmission{}, domain.ErrSubmissionNotFound
	}
	return s.submissions[id-1], nil
}
