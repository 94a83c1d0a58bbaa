package app

import (
	"sync"
	"time"

	"assessment-quiz-service/internal/domain"
)

// Session is one candidate's attempt. It is owned by a single client connection;
// the mutex only serializes that client's reads against its countdown ticker.
type Session struct {
	id       string
	duration time.Duration
	now      func() time.Time

	mu        sync.Mutex
	phase     domain.Phase
	reason    domain.CompletionReason
	candidate domain.Candidate
	sample    domain.Sample
	current   int
	answers   domain.AnswerMap
	progress  int
	startedAt time.Time

	finalized    bool
	submission   *domain.ScoredSubmission
	persisting   bool
	persisted    bool
	submissionID int64
}

// FrozenAnswers is what the completion pipeline receives once a session is over.
type FrozenAnswers struct {
	SessionID string
	Candidate domain.Candidate
	Sample    domain.Sample
	Answers   domain.AnswerMap
	Reason    domain.CompletionReason
}

// NewSession returns a session in the not-started phase.
func NewSession(id string, duration time.Duration) *Session {
	return NewSessionWithClock(id, duration, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, duration time.Duration, now func() time.Time) *Session {
	if duration <= 0 {
		duration = domain.DefaultDuration
	}
	return &Session{
		id:       id,
		duration: duration,
		now:      now,
		phase:    domain.PhaseNotStarted,
		answers:  make(domain.AnswerMap),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start moves the session to in-progress with the given candidate and sample.
func (s *Session) Start(candidate domain.Candidate, sample domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseNotStarted {
		return domain.ErrAlreadyStarted
	}
	if !candidate.Valid() {
		return domain.ErrEmptyCandidate
	}
	if len(sample) == 0 {
		return domain.ErrSampling
	}

	s.candidate = candidate.Normalize()
	s.sample = sample
	s.current = 0
	s.answers = make(domain.AnswerMap)
	s.progress = 0
	s.startedAt = s.now()
	s.phase = domain.PhaseInProgress
	return nil
}

// Goto moves the current pointer, clamped into the sample bounds.
func (s *Session) Goto(index int) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgressLocked(); err != nil {
		return s.snapshotLocked(), err
	}
	s.current = clamp(index, 0, len(s.sample)-1)
	return s.snapshotLocked(), nil
}

// SaveAnswer stores text for the slot at index. It does not advance the pointer.
func (s *Session) SaveAnswer(index int, text string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgressLocked(); err != nil {
		return s.snapshotLocked(), err
	}
	if index < 0 || index >= len(s.sample) {
		return s.snapshotLocked(), domain.ErrIndexOutOfRange
	}
	s.answers[index] = text
	s.progress = (index + 1) * 100 / len(s.sample)
	return s.snapshotLocked(), nil
}

// Submit ends the attempt on candidate request. Submitting an already completed
// session is a no-op.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case domain.PhaseNotStarted:
		return domain.ErrNotStarted
	case domain.PhaseCompleted:
		return nil
	}
	if s.expireLocked() {
		return nil
	}
	s.completeLocked(domain.ReasonSubmitted)
	return nil
}

// Remaining returns the time left, clamped to zero. When the deadline has
// passed the session is completed as part of the same check.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	return s.remainingLocked()
}

// CheckTimeout reports whether this call moved the session to completed because
// the deadline passed.
func (s *Session) CheckTimeout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expireLocked()
}

// Phase returns the lifecycle phase after a time check.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	return s.phase
}

// Snapshot returns the current view after a time check.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	return s.snapshotLocked()
}

// Answers returns a copy of the answer map.
func (s *Session) Answers() domain.AnswerMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// BeginFinalize hands out the frozen answers exactly once after completion.
func (s *Session) BeginFinalize() (FrozenAnswers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	switch {
	case s.phase == domain.PhaseNotStarted:
		return FrozenAnswers{}, domain.ErrNotStarted
	case s.phase != domain.PhaseCompleted:
		return FrozenAnswers{}, domain.ErrNotCompleted
	case s.finalized:
		return FrozenAnswers{}, domain.ErrAlreadySubmitted
	}
	s.finalized = true

	sample := make(domain.Sample, len(s.sample))
	copy(sample, s.sample)
	return FrozenAnswers{
		SessionID: s.id,
		Candidate: s.candidate,
		Sample:    sample,
		Answers:   s.answers.Clone(),
		Reason:    s.reason,
	}, nil
}

// Finalized reports whether the completion pipeline has already taken the answers.
func (s *Session) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// Submission returns the scored submission kept after the pipeline ran, and
// whether it reached the store.
func (s *Session) Submission() (domain.ScoredSubmission, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submission == nil {
		return domain.ScoredSubmission{}, false, false
	}
	return *s.submission, s.persisted, true
}

// keepSubmission stores the scored submission and claims the first write for
// the caller.
func (s *Session) keepSubmission(sub domain.ScoredSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submission = &sub
	s.persisting = true
}

// claimPersist hands out the kept submission for a retry. Only one write may
// be in flight at a time.
func (s *Session) claimPersist() (domain.ScoredSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.submission == nil:
		return domain.ScoredSubmission{}, domain.ErrNotCompleted
	case s.persisted:
		return *s.submission, domain.ErrAlreadySubmitted
	case s.persisting:
		return *s.submission, domain.ErrSaveInProgress
	}
	s.persisting = true
	return *s.submission, nil
}

func (s *Session) releasePersist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisting = false
}

func (s *Session) markPersisted(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisting = false
	s.persisted = true
	s.submissionID = id
	if s.submission != nil {
		s.submission.ID = id
	}
}

func (s *Session) requireInProgressLocked() error {
	switch s.phase {
	case domain.PhaseNotStarted:
		return domain.ErrNotStarted
	case domain.PhaseCompleted:
		return domain.ErrSessionCompleted
	}
	if s.expireLocked() {
		return domain.ErrSessionCompleted
	}
	return nil
}

// expireLocked completes an in-progress session whose deadline has passed and
// reports whether it did so.
func (s *Session) expireLocked() bool {
	if s.phase != domain.PhaseInProgress {
		return false
	}
	if s.remainingLocked() > 0 {
		return false
	}
	s.completeLocked(domain.ReasonTimeout)
	return true
}

func (s *Session) completeLocked(reason domain.CompletionReason) {
	s.phase = domain.PhaseCompleted
	s.reason = reason
}

func (s *Session) remainingLocked() time.Duration {
	if s.phase == domain.PhaseNotStarted {
		return s.duration
	}
	left := s.duration - s.now().Sub(s.startedAt)
	if left < 0 || s.phase == domain.PhaseCompleted {
		return 0
	}
	return left
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		SessionID:        s.id,
		Phase:            s.phase,
		Candidate:        s.candidate,
		CurrentIndex:     s.current,
		Total:            len(s.sample),
		Progress:         s.progress,
		RemainingSeconds: int(s.remainingLocked() / time.Second),
		Answered:         s.answers.Indices(),
		Reason:           s.reason,
		Persisted:        s.persisted,
		SubmissionID:     s.submissionID,
	}
	if s.phase == domain.PhaseInProgress && s.current < len(s.sample) {
		snap.CurrentQuestion = s.sample[s.current].Text
		snap.CurrentAnswer = s.answers[s.current]
	}
	return snap
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
