package app

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"assessment-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// BankRepository returns the question bank (from cache/backing file).
type BankRepository interface {
	GetBank(ctx context.Context) (domain.QuestionBank, error)
}

// Scorer rates one answer on a 0-10 scale.
type Scorer interface {
	Score(ctx context.Context, question, answer string) (int, error)
}

// SubmissionSink durably stores one finalized submission and returns its id.
type SubmissionSink interface {
	SaveSubmission(ctx context.Context, submission domain.ScoredSubmission) (int64, error)
}

// Options tunes a QuizService. Zero values fall back to the package defaults.
type Options struct {
	SampleSize   int
	Duration     time.Duration
	Role         string
	ScoreTimeout time.Duration
	Clock        func() time.Time
	Rand         *rand.Rand
	NewID        func() string
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions SessionRepository
	bank     BankRepository
	scorer   Scorer
	sink     SubmissionSink

	sampleSize   int
	duration     time.Duration
	role         string
	scoreTimeout time.Duration
	clock        func() time.Time
	newID        func() string

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizService(sessions SessionRepository, bank BankRepository, scorer Scorer, sink SubmissionSink, opts Options) *QuizService {
	if opts.SampleSize < 1 || opts.SampleSize > domain.SubmissionSlots {
		opts.SampleSize = domain.DefaultSampleSize
	}
	if opts.Duration <= 0 {
		opts.Duration = domain.DefaultDuration
	}
	if opts.Role == "" {
		opts.Role = domain.DefaultRole
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &QuizService{
		sessions:     sessions,
		bank:         bank,
		scorer:       scorer,
		sink:         sink,
		sampleSize:   opts.SampleSize,
		duration:     opts.Duration,
		role:         opts.Role,
		scoreTimeout: opts.ScoreTimeout,
		clock:        opts.Clock,
		newID:        opts.NewID,
		rnd:          opts.Rand,
	}
}

// Duration returns the configured time limit.
func (s *QuizService) Duration() time.Duration {
	return s.duration
}

// Start creates a fresh session for the candidate, draws its sample and starts the clock.
func (s *QuizService) Start(ctx context.Context, candidate domain.Candidate) (domain.Snapshot, error) {
	if !candidate.Valid() {
		return domain.Snapshot{}, domain.ErrEmptyCandidate
	}

	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	s.rndMu.Lock()
	sample, err := Sample(bank.Questions, s.sampleSize, s.rnd)
	s.rndMu.Unlock()
	if err != nil {
		return domain.Snapshot{}, err
	}

	session := NewSessionWithClock(s.newID(), s.duration, s.clock)
	if err := session.Start(candidate, sample); err != nil {
		return domain.Snapshot{}, err
	}
	s.sessions.Put(session)
	log.Printf("quiz %s started for %s (%d questions)", session.ID(), candidate.Normalize().Email, len(sample))
	return session.Snapshot(), nil
}

// Snapshot returns the current view of a session.
func (s *QuizService) Snapshot(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Goto moves the session to another question.
func (s *QuizService) Goto(_ context.Context, sessionID string, index int) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Goto(index)
}

// SaveAnswer records the answer for a question slot.
func (s *QuizService) SaveAnswer(_ context.Context, sessionID string, index int, answer string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.SaveAnswer(index, answer)
}

// Submit ends the attempt on candidate request and runs the completion pipeline.
func (s *QuizService) Submit(ctx context.Context, sessionID string) (domain.ScoredSubmission, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ScoredSubmission{}, domain.ErrSessionNotFound
	}
	if err := session.Submit(); err != nil {
		return domain.ScoredSubmission{}, err
	}
	return s.complete(ctx, session)
}

// Tick performs the time check and, when the deadline has passed, runs the
// completion pipeline. done reports whether a submission was produced by this call.
func (s *QuizService) Tick(ctx context.Context, sessionID string) (snap domain.Snapshot, sub domain.ScoredSubmission, done bool, err error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ScoredSubmission{}, false, domain.ErrSessionNotFound
	}
	snap = session.Snapshot()
	// an explicit submit runs its own pipeline; the tick only finishes timeouts
	if snap.Phase == domain.PhaseCompleted && snap.Reason == domain.ReasonTimeout && !session.Finalized() {
		sub, err = s.complete(ctx, session)
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			return session.Snapshot(), domain.ScoredSubmission{}, false, nil
		}
		return session.Snapshot(), sub, true, err
	}
	return snap, domain.ScoredSubmission{}, false, nil
}

// RetryPersist sends a submission that failed to persist to the sink again.
// The kept answers and scores are reused; nothing is scored twice. A retry
// while another write is still running gets ErrSaveInProgress.
func (s *QuizService) RetryPersist(ctx context.Context, sessionID string) (domain.ScoredSubmission, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ScoredSubmission{}, domain.ErrSessionNotFound
	}
	sub, err := session.claimPersist()
	if err != nil {
		return sub, err
	}
	return s.persist(ctx, session, sub)
}

// Close drops the session from the repository.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}
