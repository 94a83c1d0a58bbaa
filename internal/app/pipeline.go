package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"assessment-quiz-service/internal/domain"
)

// complete runs the scoring and persistence pipeline for a completed session.
// BeginFinalize guarantees it happens at most once per session.
func (s *QuizService) complete(ctx context.Context, session *Session) (domain.ScoredSubmission, error) {
	frozen, err := session.BeginFinalize()
	if err != nil {
		return domain.ScoredSubmission{}, err
	}

	sub := s.scoreAll(ctx, frozen)
	session.keepSubmission(sub)
	return s.persist(ctx, session, sub)
}

// scoreAll builds the submission, scoring answered slots one by one in index order.
// A scoring failure is recorded on its slot and does not stop the others.
func (s *QuizService) scoreAll(ctx context.Context, frozen FrozenAnswers) domain.ScoredSubmission {
	sub := domain.ScoredSubmission{
		SessionID:   frozen.SessionID,
		Candidate:   frozen.Candidate,
		Role:        s.role,
		Reason:      frozen.Reason,
		SubmittedAt: s.clock().UTC(),
	}

	for i := 0; i < domain.SubmissionSlots && i < len(frozen.Sample); i++ {
		question := frozen.Sample[i].Text
		answer := frozen.Answers[i]
		slot := domain.SlotResult{Question: question, Answer: answer}

		if strings.TrimSpace(answer) == "" {
			slot.Answer = ""
			sub.Slots[i] = slot
			continue
		}

		score, err := s.scoreOne(ctx, question, answer)
		if err != nil {
			log.Printf("quiz %s: scoring slot %d failed: %v", frozen.SessionID, i+1, err)
			slot.ScoreError = err.Error()
		} else {
			slot.Score = &score
		}
		sub.Slots[i] = slot
	}
	return sub
}

func (s *QuizService) scoreOne(ctx context.Context, question, answer string) (int, error) {
	if s.scorer == nil {
		return 0, fmt.Errorf("%w: no scorer configured", domain.ErrScoring)
	}
	if s.scoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scoreTimeout)
		defer cancel()
	}
	score, err := s.scorer.Score(ctx, question, answer)
	if errors.Is(err, domain.ErrScoring) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrScoring, err)
	}
	if score < 0 || score > 10 {
		return 0, fmt.Errorf("%w: score %d outside 0-10", domain.ErrScoring, score)
	}
	return score, nil
}

func (s *QuizService) persist(ctx context.Context, session *Session, sub domain.ScoredSubmission) (domain.ScoredSubmission, error) {
	id, err := s.sink.SaveSubmission(ctx, sub)
	if err != nil {
		session.releasePersist()
		log.Printf("quiz %s: saving submission failed: %v", sub.SessionID, err)
		return sub, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	sub.ID = id
	session.markPersisted(id)
	log.Printf("quiz %s: submission %d saved (%d/%d slots scored, reason=%s)", sub.SessionID, id, sub.ScoredCount(), domain.SubmissionSlots, sub.Reason)
	return sub, nil
}
