package domain

import "errors"

// Error categories. Callers match on these with errors.Is; the specific
// errors below wrap one of them.
var (
	// ErrSourceLoad means the question file is missing, unreadable or empty.
	ErrSourceLoad = errors.New("question source unavailable")
	// ErrSampling means no sample could be drawn because the bank is empty.
	ErrSampling = errors.New("question bank is empty")
	// ErrScoring means the scoring service failed or replied with an unparseable score.
	ErrScoring = errors.New("answer could not be scored")
	// ErrPersistence means the submission could not be written to the store.
	ErrPersistence = errors.New("submission could not be saved")
	// ErrValidation means the request was rejected before any state changed.
	ErrValidation = errors.New("invalid request")
)

var (
	// ErrEmptyCandidate is returned when name or email is blank at quiz start.
	ErrEmptyCandidate = wrap(ErrValidation, "name and email are required")
	// ErrIndexOutOfRange is returned when a save targets a slot outside the sample.
	ErrIndexOutOfRange = wrap(ErrValidation, "question index out of range")
	// ErrNotStarted is returned for quiz actions before Start.
	ErrNotStarted = wrap(ErrValidation, "quiz has not started")
	// ErrAlreadyStarted is returned when Start is called twice on one session.
	ErrAlreadyStarted = wrap(ErrValidation, "quiz already started")
	// ErrSessionCompleted is returned for navigation or saves after completion.
	ErrSessionCompleted = wrap(ErrValidation, "quiz is over")
	// ErrNotCompleted is returned when finalizing a session that is still running.
	ErrNotCompleted = wrap(ErrValidation, "quiz is still in progress")
	// ErrAlreadySubmitted is returned when a completed session is finalized a second time.
	ErrAlreadySubmitted = wrap(ErrValidation, "submission already recorded")
	// ErrSaveInProgress is returned when a retry arrives while the submission is being written.
	ErrSaveInProgress = wrap(ErrValidation, "submission is being saved")
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = wrap(ErrValidation, "quiz session not found")
	// ErrSubmissionNotFound is returned by readers when no row has the requested id.
	ErrSubmissionNotFound = errors.New("submission not found")
)

type categorized struct {
	category error
	msg      string
}

func wrap(category error, msg string) error {
	return &categorized{category: category, msg: msg}
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Unwrap() error { return e.category }
