package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"assessment-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SubmissionLookup reads a stored submission by id.
type SubmissionLookup interface {
	GetSubmission(ctx context.Context, id int64) (domain.ScoredSubmission, error)
}

// NewRouter mounts the websocket quiz and the operator endpoints. The
// submissions route is only mounted when lookup is non-nil.
func NewRouter(ws *WSHandler, lookup SubmissionLookup) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	if lookup != nil {
		r.Get("/submissions/{submissionID}", submissionHandler(lookup))
	}
	return r
}

func submissionHandler(lookup SubmissionLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "submissionID"), 10, 64)
		if err != nil || id < 1 {
			http.Error(w, "invalid submission id", http.StatusBadRequest)
			return
		}
		sub, err := lookup.GetSubmission(r.Context(), id)
		switch {
		case errors.Is(err, domain.ErrSubmissionNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			log.Printf("get submission %d: %v", id, err)
			http.Error(w, "failed to load submission", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, sub)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
