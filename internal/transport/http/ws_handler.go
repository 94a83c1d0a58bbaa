package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"assessment-quiz-service/internal/app"
	"assessment-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	savedNotice     = "Progress saved!"
	completedNotice = "Quiz Successfully Completed"
	retryNotice     = "Your answers were scored but could not be saved. Send retry to try again."
)

type WSHandler struct {
	service  *app.QuizService
	tick     time.Duration
	upgrader websocket.Upgrader
}

// NewWSHandler serves one quiz session per websocket connection. tick is the
// countdown interval; zero means one second.
func NewWSHandler(service *app.QuizService, tick time.Duration) *WSHandler {
	if tick <= 0 {
		tick = time.Second
	}
	return &WSHandler{
		service: service,
		tick:    tick,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type savePayload struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type statePayload struct {
	domain.Snapshot
	Countdown string `json:"countdown"`
}

type savedPayload struct {
	Message  string `json:"message"`
	Index    int    `json:"index"`
	Progress int    `json:"progress"`
}

type completedPayload struct {
	Message    string                  `json:"message"`
	Persisted  bool                    `json:"persisted"`
	Submission domain.ScoredSubmission `json:"submission"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// connSession tracks the session owned by one connection. The read loop
// replaces it on start; the ticker reads it.
type connSession struct {
	mu sync.Mutex
	id string
}

func (c *connSession) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *connSession) swap(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.id
	c.id = id
	return old
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	current := &connSession{}
	defer func() {
		if id := current.get(); id != "" {
			h.service.Close(ctx, id)
		}
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(h.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, msg := range h.onTick(ctx, current.get()) {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handle(ctx, current, inbound) {
			send <- msg
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}

// onTick pushes the countdown and completes the session once its time is up.
func (h *WSHandler) onTick(ctx context.Context, sessionID string) []outboundMessage[any] {
	if sessionID == "" {
		return nil
	}
	snap, sub, done, err := h.service.Tick(ctx, sessionID)
	switch {
	case done:
		return completedMessages(snap, sub, err)
	case err != nil:
		return []outboundMessage[any]{errorMessage(err)}
	case snap.Phase == domain.PhaseInProgress:
		return []outboundMessage[any]{stateMessage(snap)}
	}
	return nil
}

func (h *WSHandler) handle(ctx context.Context, current *connSession, inbound inboundMessage) []outboundMessage[any] {
	sessionID := current.get()
	if inbound.Type != "start" && sessionID == "" {
		return []outboundMessage[any]{errorMessage(domain.ErrNotStarted)}
	}

	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage[any]{invalidPayload("start")}
		}
		snap, err := h.service.Start(ctx, domain.Candidate{Name: payload.Name, Email: payload.Email})
		if err != nil {
			return []outboundMessage[any]{errorMessage(err)}
		}
		if old := current.swap(snap.SessionID); old != "" {
			h.service.Close(ctx, old)
		}
		return []outboundMessage[any]{stateMessage(snap)}

	case "goto":
		var payload gotoPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage[any]{invalidPayload("goto")}
		}
		snap, err := h.service.Goto(ctx, sessionID, payload.Index)
		if err != nil {
			return []outboundMessage[any]{errorMessage(err)}
		}
		return []outboundMessage[any]{stateMessage(snap)}

	case "save":
		var payload savePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage[any]{invalidPayload("save")}
		}
		snap, err := h.service.SaveAnswer(ctx, sessionID, payload.Index, payload.Answer)
		if err != nil {
			return []outboundMessage[any]{errorMessage(err)}
		}
		return []outboundMessage[any]{
			{Type: "saved", Payload: savedPayload{Message: savedNotice, Index: payload.Index, Progress: snap.Progress}},
			stateMessage(snap),
		}

	case "submit":
		sub, err := h.service.Submit(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrPersistence) {
			return []outboundMessage[any]{errorMessage(err)}
		}
		snap, _ := h.service.Snapshot(ctx, sessionID)
		return completedMessages(snap, sub, err)

	case "retry":
		sub, err := h.service.RetryPersist(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrPersistence) {
			return []outboundMessage[any]{errorMessage(err)}
		}
		snap, _ := h.service.Snapshot(ctx, sessionID)
		return completedMessages(snap, sub, err)
	}
	return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}}
}

func completedMessages(snap domain.Snapshot, sub domain.ScoredSubmission, err error) []outboundMessage[any] {
	payload := completedPayload{Message: completedNotice, Persisted: err == nil, Submission: sub}
	msgs := []outboundMessage[any]{}
	if err != nil {
		payload.Message = retryNotice
		msgs = append(msgs, errorMessage(err))
	}
	msgs = append(msgs, stateMessage(snap), outboundMessage[any]{Type: "completed", Payload: payload})
	return msgs
}

func stateMessage(snap domain.Snapshot) outboundMessage[any] {
	return outboundMessage[any]{Type: "state", Payload: statePayload{Snapshot: snap, Countdown: snap.Countdown()}}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

func invalidPayload(kind string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid " + kind + " payload"}}
}
