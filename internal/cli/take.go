package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"assessment-quiz-service/internal/app"
	"assessment-quiz-service/internal/config"
	"assessment-quiz-service/internal/domain"
	"github.com/spf13/cobra"
)

const maxAttempts = 3

// NewTakeCmd runs one quiz attempt in the terminal.
func NewTakeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "take",
		Short: "Take the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			return RunTerminal(cmd.Context(), os.Stdin, os.Stdout, rt.service)
		},
	}
}

// RunTerminal asks for the candidate, then shows one question at a time.
// Lines starting with ':' are commands; any other line saves an answer for
// the current question. The deadline is checked on every input.
func RunTerminal(ctx context.Context, in io.Reader, out io.Writer, service *app.QuizService) error {
	reader := bufio.NewReader(in)

	name, err := prompt(reader, out, "Name: ")
	if err != nil {
		return err
	}
	email, err := prompt(reader, out, "Email: ")
	if err != nil {
		return err
	}

	snap, err := service.Start(ctx, domain.Candidate{Name: name, Email: email})
	if err != nil {
		return err
	}
	sessionID := snap.SessionID
	defer service.Close(ctx, sessionID)

	fmt.Fprintf(out, "\nYou have %s. Commands: :n next, :p previous, :g N go to, :s submit\n", snap.Countdown())
	printQuestion(out, snap)

	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return errors.New("input closed before the quiz was submitted")
		}
		line = strings.TrimRight(line, "\r\n")

		snap, sub, done, err := service.Tick(ctx, sessionID)
		if done {
			fmt.Fprintln(out, "\nTime is up.")
			return finish(ctx, reader, out, service, sessionID, sub, err)
		}
		if err != nil {
			return err
		}

		switch cmd := strings.TrimSpace(line); {
		case cmd == "":
			printQuestion(out, snap)
		case cmd == ":s":
			sub, err := service.Submit(ctx, sessionID)
			if err != nil && !errors.Is(err, domain.ErrPersistence) {
				return err
			}
			return finish(ctx, reader, out, service, sessionID, sub, err)
		case cmd == ":n", cmd == ":p", strings.HasPrefix(cmd, ":g"):
			target, ok := navigate(cmd, snap.CurrentIndex)
			if !ok {
				fmt.Fprintln(out, "Usage: :g N (1-based question number)")
				continue
			}
			next, err := service.Goto(ctx, sessionID, target)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			printQuestion(out, next)
		case strings.HasPrefix(cmd, ":"):
			fmt.Fprintln(out, "Unknown command. Use :n, :p, :g N or :s")
		default:
			saved, err := service.SaveAnswer(ctx, sessionID, snap.CurrentIndex, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Progress saved! (%d%%, %s left)\n", saved.Progress, saved.Countdown())
		}
	}
}

func navigate(cmd string, current int) (int, bool) {
	switch cmd {
	case ":n":
		return current + 1, true
	case ":p":
		return current - 1, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(cmd, ":g")))
	if err != nil {
		return 0, false
	}
	return n - 1, true
}

// finish prints the outcome and, when the store was unavailable, offers retries.
func finish(ctx context.Context, reader *bufio.Reader, out io.Writer, service *app.QuizService, sessionID string, sub domain.ScoredSubmission, err error) error {
	for attempt := 1; err != nil && attempt <= maxAttempts; attempt++ {
		if !errors.Is(err, domain.ErrPersistence) {
			return err
		}
		fmt.Fprintf(out, "Your answers were scored but could not be saved: %v\nPress Enter to retry.\n", err)
		if _, readErr := reader.ReadString('\n'); readErr != nil {
			return err
		}
		sub, err = service.RetryPersist(ctx, sessionID)
	}
	if err != nil {
		return err
	}
	printSummary(out, sub)
	return nil
}

func printQuestion(out io.Writer, snap domain.Snapshot) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Question %d/%d  [%s left, %d%% done]\n\n", snap.CurrentIndex+1, snap.Total, snap.Countdown(), snap.Progress)
	fmt.Fprintln(out, snap.CurrentQuestion)
	if snap.CurrentAnswer != "" {
		fmt.Fprintf(out, "\nSaved answer: %s\n", snap.CurrentAnswer)
	}
	fmt.Fprintln(out)
}

func printSummary(out io.Writer, sub domain.ScoredSubmission) {
	fmt.Fprintf(out, "\nQuiz Successfully Completed (submission %d)\n\n", sub.ID)
	for i, slot := range sub.Slots {
		if slot.Question == "" {
			continue
		}
		score := "-"
		if slot.Score != nil {
			score = strconv.Itoa(*slot.Score)
		}
		fmt.Fprintf(out, "Q%d: %s/10\n", i+1, score)
	}
	fmt.Fprintf(out, "\nTotal: %d (%d scored)\n", sub.TotalScore(), sub.ScoredCount())
}

func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprint(out, label)
		value, err := reader.ReadString('\n')
		value = strings.TrimSpace(value)
		if value != "" {
			return value, nil
		}
		if err != nil {
			break
		}
	}
	return "", domain.ErrEmptyCandidate
}
