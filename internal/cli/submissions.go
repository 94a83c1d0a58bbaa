package cli

import (
	"fmt"
	"io"
	"os"

	"assessment-quiz-service/internal/config"
	"assessment-quiz-service/internal/domain"
	"assessment-quiz-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSubmissionsCmd lists the newest stored submissions from Postgres.
func NewSubmissionsCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "List recent submissions stored in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured (set postgres.url or POSTGRES_URL)")
			}
			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			subs, err := postgres.NewSubmissionReader(pool).ListSubmissions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printSubmissions(os.Stdout, subs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of submissions to show")
	return cmd
}

func printSubmissions(out io.Writer, subs []domain.ScoredSubmission) {
	if len(subs) == 0 {
		fmt.Fprintln(out, "no submissions yet")
		return
	}
	for _, sub := range subs {
		fmt.Fprintf(out, "%d\t%s\t%s <%s>\t%s\t%d/%d scored\ttotal %d\n",
			sub.ID,
			sub.SubmittedAt.Format("2006-01-02 15:04"),
			sub.Candidate.Name,
			sub.Candidate.Email,
			sub.Role,
			sub.ScoredCount(),
			domain.SubmissionSlots,
			sub.TotalScore(),
		)
	}
}
