package integration

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"assessment-quiz-service/internal/app"
	"assessment-quiz-service/internal/domain"
	"assessment-quiz-service/internal/infra/postgres"
	pgmigrations "assessment-quiz-service/internal/infra/postgres/migrations"
	infraredis "assessment-quiz-service/internal/infra/redis"
	"assessment-quiz-service/internal/infra/source"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"
)

func TestQuizSubmissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateEvaluated(t, ctx, pgURL)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	bankPath := writeBank(t, 12)
	fileSource := source.NewFileSource(bankPath)
	bank := infraredis.NewBankRepository(redisClient, fileSource, fileSource.Name(), 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)

	db := postgres.OpenDB(pgURL)
	sink := postgres.NewSubmissionSink(db)
	defer sink.Close()

	service := app.NewQuizService(sessionStore, bank, lengthScorer{}, sink, app.Options{
		Rand: rand.New(rand.NewSource(11)),
	})

	snap, err := service.Start(ctx, domain.Candidate{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if live, err := sessionStore.Live(ctx); err != nil || live != 1 {
		t.Fatalf("expected one live session marker, got %d (%v)", live, err)
	}
	for i := 0; i < 4; i++ {
		if _, err := service.SaveAnswer(ctx, snap.SessionID, i, strings.Repeat("x", i+3)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	sub, err := service.Submit(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.ID == 0 {
		t.Fatalf("expected a database id")
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	reader := postgres.NewSubmissionReader(pool)

	stored, err := reader.GetSubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if stored.Candidate.Email != "ada@example.com" || stored.Role != domain.DefaultRole {
		t.Fatalf("unexpected stored identity: %+v", stored)
	}
	for i, slot := range stored.Slots {
		if slot.Question == "" {
			t.Fatalf("slot %d lost its question", i)
		}
		if i < 4 {
			if slot.Score == nil || *slot.Score != i+3 {
				t.Fatalf("slot %d: expected score %d, got %v", i, i+3, slot.Score)
			}
			continue
		}
		if slot.Answer != "" || slot.Score != nil {
			t.Fatalf("slot %d: expected unanswered, got %+v", i, slot)
		}
	}
	if stored.SubmittedAt.IsZero() {
		t.Fatalf("expected submission time default")
	}

	recent, err := reader.ListSubmissions(ctx, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected one row, got %d", len(recent))
	}
}

// lengthScorer scores an answer by its length so stored scores are predictable.
type lengthScorer struct{}

func (lengthScorer) Score(_ context.Context, _, answer string) (int, error) {
	if len(answer) > 10 {
		return 10, nil
	}
	return len(answer), nil
}

func writeBank(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Question\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Java question %d\n", i)
	}
	path := filepath.Join(t.TempDir(), "bank.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	return path
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateEvaluated(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	db := postgres.OpenDB(dsn)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
