package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"assessment-quiz-service/internal/app"
	"assessment-quiz-service/internal/config"
	"assessment-quiz-service/internal/domain"
	"assessment-quiz-service/internal/infra/memory"
	"assessment-quiz-service/internal/infra/postgres"
	infraredis "assessment-quiz-service/internal/infra/redis"
	"assessment-quiz-service/internal/infra/scoring"
	"assessment-quiz-service/internal/infra/source"
	"assessment-quiz-service/internal/infra/sqlite"
	transport "assessment-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// runtime holds the assembled service and whatever must be released on exit.
type runtime struct {
	service *app.QuizService
	lookup  transport.SubmissionLookup
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	fileSource := source.NewFileSource(cfg.Quiz.BankPath)
	bankTTL := config.TTLDuration(cfg.Quiz.BankTTL, 10*time.Minute)

	var bank app.BankRepository = memory.NewBankRepository(fileSource, bankTTL)
	var sessions app.SessionRepository = memory.NewSessionStore()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
		bank = infraredis.NewBankRepository(redisClient, fileSource, fileSource.Name(), bankTTL)
		sessions = infraredis.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, time.Hour))
	}

	var scorer app.Scorer
	client, err := scoring.New(ctx, scoring.Config{
		Provider: cfg.Scorer.Provider,
		APIKey:   cfg.Scorer.APIKey,
		Model:    cfg.Scorer.Model,
	})
	if err != nil {
		log.Printf("scorer disabled, answers will be stored unscored: %v", err)
	} else {
		scorer = client
		rt.closers = append(rt.closers, func() { _ = client.Close() })
	}

	sink, err := buildSink(ctx, cfg, rt)
	if err != nil {
		return nil, err
	}

	rt.service = app.NewQuizService(sessions, bank, scorer, sink, app.Options{
		SampleSize:   cfg.Quiz.SampleSize,
		Duration:     config.TTLDuration(cfg.Quiz.Duration, domain.DefaultDuration),
		Role:         cfg.Quiz.Role,
		ScoreTimeout: config.TTLDuration(cfg.Scorer.Timeout, 30*time.Second),
	})
	ok = true
	return rt, nil
}

func buildSink(ctx context.Context, cfg config.Config, rt *runtime) (app.SubmissionSink, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("store driver postgres requires postgres.url")
		}
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		sink := postgres.NewSubmissionSink(postgres.OpenDB(cfg.Postgres.URL))
		rt.closers = append(rt.closers, func() { _ = sink.Close() })

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		rt.lookup = postgres.NewSubmissionReader(pool)
		return sink, nil

	case config.DriverSQLite:
		sink, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = sink.Close() })
		rt.lookup = sink
		return sink, nil

	case config.DriverMemory:
		log.Printf("no database configured, submissions are kept in memory only")
		sink := memory.NewSubmissionSink()
		rt.lookup = sink
		return sink, nil
	}
	return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
}
