package redis

import (
	"context"
	"math/rand"
	"time"

	"assessment-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BankLoader reads the question bank from its backing file.
type BankLoader interface {
	LoadBank(ctx context.Context) (domain.QuestionBank, error)
}

// BankRepository caches the question bank in Redis and falls back to a loader on cache miss.
// Questions are stored in order as: RPUSH bank:{name}:questions {text}...
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	name   string
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, name string, ttl time.Duration) *BankRepository {
	if name == "" {
		name = "default"
	}
	return &BankRepository{
		client: client,
		loader: loader,
		name:   name,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context) (domain.QuestionBank, error) {
	key := r.questionsKey()

	questions, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err == nil && len(questions) > 0 {
		return domain.QuestionBank{Name: r.name, Questions: questions}, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		questions, err := r.client.LRange(ctx, key, 0, -1).Result()
		if err == nil && len(questions) > 0 {
			return domain.QuestionBank{Name: r.name, Questions: questions}, nil
		}

		bank, err := r.loader.LoadBank(ctx)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if bank.Empty() {
			return domain.QuestionBank{}, domain.ErrSampling
		}

		values := make([]interface{}, len(bank.Questions))
		for i, q := range bank.Questions {
			values[i] = q
		}
		ttl := r.ttlWithJitter()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, values...)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// cache write is best-effort; the loaded bank is still served
		_, _ = pipe.Exec(ctx)

		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

func (r *BankRepository) questionsKey() string {
	return "bank:" + r.name + ":questions"
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
