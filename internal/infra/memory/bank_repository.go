package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"assessment-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader reads the question bank from its backing file.
type BankLoader interface {
	LoadBank(ctx context.Context) (domain.QuestionBank, error)
}

// BankRepository caches the question bank with a TTL so the file is not re-read per quiz.
// A ttl of zero or less keeps the bank for the life of the process.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu     sync.RWMutex
	cached *cachedBank
}

type cachedBank struct {
	bank      domain.QuestionBank
	expiresAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context) (domain.QuestionBank, error) {
	if bank, ok := r.fresh(r.clock()); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		now := r.clock()
		if bank, ok := r.fresh(now); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if bank.Empty() {
			return domain.QuestionBank{}, domain.ErrSampling
		}

		r.mu.Lock()
		r.cached = &cachedBank{bank: bank, expiresAt: r.expiry(now)}
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

// Invalidate drops the cached bank so the next call reloads it.
func (r *BankRepository) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *BankRepository) fresh(now time.Time) (domain.QuestionBank, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached == nil {
		return domain.QuestionBank{}, false
	}
	if !r.cached.expiresAt.IsZero() && !r.cached.expiresAt.After(now) {
		return domain.QuestionBank{}, false
	}
	return r.cached.bank, true
}

func (r *BankRepository) expiry(now time.Time) time.Time {
	if r.ttl <= 0 {
		return time.Time{}
	}
	// add up to 10% jitter to spread reloads
	jitterMax := int64(r.ttl) / 10
	return now.Add(r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1)))
}

// StaticBankLoader is a loader backed by a fixed list (useful for tests/demos).
type StaticBankLoader struct {
	bank domain.QuestionBank
}

func NewStaticBankLoader(name string, questions []string) *StaticBankLoader {
	return &StaticBankLoader{bank: domain.QuestionBank{Name: name, Questions: questions}}
}

func (l *StaticBankLoader) LoadBank(_ context.Context) (domain.QuestionBank, error) {
	if l.bank.Empty() {
		return domain.QuestionBank{}, domain.ErrSourceLoad
	}
	out := make([]string, len(l.bank.Questions))
	copy(out, l.bank.Questions)
	return domain.QuestionBank{Name: l.bank.Name, Questions: out}, nil
}
