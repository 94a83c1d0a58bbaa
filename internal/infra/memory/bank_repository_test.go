package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"assessment-quiz-service/internal/domain"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{BankLoader: NewStaticBankLoader("java", []string{"What is a JVM?", "Explain GC."})}
	repo := NewBankRepository(loader, time.Minute)

	bank, err := repo.GetBank(context.Background())
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if len(bank.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(bank.Questions))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{BankLoader: NewStaticBankLoader("java", []string{"q1"})}
	repo := NewBankRepository(loader, time.Minute)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetBank(context.Background()); err != nil {
		t.Fatalf("get bank after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryPropagatesLoadError(t *testing.T) {
	repo := NewBankRepository(NewStaticBankLoader("empty", nil), time.Minute)

	_, err := repo.GetBank(context.Background())
	if !errors.Is(err, domain.ErrSourceLoad) {
		t.Fatalf("expected source load error, got %v", err)
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context) (domain.QuestionBank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx)
}
