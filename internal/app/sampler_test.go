package app

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"assessment-quiz-service/internal/domain"
)

func TestSampleReturnsDistinctEntriesFromBank(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for n := 1; n <= 15; n++ {
		bank := make([]string, n)
		inBank := make(map[string]bool, n)
		for i := range bank {
			bank[i] = fmt.Sprintf("question %d", i)
			inBank[bank[i]] = true
		}
		for _, k := range []int{1, 3, 10, 20} {
			sample, err := Sample(bank, k, rnd)
			if err != nil {
				t.Fatalf("n=%d k=%d: %v", n, k, err)
			}
			want := k
			if n < k {
				want = n
			}
			if len(sample) != want {
				t.Fatalf("n=%d k=%d: expected %d entries, got %d", n, k, want, len(sample))
			}
			seen := make(map[string]bool, len(sample))
			for i, q := range sample {
				if q.Index != i {
					t.Fatalf("expected index %d, got %d", i, q.Index)
				}
				if !inBank[q.Text] {
					t.Fatalf("%q not drawn from bank", q.Text)
				}
				if seen[q.Text] {
					t.Fatalf("duplicate %q in sample", q.Text)
				}
				seen[q.Text] = true
			}
		}
	}
}

func TestSampleDoesNotMutateBank(t *testing.T) {
	bank := []string{"a", "b", "c", "d"}
	if _, err := Sample(bank, 2, rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if bank[0] != "a" || bank[1] != "b" || bank[2] != "c" || bank[3] != "d" {
		t.Fatalf("bank was reordered: %v", bank)
	}
}

func TestSampleEmptyBank(t *testing.T) {
	sample, err := Sample(nil, 10, rand.New(rand.NewSource(1)))
	if !errors.Is(err, domain.ErrSampling) {
		t.Fatalf("expected sampling error, got %v", err)
	}
	if sample != nil {
		t.Fatalf("expected no sample, got %v", sample)
	}
}

func TestSampleDefaultsNonPositiveSize(t *testing.T) {
	bank := make([]string, 12)
	for i := range bank {
		bank[i] = fmt.Sprintf("q%d", i)
	}
	sample, err := Sample(bank, 0, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sample) != domain.DefaultSampleSize {
		t.Fatalf("expected default size %d, got %d", domain.DefaultSampleSize, len(sample))
	}
}
