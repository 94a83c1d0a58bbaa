package app

import (
	"math/rand"
	"strings"

	"assessment-quiz-service/internal/domain"
)

// Sample draws min(k, len(bank)) distinct questions uniformly at random, in random order.
// A k below 1 falls back to domain.DefaultSampleSize. An empty bank yields ErrSampling.
func Sample(bank []string, k int, rnd *rand.Rand) (domain.Sample, error) {
	if len(bank) == 0 {
		return nil, domain.ErrSampling
	}
	if k < 1 {
		k = domain.DefaultSampleSize
	}
	if k > len(bank) {
		k = len(bank)
	}

	// partial Fisher-Yates over a copy; the bank is shared and read-only
	pool := make([]string, len(bank))
	copy(pool, bank)
	for i := 0; i < k; i++ {
		j := i + rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	sample := make(domain.Sample, k)
	for i := 0; i < k; i++ {
		sample[i] = domain.Question{Index: i, Text: strings.TrimSpace(pool[i])}
	}
	return sample, nil
}
