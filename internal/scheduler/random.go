package scheduler

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// RandomSource supplies uniform integers in [0, n). Implementations shared
// between goroutines must be safe for concurrent use.
type RandomSource interface {
	IntN(n int) int
}

// lockedRand serializes access to a *rand.Rand, which is not reentrant.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

// NewRandomSource returns a concurrency-safe PCG source. A zero seed draws
// the seed from the runtime's random state.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// DrawUniqueDays picks count distinct day numbers in [1, upper] using a
// partial Fisher-Yates shuffle, so every subset is equally likely and the
// call always terminates. Results are in draw order.
func DrawUniqueDays(upper, count int, rng RandomSource) ([]int, error) {
	if count < 0 {
		count = 0
	}
	if count > upper {
		return nil, fmt.Errorf("%w: %d unique values requested from %d", ErrInsufficientRange, count, upper)
	}

	pool := make([]int, upper)
	for i := range pool {
		pool[i] = i + 1
	}
	for i := 0; i < count; i++ {
		j := i + rng.IntN(upper-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count], nil
}

// SurpriseDates draws count distinct dates in today's month. The count is
// clamped to the number of days in that month. Dates are returned at
// midnight in today's location, in ascending order.
func SurpriseDates(count int, today time.Time, rng RandomSource) []time.Time {
	if count <= 0 {
		return nil
	}
	year, month, _ := today.Date()
	days := DaysIn(year, month)
	count = min(count, days)

	picked, err := DrawUniqueDays(days, count, rng)
	if err != nil {
		// Unreachable after clamping.
		return nil
	}

	out := make([]time.Time, len(picked))
	for i, d := range picked {
		out[i] = time.Date(year, month, d, 0, 0, 0, 0, today.Location())
	}
	slices.SortFunc(out, time.Time.Compare)
	return out
}
