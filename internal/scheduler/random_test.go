package scheduler_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
)

func TestDrawUniqueDays(t *testing.T) {
	days, err := scheduler.DrawUniqueDays(31, 31, scheduler.NewRandomSource(7))
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, d := range days {
		assert.GreaterOrEqual(t, d, 1)
		assert.LessOrEqual(t, d, 31)
		seen[d] = true
	}
	assert.Len(t, seen, 31, "a full draw is a permutation")
}

func TestDrawUniqueDays_InsufficientRange(t *testing.T) {
	_, err := scheduler.DrawUniqueDays(28, 29, firstRand{})
	assert.ErrorIs(t, err, scheduler.ErrInsufficientRange)
}

func TestDrawUniqueDays_ZeroAndNegative(t *testing.T) {
	days, err := scheduler.DrawUniqueDays(30, 0, firstRand{})
	require.NoError(t, err)
	assert.Empty(t, days)

	days, err = scheduler.DrawUniqueDays(30, -4, firstRand{})
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestSurpriseDates_DeterministicWithSeed(t *testing.T) {
	today := date(2025, 10, 3)

	a := scheduler.SurpriseDates(4, today, scheduler.NewRandomSource(99))
	b := scheduler.SurpriseDates(4, today, scheduler.NewRandomSource(99))

	assert.Equal(t, a, b)
	require.Len(t, a, 4)
	for i := 1; i < len(a); i++ {
		assert.True(t, a[i-1].Before(a[i]), "dates are ascending and unique")
	}
}

func TestSurpriseDates_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	today := time.Date(2025, 4, 30, 23, 0, 0, 0, loc)

	got := scheduler.SurpriseDates(30, today, lastRand{})

	require.Len(t, got, 30)
	for _, d := range got {
		assert.Equal(t, loc, d.Location())
		assert.Equal(t, time.April, d.Month())
	}
}

func TestSurpriseDates_NoneRequested(t *testing.T) {
	assert.Nil(t, scheduler.SurpriseDates(0, date(2025, 1, 1), firstRand{}))
}

// TestRandomSource_ConcurrentUse is meant to be run with -race.
func TestRandomSource_ConcurrentUse(t *testing.T) {
	rng := scheduler.NewRandomSource(0)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				v := rng.IntN(31)
				if v < 0 || v >= 31 {
					t.Errorf("out of range: %d", v)
				}
			}
		}()
	}
	wg.Wait()
}
