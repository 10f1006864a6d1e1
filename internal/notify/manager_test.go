package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-giftminder/internal/calendar"
	"github.com/tartampluch/go-giftminder/internal/notify"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
)

// -----------------------------------------------------------------------------
// Mocks & Fakes
// -----------------------------------------------------------------------------

// MockDispatcher records calls using `testify/mock`.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Schedule(ctx context.Context, n notify.Notification) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *MockDispatcher) Cancel(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// firstRand draws the lowest remaining day.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

// lastRand draws the highest remaining day.
type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

func bea() scheduler.Person {
	return scheduler.Person{
		ID:   "p-bea",
		Name: "Bea",
		ImportantDates: []scheduler.ImportantDate{
			{ID: "d-bday", Type: scheduler.DateBirthday, Date: date(1990, 5, 15), ReminderDays: []int{1, 7}},
		},
	}
}

func surpriseOnly() scheduler.Person {
	return scheduler.Person{
		ID:   "p-cleo",
		Name: "Cleo",
		FlowerSchedule: &scheduler.FlowerSchedule{
			RandomDates:  2,
			ReminderDays: []int{1},
		},
	}
}

func planFor(today time.Time, rng scheduler.RandomSource, people ...scheduler.Person) scheduler.Plan {
	s := &scheduler.Scheduler{Rand: rng, Phraser: scheduler.EnglishPhraser{}}
	return s.PlanAt(people, today)
}

func ids(rs []scheduler.Reminder) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestManager_SyncActivatesReminders(t *testing.T) {
	d := notify.NewLocalDispatcher()
	feed := calendar.NewFeed()
	m := notify.NewManager(d, feed, nil)
	ctx := context.Background()

	plan := planFor(date(2025, 5, 8), nil, bea())
	require.Len(t, plan.Reminders, 3)

	res, err := m.Sync(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, notify.Result{Scheduled: 3}, res)
	assert.Equal(t, 3, d.Pending())
	assert.Equal(t, 1, feed.Len(), "only the same-day reminder is mirrored")

	active := m.Reminders()
	require.Len(t, active, 3)
	for _, r := range active {
		assert.NotEmpty(t, r.NotificationID)
		if r.SameDay() {
			assert.NotEmpty(t, r.CalendarEventID)
		} else {
			assert.Empty(t, r.CalendarEventID)
		}
	}

	ics, err := feed.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(ics), "SUMMARY:Bea's Birthday")
	assert.Contains(t, string(ics), "TRIGGER:-P7D")
}

func TestManager_SyncIsIdempotent(t *testing.T) {
	d := notify.NewLocalDispatcher()
	feed := calendar.NewFeed()
	m := notify.NewManager(d, feed, nil)
	ctx := context.Background()
	plan := planFor(date(2025, 5, 8), nil, bea())

	_, err := m.Sync(ctx, plan)
	require.NoError(t, err)
	first := m.Reminders()

	res, err := m.Sync(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, notify.Result{Kept: 3}, res)
	assert.Equal(t, 3, d.Pending())
	assert.Equal(t, 1, feed.Len())
	assert.Equal(t, first, m.Reminders(), "handles survive re-evaluation")
}

func TestManager_SyncCancelsStaleReminders(t *testing.T) {
	d := notify.NewLocalDispatcher()
	feed := calendar.NewFeed()
	m := notify.NewManager(d, feed, nil)
	ctx := context.Background()

	_, err := m.Sync(ctx, planFor(date(2025, 5, 8), nil, bea()))
	require.NoError(t, err)

	// The person was removed from the store.
	res, err := m.Sync(ctx, planFor(date(2025, 5, 8), nil))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cancelled)
	assert.Equal(t, 0, d.Pending())
	assert.Equal(t, 0, feed.Len())
	assert.Empty(t, m.Reminders())
}

func TestManager_SyncDropsDeliveredReminders(t *testing.T) {
	d := notify.NewLocalDispatcher()
	m := notify.NewManager(d, calendar.NewFeed(), nil)
	ctx := context.Background()

	_, err := m.Sync(ctx, planFor(date(2025, 5, 8), nil, bea()))
	require.NoError(t, err)
	require.Len(t, d.Deliver(date(2025, 5, 8)), 1)

	// Next day the 7-day lead reminder has elapsed.
	res, err := m.Sync(ctx, planFor(date(2025, 5, 9), nil, bea()))
	require.NoError(t, err)
	assert.Equal(t, notify.Result{Cancelled: 1, Kept: 2}, res)
	assert.Len(t, m.Reminders(), 2)
	assert.Equal(t, 2, d.Pending())
}

func TestManager_MarkRead(t *testing.T) {
	m := notify.NewManager(notify.NewLocalDispatcher(), nil, nil)
	ctx := context.Background()
	plan := planFor(date(2025, 5, 8), nil, bea())

	_, err := m.Sync(ctx, plan)
	require.NoError(t, err)

	id := plan.Reminders[0].ID
	require.NoError(t, m.MarkRead(id))

	_, err = m.Sync(ctx, plan)
	require.NoError(t, err)
	for _, r := range m.Reminders() {
		assert.Equal(t, r.ID == id, r.IsRead, r.ID)
	}

	err = m.MarkRead("nope")
	assert.ErrorIs(t, err, notify.ErrReminderNotFound)
}

func TestManager_ChannelsDisabled(t *testing.T) {
	d := new(MockDispatcher)
	feed := calendar.NewFeed()
	m := notify.NewManager(d, feed, nil)
	m.Push = false
	m.Mirror = false

	res, err := m.Sync(context.Background(), planFor(date(2025, 5, 8), nil, bea()))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Scheduled)
	assert.Equal(t, 0, feed.Len())
	d.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)

	for _, r := range m.Reminders() {
		assert.Empty(t, r.NotificationID)
		assert.Empty(t, r.CalendarEventID)
	}
}

func TestManager_DispatcherFailureDoesNotAbort(t *testing.T) {
	d := new(MockDispatcher)
	d.On("Schedule", mock.Anything, mock.Anything).Return("", errors.New("push service down"))
	feed := calendar.NewFeed()
	m := notify.NewManager(d, feed, nil)

	res, err := m.Sync(context.Background(), planFor(date(2025, 5, 8), nil, bea()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push service down")
	assert.Equal(t, 3, res.Scheduled)
	assert.Len(t, m.Reminders(), 3)
	assert.Equal(t, 1, feed.Len(), "calendar mirroring still happens")
	d.AssertNumberOfCalls(t, "Schedule", 3)
}

func TestManager_SurprisesStickWithinMonth(t *testing.T) {
	d := notify.NewLocalDispatcher()
	m := notify.NewManager(d, calendar.NewFeed(), nil)
	ctx := context.Background()
	today := date(2025, 3, 1)

	res, err := m.Sync(ctx, planFor(today, firstRand{}, surpriseOnly()))
	require.NoError(t, err)
	require.Positive(t, res.Scheduled)
	first := ids(m.Reminders())

	// A new draw the same month must not replace the activated one.
	res, err = m.Sync(ctx, planFor(today, lastRand{}, surpriseOnly()))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Scheduled)
	assert.Equal(t, 0, res.Cancelled)
	assert.Equal(t, first, ids(m.Reminders()))

	// Next month draws afresh and the old surprises are released.
	res, err = m.Sync(ctx, planFor(date(2025, 4, 1), lastRand{}, surpriseOnly()))
	require.NoError(t, err)
	assert.Positive(t, res.Scheduled)
	for _, r := range m.Reminders() {
		assert.Equal(t, time.April, r.OccasionDate.Month())
	}
}

func TestManager_SurprisesReleasedWhenScheduleDisabled(t *testing.T) {
	d := notify.NewLocalDispatcher()
	feed := calendar.NewFeed()
	m := notify.NewManager(d, feed, nil)
	ctx := context.Background()
	today := date(2025, 3, 1)

	// firstRand draws Mar 1 and Mar 2.
	res, err := m.Sync(ctx, planFor(today, firstRand{}, surpriseOnly()))
	require.NoError(t, err)
	require.Equal(t, 3, res.Scheduled)

	cleo := surpriseOnly()
	cleo.FlowerSchedule = nil
	res, err = m.Sync(ctx, planFor(today, firstRand{}, cleo))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cancelled)
	assert.Equal(t, 0, d.Pending())
	assert.Equal(t, 0, feed.Len())
	assert.Empty(t, m.Reminders())

	// Re-enabling the same month draws afresh.
	res, err = m.Sync(ctx, planFor(today, lastRand{}, surpriseOnly()))
	require.NoError(t, err)
	assert.Positive(t, res.Scheduled)
	var days []int
	for _, r := range m.Reminders() {
		days = append(days, r.OccasionDate.Day())
	}
	assert.Contains(t, days, 31)
}

func TestManager_SurprisesReleasedWhenPersonRemoved(t *testing.T) {
	d := notify.NewLocalDispatcher()
	m := notify.NewManager(d, nil, nil)
	ctx := context.Background()
	today := date(2025, 3, 1)

	_, err := m.Sync(ctx, planFor(today, firstRand{}, surpriseOnly(), bea()))
	require.NoError(t, err)

	res, err := m.Sync(ctx, planFor(today, firstRand{}, bea()))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cancelled)
	for _, r := range m.Reminders() {
		assert.Equal(t, "p-bea", r.PersonID)
	}
	assert.Equal(t, len(m.Reminders()), d.Pending())
}

func TestManager_SurprisesShrinkWithRandomDates(t *testing.T) {
	d := notify.NewLocalDispatcher()
	m := notify.NewManager(d, nil, nil)
	ctx := context.Background()
	today := date(2025, 3, 1)

	_, err := m.Sync(ctx, planFor(today, firstRand{}, surpriseOnly()))
	require.NoError(t, err)

	cleo := surpriseOnly()
	cleo.FlowerSchedule.RandomDates = 1
	res, err := m.Sync(ctx, planFor(today, lastRand{}, cleo))
	require.NoError(t, err)
	assert.Equal(t, notify.Result{Cancelled: 2, Kept: 1}, res)

	active := m.Reminders()
	require.Len(t, active, 1)
	assert.Equal(t, date(2025, 3, 1), active[0].OccasionDate, "the earliest pinned date is kept")
	assert.Equal(t, 1, d.Pending())
}

func TestManager_PinReplacesLaterDraws(t *testing.T) {
	m := notify.NewManager(nil, nil, nil)
	today := date(2025, 3, 1)

	first := m.Pin(planFor(today, firstRand{}, surpriseOnly()))
	second := m.Pin(planFor(today, lastRand{}, surpriseOnly()))

	assert.Equal(t, first.Occasions, second.Occasions)
	assert.Equal(t, ids(first.Reminders), ids(second.Reminders))
	assert.Equal(t, first, m.Pin(first), "pinning a pinned plan changes nothing")

	// A pin is not kept across months.
	april := m.Pin(planFor(date(2025, 4, 1), lastRand{}, surpriseOnly()))
	for _, o := range april.Occasions {
		assert.Equal(t, time.April, o.Date.Month())
	}
}

func TestManager_SurpriseEventsDoNotRecur(t *testing.T) {
	feed := calendar.NewFeed()
	m := notify.NewManager(nil, feed, nil)

	_, err := m.Sync(context.Background(), planFor(date(2025, 3, 1), firstRand{}, surpriseOnly()))
	require.NoError(t, err)
	require.Positive(t, feed.Len())

	ics, err := feed.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(ics), "RRULE")
	assert.Contains(t, string(ics), "TRIGGER:-PT60M")
	assert.Contains(t, string(ics), "TRIGGER:-P1D")
}

func TestManager_CancelledContext(t *testing.T) {
	m := notify.NewManager(notify.NewLocalDispatcher(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Sync(ctx, planFor(date(2025, 5, 8), nil, bea()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Reminders())
}
