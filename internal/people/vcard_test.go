package people_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-giftminder/internal/config"
	"github.com/tartampluch/go-giftminder/internal/people"
	"github.com/tartampluch/go-giftminder/internal/scheduler"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer using testify/mock.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements people.Fetcher.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

const addressBook = `BEGIN:VCARD
VERSION:4.0
UID:urn:uuid:anna
FN:Anna Schmidt
BDAY:1995-05-15
ANNIVERSARY:20190901
CATEGORIES:tulips, dark chocolate
END:VCARD
BEGIN:VCARD
VERSION:3.0
N:Leap;Baby;;;
BDAY:--02-29
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:No Dates
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Bad Date
BDAY:someday
END:VCARD
`

func writeVCF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVCardSource_Local(t *testing.T) {
	src := &people.VCardSource{
		Mode: config.SourceModeLocal,
		Path: writeVCF(t, addressBook),
		Defaults: people.Defaults{
			ReminderDays:       []int{1, 7},
			FlowerReminderDays: []int{2},
			FlowerSchedule:     &scheduler.FlowerSchedule{EnableBirthday: true},
		},
	}

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2, "cards without a usable date are skipped")

	anna := got[0]
	assert.Equal(t, "urn:uuid:anna", anna.ID)
	assert.Equal(t, "Anna Schmidt", anna.Name)
	assert.Equal(t, []string{"tulips", "dark chocolate"}, anna.Preferences)
	require.Len(t, anna.ImportantDates, 2)
	assert.Equal(t, scheduler.DateBirthday, anna.ImportantDates[0].Type)
	assert.Equal(t, time.Date(1995, 5, 15, 0, 0, 0, 0, time.UTC), anna.ImportantDates[0].Date)
	assert.Equal(t, []int{1, 7}, anna.ImportantDates[0].ReminderDays)
	assert.Equal(t, scheduler.DateAnniversary, anna.ImportantDates[1].Type)
	assert.Equal(t, "urn:uuid:anna-anniversary", anna.ImportantDates[1].ID)

	require.NotNil(t, anna.FlowerSchedule)
	assert.True(t, anna.FlowerSchedule.EnableBirthday)
	assert.Equal(t, []int{2}, anna.FlowerSchedule.ReminderDays)

	leap := got[1]
	assert.Equal(t, "Leap;Baby;;;", leap.Name)
	assert.Equal(t, time.February, leap.ImportantDates[0].Date.Month())
	assert.Equal(t, 29, leap.ImportantDates[0].Date.Day())
	assert.NotEmpty(t, leap.ID)
}

func TestVCardSource_SchedulesAreIndependent(t *testing.T) {
	src := &people.VCardSource{
		Mode: config.SourceModeLocal,
		Path: writeVCF(t, addressBook),
		Defaults: people.Defaults{
			FlowerSchedule: &scheduler.FlowerSchedule{ReminderDays: []int{3}},
		},
	}

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	got[0].FlowerSchedule.RandomDates = 5
	got[0].FlowerSchedule.ReminderDays[0] = 9
	assert.Zero(t, got[1].FlowerSchedule.RandomDates)
	assert.Equal(t, []int{3}, got[1].FlowerSchedule.ReminderDays)
}

func TestVCardSource_StableIDs(t *testing.T) {
	src := &people.VCardSource{Mode: config.SourceModeLocal, Path: writeVCF(t, addressBook)}

	first, err := src.Load(context.Background())
	require.NoError(t, err)
	second, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first[1].ID, second[1].ID, "hashed IDs survive reloads")
}

func TestVCardSource_Web(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com/book", "anna", "pw").
		Return(io.NopCloser(strings.NewReader(addressBook)), nil)

	src := &people.VCardSource{
		Mode:    config.SourceModeWeb,
		URL:     "https://dav.example.com/book",
		User:    "anna",
		Pass:    "pw",
		Fetcher: fetcher,
	}

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Nil(t, got[0].FlowerSchedule, "no default schedule configured")
	fetcher.AssertExpectations(t)
}

func TestVCardSource_WebError(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("boom"))

	src := &people.VCardSource{Mode: config.SourceModeWeb, URL: "https://x", Fetcher: fetcher}

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrVCardParse)
	assert.Contains(t, err.Error(), "boom")
}

func TestVCardSource_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     people.VCardSource
		wantErr string
	}{
		{"LocalPathEmpty", people.VCardSource{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"WebURLEmpty", people.VCardSource{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"FetcherMissing", people.VCardSource{Mode: config.SourceModeWeb, URL: "https://x"}, config.ErrFetcherMissing},
		{"UnknownMode", people.VCardSource{Mode: "ftp"}, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.src.Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVCardSource_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &people.VCardSource{Mode: config.SourceModeLocal, Path: writeVCF(t, addressBook)}
	_, err := src.Load(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
