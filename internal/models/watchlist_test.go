package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarDate_UnmarshalCSV(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-03-09", "2024-03-09 14:30:00", "2024-03-09T14:30:00Z", "03/09/2024", "2024/03/09"} {
		var d CalendarDate
		require.NoError(t, d.UnmarshalCSV(in))
		assert.True(t, d.Equal(want), "%q parsed as %v", in, d.Time)
	}

	var bad CalendarDate
	require.NoError(t, bad.UnmarshalCSV("yesterday"))
	assert.True(t, bad.IsZero())
	assert.Equal(t, "-", bad.String())

	s, err := bad.MarshalCSV()
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestNewCalendarDate_Truncates(t *testing.T) {
	d := NewCalendarDate(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	s, err := d.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", s)
}

func TestStoredPrice_CSV(t *testing.T) {
	var p StoredPrice
	require.NoError(t, p.UnmarshalCSV("10.5"))
	assert.Equal(t, StoredPrice(10.5), p)

	require.NoError(t, p.UnmarshalCSV("not a price"))
	assert.Equal(t, StoredPrice(0), p)

	s, err := StoredPrice(2.5).MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "2.50", s)
}

func TestWatchlist_FindByTicker(t *testing.T) {
	wl := &Watchlist{Entries: []WatchlistEntry{{Ticker: "AAA"}, {Ticker: "BBB"}}}

	e, idx := wl.FindByTicker("bbb")
	require.NotNil(t, e)
	assert.Equal(t, 1, idx)

	e, idx = wl.FindByTicker("CCC")
	assert.Nil(t, e)
	assert.Equal(t, -1, idx)

	assert.Equal(t, []string{"AAA", "BBB"}, wl.Tickers())
	assert.Equal(t, "AAA", NormalizeTicker("  aaa "))
}
