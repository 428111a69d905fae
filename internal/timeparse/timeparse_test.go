package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A fixed Thursday so relative ranges are deterministic.
var now = time.Date(2024, time.August, 15, 14, 30, 0, 0, time.UTC)

func TestParseISODate(t *testing.T) {
	w, rest := Parse("invoice from 2024-08-14", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, "invoice from", rest)
	assert.Equal(t, AttrModified, w.Attr)
}

func TestParseNumericDateDayFirst(t *testing.T) {
	// Ambiguous components default to day-first.
	w, _ := Parse("report 03/04/2024", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), w.Start)

	// A component above 12 forces its reading as the day.
	w, _ = Parse("report 04/13/2024", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 4, 13, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestParseInvalidDateIgnored(t *testing.T) {
	// Feb 31 does not exist; the bare year still matches.
	w, _ := Parse("notes 31/02/2023", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.End)
}

func TestParseMonthNameDate(t *testing.T) {
	w, rest := Parse("slides from Aug 14, 2024 please", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, "slides from please", rest)

	w, _ = Parse("14 August 2024 meeting notes", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestParseMonthYear(t *testing.T) {
	w, _ := Parse("photos July 2023", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), w.End)
}

func TestParseTodayYesterday(t *testing.T) {
	w, rest := Parse("notes today", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 8, 16, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, "notes", rest)

	w, _ = Parse("yesterday", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), w.End)
}

func TestParseLastWeekMondayAligned(t *testing.T) {
	// Regardless of the current weekday, "last week" spans Monday 00:00 of
	// the prior calendar week up to (exclusive) the following Monday.
	for day := 12; day <= 18; day++ { // a full Mon..Sun sweep
		at := time.Date(2024, 8, day, 9, 0, 0, 0, time.UTC)
		w, _ := Parse("report last week", at)
		require.NotNil(t, w)
		assert.Equal(t, time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC), w.Start, "on day %d", day)
		assert.Equal(t, time.Date(2024, 8, 12, 0, 0, 0, 0, time.UTC), w.End, "on day %d", day)
	}
}

func TestParseThisWeek(t *testing.T) {
	w, _ := Parse("this week", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 12, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 8, 19, 0, 0, 0, 0, time.UTC), w.End)
}

func TestParseLastMonthYear(t *testing.T) {
	w, _ := Parse("expenses last month", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), w.End)

	w, _ = Parse("taxes last year", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.End)
}

func TestParseLastWeekday(t *testing.T) {
	// now is Thursday 2024-08-15; last Tuesday is the 13th.
	w, rest := Parse("notes from last tuesday", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 13, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, "notes from", rest)

	// Same weekday as today resolves to a week ago, not today.
	w, _ = Parse("last thursday", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 8, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestParseBareYear(t *testing.T) {
	w, rest := Parse("invoice 2023", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, "invoice", rest)
}

func TestParseBareMonthName(t *testing.T) {
	// August 2024 has started by the fixed now.
	w, _ := Parse("receipts from august", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), w.Start)

	// December has not: resolve to last year's December.
	w, _ = Parse("receipts from december", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestLongestSpanWins(t *testing.T) {
	// "August 2024" must win over the bare-year and bare-month readings.
	w, rest := Parse("budget August 2024", now)
	require.NotNil(t, w)
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, "budget", rest)
}

func TestCreatedAttr(t *testing.T) {
	w, _ := Parse("files created yesterday", now)
	require.NotNil(t, w)
	assert.Equal(t, AttrCreated, w.Attr)
}

func TestParseNoTemporalPhrase(t *testing.T) {
	w, rest := Parse("quarterly budget spreadsheet", now)
	assert.Nil(t, w)
	assert.Equal(t, "quarterly budget spreadsheet", rest)

	w, _ = Parse("", now)
	assert.Nil(t, w)
}

func TestWindowContains(t *testing.T) {
	w := &TimeWindow{Start: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)}
	assert.True(t, w.Contains(time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End)) // exclusive end
	assert.False(t, w.Contains(time.Date(2024, 7, 31, 23, 59, 59, 0, time.UTC)))

	open := &TimeWindow{Start: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)}
	assert.True(t, open.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}
