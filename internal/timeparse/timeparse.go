// Package timeparse turns free-text temporal phrases into concrete time
// windows. Parsing is locale-fixed: ambiguous numeric dates like 03/04/2024
// are read day-first (3 April 2024); a component greater than 12 is always
// taken as the day. Relative ranges are calendar-aligned with weeks starting
// on Monday. Unrecognized text simply yields no window.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Attr names which file timestamp a window constrains.
type Attr int

const (
	AttrModified Attr = iota
	AttrCreated
)

// TimeWindow is a resolved [Start, End) range. A zero Start or End means
// that bound is open.
type TimeWindow struct {
	Start time.Time
	End   time.Time
	Attr  Attr
}

// Contains reports whether t falls inside the window.
func (w *TimeWindow) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

const monthAlt = `jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec`

// matcher ties a pattern to its window resolver. Tier breaks ties between
// equal-length matches: lower tier wins.
type matcher struct {
	tier    int
	re      *regexp.Regexp
	resolve func(groups []string, now time.Time) (time.Time, time.Time, bool)
}

var matchers = []matcher{
	// Explicit calendar dates.
	{1, regexp.MustCompile(`(?i)\b(20\d{2})-(\d{2})-(\d{2})\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		return dayWindow(atoi(g[1]), atoi(g[2]), atoi(g[3]), now)
	}},
	{1, regexp.MustCompile(`(?i)\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		a, b, y := atoi(g[1]), atoi(g[2]), atoi(g[3])
		day, month := a, b // day-first policy
		if a <= 12 && b > 12 {
			day, month = b, a
		}
		return dayWindow(y, month, day, now)
	}},
	{1, regexp.MustCompile(`(?i)\b(` + monthAlt + `)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\s*,?\s*(\d{4})\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		m, ok := monthByName(g[1])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		return dayWindow(atoi(g[3]), int(m), atoi(g[2]), now)
	}},
	{1, regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthAlt + `)[a-z]*\.?\s*,?\s*(\d{4})\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		m, ok := monthByName(g[2])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		return dayWindow(atoi(g[3]), int(m), atoi(g[1]), now)
	}},
	{1, regexp.MustCompile(`(?i)\b(` + monthAlt + `)[a-z]*\.?\s+(20\d{2})\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		m, ok := monthByName(g[1])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		return monthWindow(atoi(g[2]), m, now), monthWindowEnd(atoi(g[2]), m, now), true
	}},
	{1, regexp.MustCompile(`(?i)\b(20\d{2})-(0[1-9]|1[0-2])\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		m := time.Month(atoi(g[2]))
		return monthWindow(atoi(g[1]), m, now), monthWindowEnd(atoi(g[1]), m, now), true
	}},

	// Named relative ranges, calendar-aligned.
	{2, regexp.MustCompile(`(?i)\btoday\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		s := midnight(now)
		return s, s.AddDate(0, 0, 1), true
	}},
	{2, regexp.MustCompile(`(?i)\byesterday\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		s := midnight(now).AddDate(0, 0, -1)
		return s, s.AddDate(0, 0, 1), true
	}},
	{2, regexp.MustCompile(`(?i)\bthis\s+week\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		s := startOfWeek(now)
		return s, s.AddDate(0, 0, 7), true
	}},
	{2, regexp.MustCompile(`(?i)\blast\s+week\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		e := startOfWeek(now)
		return e.AddDate(0, 0, -7), e, true
	}},
	{2, regexp.MustCompile(`(?i)\bthis\s+month\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		s := startOfMonth(now)
		return s, s.AddDate(0, 1, 0), true
	}},
	{2, regexp.MustCompile(`(?i)\blast\s+month\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		e := startOfMonth(now)
		return e.AddDate(0, -1, 0), e, true
	}},
	{2, regexp.MustCompile(`(?i)\bthis\s+year\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		s := startOfYear(now)
		return s, s.AddDate(1, 0, 0), true
	}},
	{2, regexp.MustCompile(`(?i)\blast\s+year\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		e := startOfYear(now)
		return e.AddDate(-1, 0, 0), e, true
	}},

	// Weekday phrases.
	{3, regexp.MustCompile(`(?i)\blast\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		wd, ok := weekdayByName(g[1])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		delta := (int(now.Weekday()) - int(wd) + 7) % 7
		if delta == 0 {
			delta = 7 // same weekday means last week's occurrence
		}
		s := midnight(now).AddDate(0, 0, -delta)
		return s, s.AddDate(0, 0, 1), true
	}},
	{3, regexp.MustCompile(`(?i)\bthis\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		wd, ok := weekdayByName(g[1])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		s := startOfWeek(now).AddDate(0, 0, mondayIndex(wd))
		return s, s.AddDate(0, 0, 1), true
	}},

	// Bare year or bare month name.
	{4, regexp.MustCompile(`(?i)\b(20\d{2})\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		s := time.Date(atoi(g[1]), 1, 1, 0, 0, 0, 0, now.Location())
		return s, s.AddDate(1, 0, 0), true
	}},
	{4, regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`), func(g []string, now time.Time) (time.Time, time.Time, bool) {
		m, ok := monthByName(g[1])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		// Current year's occurrence; the previous year's if it hasn't started.
		y := now.Year()
		s := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		if s.After(now) {
			s = s.AddDate(-1, 0, 0)
		}
		return s, s.AddDate(0, 1, 0), true
	}},
}

var createdRe = regexp.MustCompile(`(?i)\b(created|creation|made)\b`)

// Parse extracts an optional time window from q, resolved relative to now.
// The second return value is q with the matched temporal phrase removed so
// keyword extraction is unaffected by date tokens. When several candidate
// phrases overlap, the longest span wins; equal spans fall back to the
// documented precedence order.
func Parse(q string, now time.Time) (*TimeWindow, string) {
	if strings.TrimSpace(q) == "" {
		return nil, q
	}

	type candidate struct {
		tier       int
		start, end int
		winStart   time.Time
		winEnd     time.Time
	}
	var best *candidate

	for _, m := range matchers {
		for _, loc := range m.re.FindAllStringSubmatchIndex(q, -1) {
			groups := make([]string, 0, len(loc)/2)
			for i := 0; i < len(loc); i += 2 {
				if loc[i] < 0 {
					groups = append(groups, "")
					continue
				}
				groups = append(groups, q[loc[i]:loc[i+1]])
			}
			ws, we, ok := m.resolve(groups, now)
			if !ok {
				continue
			}
			c := &candidate{tier: m.tier, start: loc[0], end: loc[1], winStart: ws, winEnd: we}
			if best == nil {
				best = c
				continue
			}
			bestLen, cLen := best.end-best.start, c.end-c.start
			if cLen > bestLen || (cLen == bestLen && c.tier < best.tier) {
				best = c
			}
		}
	}
	if best == nil {
		return nil, q
	}

	attr := AttrModified
	if createdRe.MatchString(q) {
		attr = AttrCreated
	}

	residual := strings.Join(strings.Fields(q[:best.start]+" "+q[best.end:]), " ")
	return &TimeWindow{Start: best.winStart, End: best.winEnd, Attr: attr}, residual
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns Monday 00:00:00 of t's calendar week.
func startOfWeek(t time.Time) time.Time {
	return midnight(t).AddDate(0, 0, -mondayIndex(t.Weekday()))
}

// mondayIndex maps a weekday to its offset from Monday (Monday=0 .. Sunday=6).
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// dayWindow validates the calendar day and returns its [midnight, next
// midnight) range. Invalid dates such as 31/02 are rejected.
func dayWindow(year, month, day int, now time.Time) (time.Time, time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, time.Time{}, false
	}
	s := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if s.Day() != day || s.Month() != time.Month(month) {
		return time.Time{}, time.Time{}, false // normalized away, e.g. Feb 31
	}
	return s, s.AddDate(0, 0, 1), true
}

func monthWindow(year int, m time.Month, now time.Time) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, now.Location())
}

func monthWindowEnd(year int, m time.Month, now time.Time) time.Time {
	return monthWindow(year, m, now).AddDate(0, 1, 0)
}

func monthByName(name string) (time.Month, bool) {
	if len(name) < 3 {
		return 0, false
	}
	switch strings.ToLower(name[:3]) {
	case "jan":
		return time.January, true
	case "feb":
		return time.February, true
	case "mar":
		return time.March, true
	case "apr":
		return time.April, true
	case "may":
		return time.May, true
	case "jun":
		return time.June, true
	case "jul":
		return time.July, true
	case "aug":
		return time.August, true
	case "sep":
		return time.September, true
	case "oct":
		return time.October, true
	case "nov":
		return time.November, true
	case "dec":
		return time.December, true
	}
	return 0, false
}

func weekdayByName(name string) (time.Weekday, bool) {
	switch strings.ToLower(name) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return 0, false
}
