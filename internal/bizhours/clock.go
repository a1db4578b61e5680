// Package bizhours computes elapsed working time between two instants under a
// weekly Monday to Friday schedule evaluated in a fixed time zone.
package bizhours

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// slice is the walk step used when accumulating working minutes.
const slice = time.Hour

// Clock holds a work schedule in a specific location. All minute values are
// minutes since local midnight.
type Clock struct {
	Location      *time.Location
	WorkStart     int
	WorkEnd       int
	MorningCutoff int
}

// Parts is the local calendar view of an instant.
type Parts struct {
	Weekday time.Weekday
	Day     int // days since the Unix epoch in local time; distinguishes calendar days
	Minute  float64
}

// New builds a Clock from a time zone name, a "HH:MM-HH:MM" work window and a
// "HH:MM" morning cutoff.
func New(timezone, window, cutoff string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", timezone, err)
	}
	start, end, err := ParseWindow(window)
	if err != nil {
		return nil, err
	}
	cut, err := ParseClockTime(cutoff)
	if err != nil {
		return nil, fmt.Errorf("invalid morning cutoff: %w", err)
	}
	return &Clock{
		Location:      loc,
		WorkStart:     start,
		WorkEnd:       end,
		MorningCutoff: cut,
	}, nil
}

// ParseClockTime parses "HH:MM" into minutes since midnight.
func ParseClockTime(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q (use HH:MM)", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// ParseWindow parses "HH:MM-HH:MM" into start and end minutes. The end must be
// after the start.
func ParseWindow(s string) (start, end int, err error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid work window %q (use HH:MM-HH:MM)", s)
	}
	if start, err = ParseClockTime(from); err != nil {
		return 0, 0, fmt.Errorf("invalid work window start: %w", err)
	}
	if end, err = ParseClockTime(to); err != nil {
		return 0, 0, fmt.Errorf("invalid work window end: %w", err)
	}
	if end <= start {
		return 0, 0, fmt.Errorf("invalid work window %q: end must be after start", s)
	}
	return start, end, nil
}

// Parts converts t to the clock's local weekday and minute of day.
func (c *Clock) Parts(t time.Time) Parts {
	local := t.In(c.Location)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Parts{
		Weekday: local.Weekday(),
		Day:     int(midnight.Unix() / 86400),
		Minute:  float64(local.Hour()*60+local.Minute()) + float64(local.Second())/60,
	}
}

// IsWorkDay reports whether d is Monday through Friday.
func IsWorkDay(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

// InWindow reports whether t falls on a work day inside [WorkStart, WorkEnd).
func (c *Clock) InWindow(t time.Time) bool {
	p := c.Parts(t)
	return IsWorkDay(p.Weekday) && p.Minute >= float64(c.WorkStart) && p.Minute < float64(c.WorkEnd)
}

// MinutesBetween returns the working minutes between start and end.
//
// When start lies outside the work window and end's local time is at or before
// the morning cutoff, the whole wall-clock span counts. Otherwise the span is
// walked in hour slices, cut at local midnight, and each work-day slice contributes its overlap with the
// work window; for spans that began outside the window the window opens at the
// morning cutoff on every day of the walk.
func (c *Clock) MinutesBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}

	outside := !c.InWindow(start)
	if outside && c.Parts(end).Minute <= float64(c.MorningCutoff) {
		return int(end.Sub(start).Minutes())
	}

	effStart := float64(c.WorkStart)
	if outside {
		effStart = float64(c.MorningCutoff)
	}
	workEnd := float64(c.WorkEnd)

	var total float64
	for cursor := start; cursor.Before(end); {
		next := cursor.Add(slice)
		if midnight := c.nextMidnight(cursor); next.After(midnight) {
			next = midnight
		}
		if next.After(end) {
			next = end
		}

		from := c.Parts(cursor)
		if IsWorkDay(from.Weekday) {
			to := c.Parts(next)
			toMinute := to.Minute
			if to.Day != from.Day {
				toMinute = minutesPerDay
			}
			overlap := math.Min(toMinute, workEnd) - math.Max(from.Minute, effStart)
			if overlap > 0 {
				total += overlap
			}
		}
		cursor = next
	}

	return int(math.Floor(total + 1e-9))
}

// nextMidnight returns the start of the local day after t.
func (c *Clock) nextMidnight(t time.Time) time.Time {
	y, m, d := t.In(c.Location).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, c.Location)
}

// HoursBetween returns MinutesBetween expressed in hours.
func (c *Clock) HoursBetween(start, end time.Time) float64 {
	return float64(c.MinutesBetween(start, end)) / 60
}
