package chart

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

var clockLayouts = []string{"15:04", "15:04:05"}

// Compute derives the chart for the wall-clock moment at. Only the calendar
// and clock fields are read; the location of at is ignored.
func Compute(at time.Time) Chart {
	return positionsFor(DayOfYear(at))
}

// DayOfYear counts whole days between at and midnight of January 0 (Dec 31 of
// the prior year), so 1 January yields 1.
func DayOfYear(at time.Time) int {
	wall := time.Date(at.Year(), at.Month(), at.Day(), at.Hour(), at.Minute(), at.Second(), at.Nanosecond(), time.UTC)
	start := time.Date(at.Year(), time.January, 0, 0, 0, 0, 0, time.UTC)
	return int(wall.Sub(start) / day)
}

// ParseMoment parses a YYYY-MM-DD date and an HH:MM (or HH:MM:SS) clock into
// a wall-clock moment in UTC.
func ParseMoment(date, clock string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	var (
		c        time.Time
		clockErr error
	)
	for _, layout := range clockLayouts {
		c, clockErr = time.Parse(layout, strings.TrimSpace(clock))
		if clockErr == nil {
			break
		}
	}
	if clockErr != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", clock, clockErr)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.UTC), nil
}

// positionsFor applies the linear offset-and-scale model to a day index.
// The Sun uses a 365-day wrap and 30.4-day signs while every other body uses
// plain mod 12, so signs can disagree around year edges.
func positionsFor(d int) Chart {
	f := float64(d)
	var c Chart
	c.positions = [len(Bodies)]Position{
		{Sign: signAt(int(float64((d+80)%365) / 30.4)), Degree: degree(f * 0.986)},
		{Sign: signAt(d * 13), Degree: degree(f * 13.176)},
		{Sign: signAt(d + 20), Degree: degree(f * 1.6)},
		{Sign: signAt(d + 40), Degree: degree(f * 1.2)},
		{Sign: signAt(d + 60), Degree: degree(f * 0.5)},
		{Sign: signAt(d / 30), Degree: degree(f * 0.08)},
	}
	return c
}

func signAt(index int) string {
	index %= len(Signs)
	if index < 0 {
		index += len(Signs)
	}
	return Signs[index]
}

func degree(v float64) float64 {
	v = math.Mod(v, 30)
	if v < 0 {
		v += 30
	}
	return v
}
