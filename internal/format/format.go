// Package format converts backend date, time and timestamp strings into the
// display strings used across the dashboard.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	dateLayout        = "2006-01-02"
	displayDateLayout = "Mon, Jan 2, 2006"

	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// agoMagnitudes picks the largest whole unit elapsed; sub-minute spans read
// "Just now".
var agoMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "Just now", DivBy: 1},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "1 day %s", DivBy: 1},
	{D: week, Format: "%d days %s", DivBy: day},
	{D: 2 * week, Format: "1 week %s", DivBy: 1},
	{D: month, Format: "%d weeks %s", DivBy: week},
	{D: 2 * month, Format: "1 month %s", DivBy: 1},
	{D: year, Format: "%d months %s", DivBy: month},
	{D: 2 * year, Format: "1 year %s", DivBy: 1},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: year},
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	dateLayout,
}

// Date renders a YYYY-MM-DD date as "Mon, Nov 4, 2025". Longer ISO strings
// contribute their date part. Unparseable input is returned unchanged.
func Date(value string) string {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC1123, trimmed); err == nil {
		return t.Format(displayDateLayout)
	}
	if len(trimmed) > len(dateLayout) {
		trimmed = trimmed[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return value
	}
	return t.Format(displayDateLayout)
}

// Time renders a 24-hour HH:MM[:SS] clock time as "H:MM AM|PM".
func Time(value string) string {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 {
		return value
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 {
		return value
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, parts[1], suffix)
}

// TimeAgo describes how long before now the instant then was.
func TimeAgo(then, now time.Time) string {
	if then.After(now) {
		return "Just now"
	}
	return humanize.CustomRelTime(then, now, "ago", "from now", agoMagnitudes)
}

// ParseTimestamp parses the timestamp shapes the backend emits. Values
// without an offset are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	trimmed := strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("format: unrecognised timestamp %q", value)
}

// TimeAgoString parses value and describes it relative to now. Unparseable
// input reads "Just now".
func TimeAgoString(value string, now time.Time, loc *time.Location) string {
	t, err := ParseTimestamp(value, loc)
	if err != nil {
		return "Just now"
	}
	return TimeAgo(t, now)
}

// Rating renders an average effectiveness score out of five.
func Rating(avg float64) string {
	return fmt.Sprintf("%.1f/5.0", avg)
}

// Location renders a building and room, falling back to "TBD" when the
// building is unknown.
func Location(building, room string) string {
	building = strings.TrimSpace(building)
	if building == "" {
		building = "TBD"
	}
	return strings.TrimSpace(building + " " + strings.TrimSpace(room))
}
