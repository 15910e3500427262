package format

import (
	"testing"
	"time"
)

func TestTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"00:00:00", "12:00 AM"},
		{"13:05:00", "1:05 PM"},
		{"12:00:00", "12:00 PM"},
		{"09:30:00", "9:30 AM"},
		{"23:59:59", "11:59 PM"},
		{"14:00", "2:00 PM"},
	}
	for _, tc := range tests {
		if got := Time(tc.in); got != tc.want {
			t.Errorf("Time(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-11-04", "Tue, Nov 4, 2025"},
		{"2024-02-29", "Thu, Feb 29, 2024"},
		{"2025-11-04T10:00:00", "Tue, Nov 4, 2025"},
		{"Tue, 04 Nov 2025 00:00:00 GMT", "Tue, Nov 4, 2025"},
	}
	for _, tc := range tests {
		if got := Date(tc.in); got != tc.want {
			t.Errorf("Date(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, time.November, 4, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"45 seconds", 45 * time.Second, "Just now"},
		{"59.9 seconds", 59*time.Second + 900*time.Millisecond, "Just now"},
		{"exactly one minute", time.Minute, "1 minute ago"},
		{"90 seconds", 90 * time.Second, "1 minute ago"},
		{"two minutes", 2 * time.Minute, "2 minutes ago"},
		{"59 minutes", 59 * time.Minute, "59 minutes ago"},
		{"one hour", time.Hour, "1 hour ago"},
		{"three hours", 3 * time.Hour, "3 hours ago"},
		{"one day", 24 * time.Hour, "1 day ago"},
		{"six days", 6 * 24 * time.Hour, "6 days ago"},
		{"one week", 7 * 24 * time.Hour, "1 week ago"},
		{"29 days", 29 * 24 * time.Hour, "4 weeks ago"},
		{"thirty days", 30 * 24 * time.Hour, "1 month ago"},
		{"364 days", 364 * 24 * time.Hour, "12 months ago"},
		{"one year", 365 * 24 * time.Hour, "1 year ago"},
		{"three years", 3 * 365 * 24 * time.Hour, "3 years ago"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TimeAgo(now.Add(-tc.elapsed), now); got != tc.want {
				t.Fatalf("TimeAgo(-%v) = %q, want %q", tc.elapsed, got, tc.want)
			}
		})
	}

	t.Run("future instants read just now", func(t *testing.T) {
		if got := TimeAgo(now.Add(time.Hour), now); got != "Just now" {
			t.Fatalf("expected Just now, got %q", got)
		}
	})
}

func TestTimeAgoString(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	now := time.Date(2025, time.November, 4, 12, 0, 0, 0, loc)

	if got := TimeAgoString("2025-11-04T09:00:00", now, loc); got != "3 hours ago" {
		t.Fatalf("naive timestamp: got %q", got)
	}
	if got := TimeAgoString("2025-11-04T16:58:30Z", now, loc); got != "1 minute ago" {
		t.Fatalf("offset timestamp: got %q", got)
	}
	if got := TimeAgoString("2025-11-04 11:59:15", now, loc); got != "Just now" {
		t.Fatalf("space separated timestamp: got %q", got)
	}
	if got := TimeAgoString("yesterday-ish", now, loc); got != "Just now" {
		t.Fatalf("unparseable timestamp: got %q", got)
	}
}

func TestRatingAndLocation(t *testing.T) {
	if got := Rating(4.26); got != "4.3/5.0" {
		t.Fatalf("unexpected rating %q", got)
	}
	if got := Rating(0); got != "0.0/5.0" {
		t.Fatalf("unexpected zero rating %q", got)
	}
	if got := Location("", ""); got != "TBD" {
		t.Fatalf("expected TBD, got %q", got)
	}
	if got := Location("Library", "204"); got != "Library 204" {
		t.Fatalf("unexpected location %q", got)
	}
	if got := Location("", "12"); got != "TBD 12" {
		t.Fatalf("unexpected location %q", got)
	}
}
