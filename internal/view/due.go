package view

import "time"

// Bucket classifies a deadline relative to "today" using calendar dates only.
type Bucket string

const (
	BucketNone    Bucket = "none"
	BucketOverdue Bucket = "overdue"
	BucketToday   Bucket = "today"
	BucketSoon    Bucket = "soon"
)

const dateLayout = "2006-01-02"

// DueBucket buckets a date-only deadline: overdue before today, today on the
// day, soon within dueSoonDays (inclusive), none otherwise. Unparseable or
// missing deadlines are none.
func DueBucket(deadline *string, today time.Time, dueSoonDays int) Bucket {
	if deadline == nil || *deadline == "" {
		return BucketNone
	}
	d, err := time.ParseInLocation(dateLayout, *deadline, today.Location())
	if err != nil {
		return BucketNone
	}
	t := startOfDay(today)
	d = startOfDay(d)

	switch {
	case d.Before(t):
		return BucketOverdue
	case d.Equal(t):
		return BucketToday
	}
	if diffDays(d, t) <= dueSoonDays {
		return BucketSoon
	}
	return BucketNone
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func diffDays(a, b time.Time) int {
	return int(a.Sub(b).Round(24*time.Hour) / (24 * time.Hour))
}
