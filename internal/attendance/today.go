package attendance

import (
	"time"
)

// Today formats the current calendar date as YYYY-MM-DD in the first
// usable zone from the chain: the viewer's school time zone, the
// configured default, the process-local zone, UTC.
func Today(userZone, defaultZone string) string {
	return todayAt(time.Now(), userZone, defaultZone)
}

func todayAt(now time.Time, userZone, defaultZone string) string {
	for _, name := range []string{userZone, defaultZone} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return now.In(loc).Format("2006-01-02")
		}
	}
	if loc := time.Local; loc != nil {
		return now.In(loc).Format("2006-01-02")
	}
	return now.UTC().Format("2006-01-02")
}

// TimestampLabel is the human-readable local time embedded in attendance
// record descriptions after the " @ " separator.
func TimestampLabel(userZone, defaultZone string) string {
	now := time.Now()
	for _, name := range []string{userZone, defaultZone} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return now.In(loc).Format("2006-01-02 15:04:05")
		}
	}
	return now.Format("2006-01-02 15:04:05")
}
