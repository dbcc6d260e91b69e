package timeutil

import "time"

// Clock returns the current time. Services keep one as a field so tests can
// pin it.
type Clock func() time.Time

func NowUnix() int64 {
	return time.Now().Unix()
}

func FormatUnix(ts int64) string {
	if ts == 0 {
		return "Never"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04 MST")
}
