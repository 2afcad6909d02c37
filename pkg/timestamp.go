package pkg

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// TokenLayout is the time layout of a date-time token: YYYYMMDD_HHMMSS.
const TokenLayout = "20060102_150405"

// maxEpochMillis is 9999-12-31 23:59:59.999 UTC. Anything later cannot be
// written with a four digit year.
const maxEpochMillis = 253402300799999

// ErrCannotNormalize is returned when an epoch value cannot be turned into a token.
var ErrCannotNormalize = errors.New("cannot normalize epoch timestamp")

var tokenPattern = regexp.MustCompile(`^\d{8}_\d{6}$`)

// IsToken reports whether s has the exact shape of a date-time token.
func IsToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// FormatToken renders t in loc (time.Local when nil) as a date-time token.
// It fails for years that do not fit in four digits.
func FormatToken(t time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	if t.Year() < 0 || t.Year() > 9999 {
		return "", fmt.Errorf("year %d out of range", t.Year())
	}
	return t.Format(TokenLayout), nil
}

// NormalizeEpochMillis converts a decimal millisecond Unix timestamp, as
// found in messaging app filenames, into a date-time token in loc.
// Sub-second precision is dropped.
func NormalizeEpochMillis(epochMillis string, loc *time.Location) (string, error) {
	ms, err := strconv.ParseInt(epochMillis, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrCannotNormalize, epochMillis, err)
	}
	if ms < 0 || ms > maxEpochMillis {
		return "", fmt.Errorf("%w: %d out of range", ErrCannotNormalize, ms)
	}
	token, err := FormatToken(time.Unix(ms/1000, 0), loc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCannotNormalize, err)
	}
	return token, nil
}
