package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedTime is returned (wrapped in a TimeParseError) when a schedule
// time is not three colon separated integers.
var ErrMalformedTime = errors.New("malformed schedule time")

// TimeParseError reports the offending value of a failed time conversion.
type TimeParseError struct {
	Value string
	Err   error
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("parse schedule time %q: %v", e.Value, e.Err)
}

func (e *TimeParseError) Unwrap() error {
	return e.Err
}

// TimeToSeconds converts an H:MM:SS or HH:MM:SS schedule time into seconds
// since midnight. Hours past 23 describe service after midnight and are not
// wrapped, so "25:00:00" is 90000. Each field must fit in 32 bits, which
// keeps the sum clear of int64 overflow.
func TimeToSeconds(value string) (int64, error) {
	fields := strings.Split(value, ":")
	if len(fields) != 3 {
		return 0, &TimeParseError{Value: value, Err: ErrMalformedTime}
	}

	var parts [3]int64
	for i, field := range fields {
		n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
		if err != nil {
			return 0, &TimeParseError{Value: value, Err: fmt.Errorf("%w: %w", ErrMalformedTime, err)}
		}
		parts[i] = n
	}

	return parts[0]*3600 + parts[1]*60 + parts[2], nil
}

// FormatSeconds renders seconds since midnight as HH:MM:SS without wrapping
// hours at 24, the inverse of TimeToSeconds for non-negative values.
func FormatSeconds(seconds int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
