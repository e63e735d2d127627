package subtitle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const keySeparator = " --> "

// two-digit hour field keeps timing keys fixed width, so string order is time order
const maxHours = 99

// parses an ASS timecode H:MM:SS.cc. Hours run 0-99, minutes and seconds
// 0-59. The fraction may have one to three digits and is read as a decimal
// fraction of a second, so centiseconds scale by ten.
func ParseTimecode(ts string) (time.Duration, error) {
	ts = strings.TrimSpace(ts)
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, &TimecodeError{Value: ts, Reason: "expected H:MM:SS.cc"}
	}

	hours, err := parseDigits(parts[0])
	if err != nil {
		return 0, &TimecodeError{Value: ts, Reason: "hours " + err.Error()}
	}
	if hours > maxHours {
		return 0, &TimecodeError{Value: ts, Reason: fmt.Sprintf("hours out of range (max %d)", maxHours)}
	}
	minutes, err := parseDigits(parts[1])
	if err != nil {
		return 0, &TimecodeError{Value: ts, Reason: "minutes " + err.Error()}
	}
	if minutes > 59 {
		return 0, &TimecodeError{Value: ts, Reason: "minutes out of range"}
	}

	secPart, fracPart, hasFrac := strings.Cut(parts[2], ".")
	seconds, err := parseDigits(secPart)
	if err != nil {
		return 0, &TimecodeError{Value: ts, Reason: "seconds " + err.Error()}
	}
	if seconds > 59 {
		return 0, &TimecodeError{Value: ts, Reason: "seconds out of range"}
	}

	millis := 0
	if hasFrac {
		if len(fracPart) == 0 || len(fracPart) > 3 {
			return 0, &TimecodeError{Value: ts, Reason: "fraction must have 1-3 digits"}
		}
		padded := fracPart + strings.Repeat("0", 3-len(fracPart))
		millis, err = parseDigits(padded)
		if err != nil {
			return 0, &TimecodeError{Value: ts, Reason: "fraction " + err.Error()}
		}
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

// zero-padded HH:MM:SS.mmm. The decimal point is always '.', whatever the
// process locale.
func FormatTimecode(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d / time.Hour)
	minutes := int64(d%time.Hour) / int64(time.Minute)
	seconds := int64(d%time.Minute) / int64(time.Second)
	millis := int64(d%time.Second) / int64(time.Millisecond)

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// builds the "<start> --> <end>" line used as SRT timing and merge key
func TimecodeKey(start, end string) (string, error) {
	s, err := ParseTimecode(start)
	if err != nil {
		return "", err
	}
	e, err := ParseTimecode(end)
	if err != nil {
		return "", err
	}
	return FormatTimecode(s) + keySeparator + FormatTimecode(e), nil
}

func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	return strconv.Atoi(s)
}
