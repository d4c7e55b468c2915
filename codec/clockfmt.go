package codec

import (
	"strings"
	"time"
)

// Default display formats.
const (
	DefaultTimeFormat   = "HH:mm"
	DefaultTime12Format = "h:mm"
	DefaultDateFormat   = "ddd dd"
)

// clockTokens maps display-format tokens to Go reference layout fragments,
// longest first so that "dddd" wins over "dd".
var clockTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"dd", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
	{"d", "2"},
	{"H", "15"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
}

// Layout converts a display format such as "HH:mm" or "ddd dd" into a Go
// time layout. Characters that are not tokens are copied as they are.
func Layout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, t := range clockTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

// FormatClock renders t using a display format.
func FormatClock(format string, t time.Time) string {
	return t.Format(Layout(format))
}
