package templates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// maxDateFormatLength limits format string length to prevent abuse.
const maxDateFormatLength = 50

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// datePresets provides named shortcuts for common date formats.
var datePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "D MMMM YYYY",
}

// payloadDateLayouts lists the input layouts accepted for date fields,
// tried in order. Payloads arrive as JSON, so dates are strings.
var payloadDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// dateFormatToGoLayout translates a token format like "DD/MM/YYYY" into
// a Go time layout. A preset name resolves first.
func dateFormatToGoLayout(format string) (string, error) {
	if preset, ok := datePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	if format == "" {
		return "", fmt.Errorf("%w: empty format", ErrInvalidDateFormat)
	}
	if len(format) > maxDateFormatLength {
		return "", fmt.Errorf("%w: format too long (%d chars)", ErrInvalidDateFormat, len(format))
	}

	var sb strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, dt := range dateTokens {
			if strings.HasPrefix(format[i:], dt.token) {
				sb.WriteString(dt.goFmt)
				i += len(dt.token)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(format[i])
			i++
		}
	}
	return sb.String(), nil
}

// parsePayloadDate interprets a date string from the request payload.
func parsePayloadDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range payloadDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// formatDate is the template helper behind {{formatDate .date "long"}}.
// An unparseable value passes through unchanged rather than failing the
// whole render.
func formatDate(value, format string) (string, error) {
	layout, err := dateFormatToGoLayout(format)
	if err != nil {
		return "", err
	}
	t, err := parsePayloadDate(value)
	if err != nil {
		return value, nil
	}
	return t.Format(layout), nil
}
