// Package logline parses the key=value lines slog's text handler writes to
// the firmware's serial console.
package logline

import (
	"errors"
	"strconv"
	"strings"
)

// Line is one parsed log record.
type Line struct {
	Level string
	Msg   string
	Attrs map[string]string
}

var ErrNotRecord = errors.New("not a log record")

// Parse splits a text handler line into its attributes. Quoted values are
// unquoted. Lines without a msg key are rejected, which filters out the
// plain println output the firmware also writes.
func Parse(s string) (Line, error) {
	l := Line{Attrs: make(map[string]string)}
	s = strings.TrimSpace(s)
	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return Line{}, ErrNotRecord
		}
		key := s[:eq]
		if strings.ContainsAny(key, " \t\"") {
			return Line{}, ErrNotRecord
		}
		s = s[eq+1:]

		var val string
		if strings.HasPrefix(s, `"`) {
			end := closingQuote(s)
			if end < 0 {
				return Line{}, ErrNotRecord
			}
			v, err := strconv.Unquote(s[:end+1])
			if err != nil {
				return Line{}, ErrNotRecord
			}
			val = v
			s = s[end+1:]
		} else {
			end := strings.IndexByte(s, ' ')
			if end < 0 {
				end = len(s)
			}
			val = s[:end]
			s = s[end:]
		}
		s = strings.TrimLeft(s, " ")
		l.Attrs[key] = val
	}
	l.Level = l.Attrs["level"]
	msg, ok := l.Attrs["msg"]
	if !ok {
		return Line{}, ErrNotRecord
	}
	l.Msg = msg
	delete(l.Attrs, "level")
	delete(l.Attrs, "msg")
	return l, nil
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// Float returns the named attribute as a float.
func (l Line) Float(key string) (float64, bool) {
	v, ok := l.Attrs[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Display tracks the values the meter last drew, built from its
// meter:started and meter:update records.
type Display struct {
	Voltage float64
	Current float64
	Limit   float64
	Updates int
}

// Apply folds l into d. It reports whether l was a meter record.
func (d *Display) Apply(l Line) bool {
	switch l.Msg {
	case "meter:started":
		d.Voltage, _ = l.Float("voltage")
		d.Current, _ = l.Float("current")
		d.Limit, _ = l.Float("limit")
		d.Updates = 0
		return true
	case "meter:update":
		v, ok := l.Float("value")
		if !ok {
			return false
		}
		switch l.Attrs["field"] {
		case "voltage":
			d.Voltage = v
		case "current":
			d.Current = v
		case "limit":
			d.Limit = v
		default:
			return false
		}
		d.Updates++
		return true
	}
	return false
}
