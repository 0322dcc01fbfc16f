package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	reTableName  = regexp.MustCompile(`^.*poker_now_log_(.*)\.csv$`)
	reGameNumber = regexp.MustCompile(`\d{13}`)
	reTimestamp  = regexp.MustCompile(`^(.+:\d{2})(?:\.(\d+))?Z?$`)
)

// timeLayout is the normalized form of the "at" column.
const timeLayout = "2006-01-02T15:04:05.000Z"

// LogLine is one normalized record of a Poker Now export.
type LogLine struct {
	// Number is the 1-based row number in the source file, header excluded.
	Number int
	Text   string
	// At is the timestamp normalized to millisecond precision with a Z suffix.
	At   string
	Time time.Time
	// Order is the opaque ordering token from the "order" column.
	Order      string
	GameNumber string
}

// ReadLog reads a Poker Now CSV export. Rows are returned in file order,
// already normalized, and every row is kept; filtering is left to the
// segmenter.
func ReadLog(r io.Reader) ([]LogLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	entryCol, atCol, orderCol := 0, 1, 2
	var pending []string
	if isHeader(header) {
		for i, name := range header {
			switch strings.ToLower(strings.TrimSpace(name)) {
			case "entry":
				entryCol = i
			case "at":
				atCol = i
			case "order":
				orderCol = i
			}
		}
	} else {
		pending = header
	}

	var lines []LogLine
	appendRow := func(row []string) {
		ll := LogLine{Number: len(lines) + 1}
		if entryCol < len(row) {
			ll.Text = Normalize(row[entryCol])
		}
		if atCol < len(row) {
			ll.At, ll.Time = normalizeTimestamp(row[atCol])
		}
		if orderCol < len(row) {
			ll.Order = strings.TrimSpace(row[orderCol])
			ll.GameNumber = reGameNumber.FindString(ll.Order)
		}
		lines = append(lines, ll)
	}
	if pending != nil {
		appendRow(pending)
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return lines, fmt.Errorf("read csv row %d: %w", len(lines)+1, err)
		}
		appendRow(row)
	}
	return lines, nil
}

func isHeader(row []string) bool {
	for _, name := range row {
		if strings.EqualFold(strings.TrimSpace(name), "entry") {
			return true
		}
	}
	return false
}

func normalizeTimestamp(raw string) (string, time.Time) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return t.Format(timeLayout), t
	}
	m := reTimestamp.FindStringSubmatch(raw)
	if m == nil {
		return raw, time.Time{}
	}
	frac := m[2]
	for len(frac) < 3 {
		frac += "0"
	}
	s := m[1] + "." + frac[:3] + "Z"
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05.000Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(timeLayout), t.UTC()
		}
	}
	return s, time.Time{}
}

// Chronological returns lines ordered oldest first. Poker Now writes its
// exports newest first, but hand-edited or re-exported files may already be
// ascending, so the direction is detected from the ordering tokens and, when
// those are missing, from the timestamps. With neither, file order is taken
// as newest first unless the row numbers show the lines were already
// reversed, so ordering twice gives the same result.
func Chronological(lines []LogLine) []LogLine {
	out := make([]LogLine, len(lines))
	copy(out, lines)
	if len(out) < 2 {
		return out
	}
	if !isNewestFirst(out) {
		return out
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func isNewestFirst(lines []LogLine) bool {
	first, last := lines[0], lines[len(lines)-1]
	if c := compareOrder(first.Order, last.Order); c != 0 {
		return c > 0
	}
	if !first.Time.IsZero() && !last.Time.IsZero() && !first.Time.Equal(last.Time) {
		return first.Time.After(last.Time)
	}
	return first.Number <= last.Number
}

// compareOrder compares two numeric ordering tokens without overflowing.
// Non-numeric or missing tokens compare equal.
func compareOrder(a, b string) int {
	if !isDigits(a) || !isDigits(b) {
		return 0
	}
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) > len(b) {
			return 1
		}
		return -1
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TableNameFromPath extracts the table name from a
// poker_now_log_<table>.csv file name, falling back to the file stem.
func TableNameFromPath(path string) string {
	base := filepath.Base(path)
	if m := reTableName.FindStringSubmatch(base); m != nil && m[1] != "" {
		return m[1]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
