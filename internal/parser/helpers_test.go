package parser

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var fixtureBase = time.Date(2022, 9, 14, 1, 0, 0, 0, time.UTC)

// pokerNowCSV renders chronological entries (one per line) the way Poker Now
// exports them: header first, newest row at the top.
func pokerNowCSV(t *testing.T, entries string) string {
	t.Helper()
	var rows [][]string
	for i, entry := range fixtureEntries(entries) {
		at := fixtureBase.Add(time.Duration(i) * time.Second)
		order := strconv.FormatInt(at.UnixMilli()*100, 10)
		rows = append(rows, []string{entry, at.Format("2006-01-02T15:04:05.000Z"), order})
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"entry", "at", "order"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if err := w.Write(rows[i]); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	return buf.String()
}

func fixtureEntries(entries string) []string {
	var out []string
	for _, line := range strings.Split(entries, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func readFixture(t *testing.T, entries string) []LogLine {
	t.Helper()
	lines, err := ReadLog(strings.NewReader(pokerNowCSV(t, entries)))
	if err != nil {
		t.Fatalf("ReadLog: %v", err)
	}
	return lines
}

func segmentFixture(t *testing.T, entries string) SegmentResult {
	t.Helper()
	return NewSegmenter(NewClassifier(nil), "test-table", DefaultBlindLevels()).Segment(readFixture(t, entries))
}

func compileFixture(t *testing.T, entries string, hero string) []*Hand {
	t.Helper()
	res := segmentFixture(t, entries)
	settings := DefaultSettings()
	settings.HeroName = hero
	hands, err := NewCompiler(settings, nil).CompileTable(res.Segments, aliasResolver{})
	if err != nil {
		t.Fatalf("CompileTable: %v", err)
	}
	return hands
}

// aliasResolver treats every alias as its own canonical name.
type aliasResolver struct{}

func (aliasResolver) Resolve(alias, _ string) (string, error) { return alias, nil }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got.String(), want)
	}
}

func hasAnomaly(h *Hand, code string) bool {
	for _, a := range h.Anomalies {
		if a.Code == code {
			return true
		}
	}
	return false
}

// Two complete hands and a trailing third hand that never ends.
const tableLog = `
The game's small blind was changed from 10 to 5.00
-- starting hand #1 (id: abc123)  (No Limit Texas Hold'em) (dealer: "Alice @ dev1") --
Player stacks: #1 "Alice @ dev1" (1000.00) | #3 "Bob @ dev2" (1000.00) | #5 "Carol @ dev3" (500.00)
Your hand is A♠, 10♦
"Bob @ dev2" posts a small blind of 5.00
"Carol @ dev3" posts a big blind of 10.00
"Alice @ dev1" raises to 30.00
"Bob @ dev2" calls 30.00
"Carol @ dev3" folds
Flop:  [A♥, 7♣, 10♠]
"Bob @ dev2" checks
"Alice @ dev1" bets 40.00
"Bob @ dev2" raises to 100.00
"Alice @ dev1" calls 100.00
Turn: A♥, 7♣, 10♠ [2♦]
"Bob @ dev2" bets 200.00
"Alice @ dev1" folds
Uncalled bet of 200.00 returned to "Bob @ dev2"
"Bob @ dev2" collected 270.00 from pot
-- ending hand #1 --
The player "Dave @ dev4" joined the game with a stack of 1000.
-- starting hand #2 (id: def456)  (No Limit Texas Hold'em) (dead button) --
Player stacks: #1 "Alice @ dev1" (870.00) | #3 "Bob @ dev2" (1140.00) | #5 "Carol @ dev3" (490.00)
Your hand is K♣, K♦
"Carol @ dev3" posts a small blind of 5.00
"Alice @ dev1" posts a big blind of 10.00
"Bob @ dev2" folds
"Carol @ dev3" calls 10.00
"Alice @ dev1" checks
Flop:  [2♣, 3♦, 9♥]
"Carol @ dev3" checks
"Alice @ dev1" checks
Turn: 2♣, 3♦, 9♥ [J♠]
"Carol @ dev3" checks
"Alice @ dev1" checks
River: 2♣, 3♦, 9♥, J♠ [Q♦]
"Carol @ dev3" checks
"Alice @ dev1" checks
"Carol @ dev3" shows a 4♠, 5♠.
"Alice @ dev1" shows a K♣, K♦.
"Alice @ dev1" collected 20.00 from pot with Pair, K's (combination: K♣, K♦, Q♦, J♠, 9♥)
-- ending hand #2 --
The game's big blind was changed from 10.00 to 20.00
-- starting hand #3 (id: ghi789)  (No Limit Texas Hold'em) (dealer: "Bob @ dev2") --
Player stacks: #1 "Alice @ dev1" (880.00) | #3 "Bob @ dev2" (1140.00)
"Alice @ dev1" posts a small blind of 5.00
`
