package parser

import (
	"reflect"
	"testing"
)

func TestSegmentTableLog(t *testing.T) {
	t.Parallel()

	res := segmentFixture(t, tableLog)
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 complete hands, got %d", len(res.Segments))
	}
	if !reflect.DeepEqual(res.Dropped, []int{3}) {
		t.Fatalf("expected trailing hand 3 dropped, got %v", res.Dropped)
	}
	if res.Lines != len(fixtureEntries(tableLog)) {
		t.Fatalf("Lines = %d, want %d", res.Lines, len(fixtureEntries(tableLog)))
	}
	if res.Ignored != 1 {
		t.Fatalf("Ignored = %d, want 1", res.Ignored)
	}
	if res.Preamble != 0 {
		t.Fatalf("Preamble = %d, want 0", res.Preamble)
	}

	first, second := res.Segments[0], res.Segments[1]
	if first.HandNumber != 1 || second.HandNumber != 2 {
		t.Fatalf("segments out of order: %d, %d", first.HandNumber, second.HandNumber)
	}
	if !first.Ended || !second.Ended {
		t.Fatal("both complete hands must be marked ended")
	}
	if first.Game != GameHoldem || first.Structure != BetNoLimit {
		t.Fatalf("unexpected game: %q %q", first.Game, first.Structure)
	}
	if first.TableName != "test-table" {
		t.Fatalf("table name = %q", first.TableName)
	}
	if want := fixtureBase.Add(1e9); !first.StartTime.Equal(want) {
		t.Fatalf("start time = %v, want %v", first.StartTime, want)
	}
	if first.GameNumber == "" || first.GameNumber == second.GameNumber {
		t.Fatalf("game numbers must be distinct: %q %q", first.GameNumber, second.GameNumber)
	}

	// Hand lines exclude the structural start line but keep everything after.
	if got := first.Lines[0].Event.Kind; got != EventSeatAnnounced {
		t.Fatalf("first line of hand 1 is %v", got)
	}
	if got := first.Lines[len(first.Lines)-1].Event.Kind; got != EventCollected {
		t.Fatalf("last line of hand 1 is %v", got)
	}
}

func TestSegmentBlindsCarryForward(t *testing.T) {
	t.Parallel()

	res := segmentFixture(t, tableLog)
	h1, h2 := res.Segments[0].Blinds, res.Segments[1].Blinds

	// Hand 1 takes the preceding change and then corrects the big blind from
	// the first post.
	assertAmount(t, "hand 1 small blind", h1.SmallBlind, "5")
	assertAmount(t, "hand 1 big blind", h1.BigBlind, "10")
	assertAmount(t, "hand 2 small blind", h2.SmallBlind, "5")
	assertAmount(t, "hand 2 big blind", h2.BigBlind, "10")

	// The change after hand 2 is carried even though hand 3 is dropped.
	assertAmount(t, "carried big blind", res.Blinds.BigBlind, "20")
	assertAmount(t, "carried small blind", res.Blinds.SmallBlind, "5")
}

func TestSegmentHandOneCorrectionUsesFirstPostOnly(t *testing.T) {
	t.Parallel()

	res := segmentFixture(t, `
-- starting hand #1 (id: a)  (No Limit Texas Hold'em) (dealer: "A @ d1") --
Player stacks: #1 "A @ d1" (100) | #2 "B @ d2" (100)
"A @ d1" posts an ante of 1.00
"B @ d2" posts an ante of 2.00
"A @ d1" posts a small blind of 25
"B @ d2" posts a big blind of 50
"A @ d1" posts a small blind of 99
-- ending hand #1 --
-- starting hand #2 (id: b)  (No Limit Texas Hold'em) (dealer: "B @ d2") --
"B @ d2" posts a big blind of 500
-- ending hand #2 --
`)
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	b := res.Segments[0].Blinds
	assertAmount(t, "ante", b.Ante, "1")
	assertAmount(t, "small blind", b.SmallBlind, "25")
	assertAmount(t, "big blind", b.BigBlind, "50")

	// Posts in later hands never rewrite the carried state.
	assertAmount(t, "hand 2 big blind", res.Segments[1].Blinds.BigBlind, "50")
	assertAmount(t, "carried big blind", res.Blinds.BigBlind, "50")
}

func TestSegmentDeadButtonKeepsPreviousDealer(t *testing.T) {
	t.Parallel()

	res := segmentFixture(t, tableLog)
	if got := res.Segments[0].DealerAlias; got != "Alice" {
		t.Fatalf("hand 1 dealer = %q", got)
	}
	if got := res.Segments[1].DealerAlias; got != "Alice" {
		t.Fatalf("dead button dealer = %q, want previous dealer", got)
	}
}

func TestSegmentPreambleAndMissingEndMarker(t *testing.T) {
	t.Parallel()

	res := segmentFixture(t, `
some message before play
"Ghost @ g1" checks
-- starting hand #4 (id: a)  (No Limit Texas Hold'em) (dealer: "A @ d1") --
Player stacks: #1 "A @ d1" (100)
-- starting hand #5 (id: b)  (No Limit Texas Hold'em) (dealer: "A @ d1") --
Player stacks: #1 "A @ d1" (100)
-- ending hand #5 --
`)
	if res.Preamble != 2 {
		t.Fatalf("Preamble = %d, want 2", res.Preamble)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(res.Segments))
	}
	if res.Segments[0].Ended {
		t.Fatal("hand 4 never saw its end marker")
	}
	if !res.Segments[1].Ended {
		t.Fatal("hand 5 must be ended")
	}
	if len(res.Dropped) != 0 {
		t.Fatalf("nothing should be dropped, got %v", res.Dropped)
	}
}

func TestSegmentDropsTrailingHandEndedOutOfOrder(t *testing.T) {
	t.Parallel()

	// The end marker for hand #2 precedes its start, so hand #2 never ends.
	res := segmentFixture(t, `
-- starting hand #1 (id: a)  (No Limit Texas Hold'em) (dealer: "A @ d1") --
Player stacks: #1 "A @ d1" (100) | #2 "B @ d2" (100)
-- ending hand #2 --
-- ending hand #1 --
-- starting hand #2 (id: b)  (No Limit Texas Hold'em) (dealer: "B @ d2") --
Player stacks: #1 "A @ d1" (100) | #2 "B @ d2" (100)
`)
	if len(res.Segments) != 1 || res.Segments[0].HandNumber != 1 {
		t.Fatalf("expected only hand 1, got %d segments", len(res.Segments))
	}
	if !reflect.DeepEqual(res.Dropped, []int{2}) {
		t.Fatalf("Dropped = %v, want [2]", res.Dropped)
	}
}

func TestSegmentIsIdempotentOnRerun(t *testing.T) {
	t.Parallel()

	lines := readFixture(t, tableLog)
	seg := NewSegmenter(nil, "t", DefaultBlindLevels())
	a := seg.Segment(lines)
	b := seg.Segment(lines)
	if len(a.Segments) != len(b.Segments) || !reflect.DeepEqual(a.Dropped, b.Dropped) {
		t.Fatalf("reruns disagree: %d/%v vs %d/%v", len(a.Segments), a.Dropped, len(b.Segments), b.Dropped)
	}
	if !a.Blinds.BigBlind.Equal(b.Blinds.BigBlind) {
		t.Fatal("carried blinds leaked between runs")
	}
}

func TestSegmentEmptyLog(t *testing.T) {
	t.Parallel()

	res := NewSegmenter(nil, "t", DefaultBlindLevels()).Segment(nil)
	if len(res.Segments) != 0 || len(res.Dropped) != 0 || res.Lines != 0 {
		t.Fatalf("unexpected result for empty log: %+v", res)
	}
	assertAmount(t, "default big blind", res.Blinds.BigBlind, "20")
}
