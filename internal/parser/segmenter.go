package parser

import (
	"log/slog"
	"time"
)

// SegmentLine is a line that belongs to a hand, with its classification.
type SegmentLine struct {
	LogLine
	Event Event
}

// HandSegment is the chronological slice of lines between one hand start
// and the next, plus the table state in effect when the hand began.
type HandSegment struct {
	TableName  string
	HandNumber int
	GameNumber string
	StartTime  time.Time
	Game       GameType
	GameLabel  string
	Structure  BetType

	// DealerAlias is the dealer named on the start line, or the previous
	// hand's dealer when the button was dead.
	DealerAlias string
	Blinds      BlindLevels

	// Ended is set when an end marker for this hand was seen.
	Ended bool
	Lines []SegmentLine
}

type SegmentResult struct {
	Segments []HandSegment
	// Lines counts every input row; Ignored counts administrative chatter.
	Lines   int
	Ignored int
	// Preamble counts lines seen before the first hand started.
	Preamble int
	// Dropped lists hand numbers discarded because the log ended before
	// their end marker.
	Dropped []int
	// Blinds is the carried blind state after the last line.
	Blinds BlindLevels
}

// Segmenter splits one table's log into hands.
type Segmenter struct {
	cls    *Classifier
	table  string
	blinds BlindLevels
	logger *slog.Logger
}

func NewSegmenter(cls *Classifier, table string, initial BlindLevels) *Segmenter {
	if cls == nil {
		cls = NewClassifier(nil)
	}
	return &Segmenter{cls: cls, table: table, blinds: initial, logger: slog.Default()}
}

// Segment orders lines oldest first and groups them by hand. A trailing hand
// that has not seen its own end marker is dropped.
func (s *Segmenter) Segment(lines []LogLine) SegmentResult {
	ordered := Chronological(lines)
	res := SegmentResult{Lines: len(ordered)}

	blinds := s.blinds
	dealer := ""
	var cur *HandSegment
	// Hand #1 has no earlier change event to seed its blinds, so the first
	// post of each type corrects them once.
	var correctedSB, correctedBB, correctedAnte bool

	for _, ll := range ordered {
		ev := s.cls.Classify(ll.Text)

		switch ev.Kind {
		case EventIgnorable:
			res.Ignored++
			continue

		case EventBlindStructureChanged:
			switch ev.BlindType {
			case "small blind":
				blinds.SmallBlind = ev.Amount
			case "big blind":
				blinds.BigBlind = ev.Amount
			case "ante":
				blinds.Ante = ev.Amount
			default:
				s.logger.Debug("unknown blind type changed", "table", s.table, "type", ev.BlindType)
			}
			continue

		case EventHandStarted:
			if cur != nil {
				res.Segments = append(res.Segments, *cur)
			}
			if !ev.DeadButton {
				dealer = ev.Alias
			}
			cur = &HandSegment{
				TableName:   s.table,
				HandNumber:  ev.HandNumber,
				GameNumber:  ll.GameNumber,
				StartTime:   ll.Time,
				Game:        ev.Game,
				GameLabel:   ev.GameLabel,
				Structure:   ev.Structure,
				DealerAlias: dealer,
				Blinds:      blinds,
			}
			continue

		case EventHandEnded:
			if cur != nil && cur.HandNumber == ev.HandNumber {
				cur.Ended = true
			}
			continue

		case EventPosted:
			if cur != nil && cur.HandNumber == 1 {
				switch ev.Action {
				case ActionPostSB:
					if !correctedSB {
						correctedSB = true
						blinds.SmallBlind = ev.Amount
						cur.Blinds.SmallBlind = ev.Amount
					}
				case ActionPostBB:
					if !correctedBB {
						correctedBB = true
						blinds.BigBlind = ev.Amount
						cur.Blinds.BigBlind = ev.Amount
					}
				case ActionPostAnte:
					if !correctedAnte {
						correctedAnte = true
						blinds.Ante = ev.Amount
						cur.Blinds.Ante = ev.Amount
					}
				}
			}
		}

		if cur == nil {
			res.Preamble++
			continue
		}
		cur.Lines = append(cur.Lines, SegmentLine{LogLine: ll, Event: ev})
	}

	if cur != nil {
		if cur.Ended {
			res.Segments = append(res.Segments, *cur)
		} else {
			res.Dropped = append(res.Dropped, cur.HandNumber)
			s.logger.Info("dropping incomplete trailing hand",
				"table", s.table, "hand", cur.HandNumber, "lines", len(cur.Lines))
		}
	}
	res.Blinds = blinds
	return res
}
