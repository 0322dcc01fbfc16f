package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// IdentityResolver maps a display alias and device fingerprint to a
// canonical player name.
type IdentityResolver interface {
	Resolve(alias, device string) (string, error)
}

// ResolverFunc adapts a function to IdentityResolver.
type ResolverFunc func(alias, device string) (string, error)

func (f ResolverFunc) Resolve(alias, device string) (string, error) { return f(alias, device) }

// Compiler turns hand segments into Hand records.
type Compiler struct {
	settings Settings
	vocab    *Vocabulary
	logger   *slog.Logger
}

func NewCompiler(settings Settings, vocab *Vocabulary) *Compiler {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if settings.TableSize <= 0 {
		settings.TableSize = 10
	}
	return &Compiler{settings: settings, vocab: vocab, logger: slog.Default()}
}

type playerKey struct {
	alias  string
	device string
}

// roundState is the open round and the per-player commitment within it. It
// is replaced, never reset field by field, when a new round opens.
type roundState struct {
	round  Round
	commit map[int]decimal.Decimal
}

func newRoundState(id int, street Street, cards []string) *roundState {
	return &roundState{
		round:  Round{ID: id, Street: street, Cards: append([]string(nil), cards...)},
		commit: make(map[int]decimal.Decimal),
	}
}

// potState tracks collection events. Pots are numbered in the order the log
// first references them.
type potState struct {
	index map[string]int
	pots  []Pot
}

// compileState is owned by a single Compile call.
type compileState struct {
	hand     *Hand
	seg      *HandSegment
	players  map[playerKey]int
	resolved map[playerKey]string
	round    *roundState
	rounds   int
	pots     potState
	line     SegmentLine
}

// Compile replays one segment through the hand state machine. The returned
// error is reserved for identity resolution failures; every other data
// problem is recorded as an anomaly on the hand.
func (c *Compiler) Compile(seg HandSegment, resolve IdentityResolver) (*Hand, error) {
	h := &Hand{
		GameNumber: seg.GameNumber,
		HandNumber: seg.HandNumber,
		TableName:  seg.TableName,
		StartTime:  seg.StartTime,
		GameType:   seg.Game,
		BetLimit:   BetLimit{Type: seg.Structure},
		TableSize:  c.settings.TableSize,
		Currency:   c.settings.Currency,
		SmallBlind: seg.Blinds.SmallBlind,
		BigBlind:   seg.Blinds.BigBlind,
		Ante:       seg.Blinds.Ante,
	}
	if h.GameType == "" {
		h.AddAnomaly("UNKNOWN_GAME", SeverityWarning, fmt.Sprintf("game %q is not a known variant", seg.GameLabel))
	}
	if h.BetLimit.Type == "" {
		h.AddAnomaly("UNKNOWN_STRUCTURE", SeverityWarning, "betting structure is not a known limit")
	}
	if !seg.Ended {
		h.AddAnomaly("MISSING_END_MARKER", SeverityInfo, "next hand started before this hand's end marker")
	}

	st := &compileState{
		hand:     h,
		seg:      &seg,
		players:  make(map[playerKey]int),
		resolved: make(map[playerKey]string),
		pots:     potState{index: make(map[string]int)},
	}

	for _, line := range seg.Lines {
		st.line = line
		if err := c.apply(st, line.Event, resolve); err != nil {
			return nil, err
		}
	}
	st.closeRound()

	h.Pots = st.pots.pots
	if h.HeroPlayerID == nil {
		h.addFlag(FlagObserved)
	}
	if len(h.Players) == 0 {
		h.Degraded = true
		h.AddAnomaly("NO_PLAYERS", SeverityWarning, "no seating line was recognized")
	}
	return h, nil
}

func (c *Compiler) apply(st *compileState, ev Event, resolve IdentityResolver) error {
	h := st.hand
	switch ev.Kind {
	case EventSeatAnnounced:
		if st.round == nil {
			st.openRound(StreetPreflop, nil)
		}
		for _, seat := range ev.Seats {
			if err := c.seatPlayer(st, seat, resolve); err != nil {
				return err
			}
		}

	case EventStreetMarker:
		st.closeRound()
		st.openRound(ev.Street, ev.Cards)

	case EventPosted:
		id, ok := c.actor(st, ev)
		if !ok {
			return nil
		}
		rs := st.ensureRound()
		if ev.Action != ActionPostDead {
			rs.commit[id] = rs.commit[id].Add(ev.Amount)
			h.Contributed = h.Contributed.Add(ev.Amount)
		}
		st.appendAction(Action{PlayerID: id, Kind: ev.Action, Amount: ev.Amount, AllIn: ev.AllIn})

	case EventBetAction:
		id, ok := c.actor(st, ev)
		if !ok {
			return nil
		}
		rs := st.ensureRound()
		incremental := ev.Amount.Sub(rs.commit[id]).Round(2)
		if incremental.IsNegative() {
			h.AddAnomaly("NEGATIVE_INCREMENT", SeverityWarning,
				fmt.Sprintf("line %d: %s reported %s below committed %s", st.line.Number, ev.Alias, ev.Amount, rs.commit[id]))
		}
		rs.commit[id] = rs.commit[id].Add(incremental)
		h.Contributed = h.Contributed.Add(incremental)
		st.appendAction(Action{PlayerID: id, Kind: ev.Action, Amount: incremental, AllIn: ev.AllIn})

	case EventNonBetAction:
		id, ok := c.actor(st, ev)
		if !ok {
			return nil
		}
		st.appendAction(Action{PlayerID: id, Kind: ev.Action, Amount: decimal.Zero})

	case EventUncalledBetReturned:
		id, ok := c.actor(st, ev)
		if !ok {
			return nil
		}
		amount := ev.Amount.Round(2)
		h.Contributed = h.Contributed.Sub(amount)
		h.Refunds = append(h.Refunds, Refund{PlayerID: id, Amount: amount})

	case EventShowedCards:
		id, ok := c.actor(st, ev)
		if !ok {
			return nil
		}
		if st.round == nil || st.round.round.Street != StreetShowdown {
			st.closeRound()
			st.openRound(StreetShowdown, nil)
		}
		st.appendAction(Action{PlayerID: id, Kind: ActionShowsCards, Amount: decimal.Zero, Cards: ev.Cards})
		st.round.commit = make(map[int]decimal.Decimal)

	case EventHeroDealt:
		if h.HeroPlayerID == nil {
			c.unknownPlayer(st, "hero")
			return nil
		}
		st.ensureRound()
		st.appendAction(Action{PlayerID: *h.HeroPlayerID, Kind: ActionDealtCards, Amount: decimal.Zero, Cards: ev.Cards})

	case EventAddedChips:
		id, ok := st.players[playerKey{ev.Alias, ev.Device}]
		if !ok {
			c.logger.Debug("dropping chips added before seating",
				"table", h.TableName, "hand", h.Key(), "player", ev.Alias)
			return nil
		}
		st.ensureRound()
		st.appendAction(Action{PlayerID: id, Kind: ActionAddedChips, Amount: ev.Amount})

	case EventCollected:
		id, ok := c.actor(st, ev)
		if !ok {
			return nil
		}
		st.pots.credit(ev.PotLabel, id, ev.Amount)

	case EventRunItTwiceApproved:
		h.addFlag(FlagRunItTwice)

	case EventHandStarted, EventHandEnded, EventBlindStructureChanged, EventIgnorable:
		// Structural lines were consumed by the segmenter.

	default:
		h.Unprocessed++
		c.logger.Debug("line not processed",
			"table", h.TableName, "hand", h.Key(), "line", st.line.Number, "text", st.line.Text)
	}
	return nil
}

func (c *Compiler) seatPlayer(st *compileState, seat SeatInfo, resolve IdentityResolver) error {
	h := st.hand
	key := playerKey{seat.Alias, seat.Device}
	if _, seated := st.players[key]; seated {
		return nil
	}

	name, ok := st.resolved[key]
	if !ok {
		if resolve == nil {
			name = seat.Alias
		} else {
			var err error
			name, err = resolve.Resolve(seat.Alias, seat.Device)
			if err != nil {
				return fmt.Errorf("hand %s: resolve %q @ %q: %w", h.Key(), seat.Alias, seat.Device, err)
			}
		}
		st.resolved[key] = name
	}

	id := len(h.Players)
	h.Players = append(h.Players, Player{
		ID:            id,
		Seat:          seat.Seat,
		Name:          name,
		Display:       seat.Alias,
		Device:        seat.Device,
		StartingStack: seat.Stack,
		Bounty:        decimal.Zero,
	})
	st.players[key] = id

	if seat.Seat < 1 || seat.Seat > h.TableSize {
		h.AddAnomaly("SEAT_OUT_OF_RANGE", SeverityWarning, fmt.Sprintf("seat %d for %s", seat.Seat, seat.Alias))
	}
	if st.seg.DealerAlias != "" && st.seg.DealerAlias == seat.Alias {
		h.DealerSeat = seat.Seat
	}
	if c.settings.HeroName != "" && name == c.settings.HeroName && h.HeroPlayerID == nil {
		heroID := id
		h.HeroPlayerID = &heroID
	}
	return nil
}

// actor looks up the acting player. An unseated reference drops only the
// action that made it.
func (c *Compiler) actor(st *compileState, ev Event) (int, bool) {
	id, ok := st.players[playerKey{ev.Alias, ev.Device}]
	if !ok {
		c.unknownPlayer(st, ev.Alias+" @ "+ev.Device)
		return 0, false
	}
	return id, true
}

func (c *Compiler) unknownPlayer(st *compileState, who string) {
	h := st.hand
	c.logger.Warn("action references unseated player",
		"table", h.TableName, "hand", h.Key(), "line", st.line.Number, "player", who)
	h.AddAnomaly("UNKNOWN_PLAYER", SeverityWarning,
		fmt.Sprintf("line %d: %s: %s", st.line.Number, who, strings.TrimSpace(st.line.Text)))
}

func (st *compileState) openRound(street Street, cards []string) {
	st.round = newRoundState(st.rounds, street, cards)
	st.rounds++
}

// ensureRound opens the first round when an action arrives before any
// seating line or street marker.
func (st *compileState) ensureRound() *roundState {
	if st.round == nil {
		st.openRound(StreetPreflop, nil)
	}
	return st.round
}

func (st *compileState) closeRound() {
	if st.round == nil {
		return
	}
	st.hand.Rounds = append(st.hand.Rounds, st.round.round)
	st.round = nil
}

func (st *compileState) appendAction(a Action) {
	rs := st.ensureRound()
	a.Number = len(rs.round.Actions)
	rs.round.Actions = append(rs.round.Actions, a)
}

func (p *potState) credit(label string, playerID int, amount decimal.Decimal) {
	n, ok := p.index[label]
	if !ok {
		n = len(p.pots)
		p.index[label] = n
		p.pots = append(p.pots, Pot{Number: n, Amount: decimal.Zero, Rake: decimal.Zero})
	}
	pot := &p.pots[n]
	pot.Amount = pot.Amount.Add(amount)
	for i := range pot.Wins {
		if pot.Wins[i].PlayerID == playerID {
			pot.Wins[i].Amount = pot.Wins[i].Amount.Add(amount)
			return
		}
	}
	pot.Wins = append(pot.Wins, PlayerWin{PlayerID: playerID, Amount: amount, Rake: decimal.Zero})
}

// CompileTable compiles every segment and reconciles each resulting hand.
// It stops at the first identity resolution failure.
func (c *Compiler) CompileTable(segs []HandSegment, resolve IdentityResolver) ([]*Hand, error) {
	hands := make([]*Hand, 0, len(segs))
	for _, seg := range segs {
		h, err := c.Compile(seg, resolve)
		if err != nil {
			return hands, err
		}
		if d := Reconcile(h, h.Contributed); d != nil {
			c.logger.Warn("pot does not reconcile",
				"table", h.TableName, "hand", h.Key(),
				"contributed", d.Contributed.StringFixed(2), "collected", d.Collected.StringFixed(2))
			h.AddAnomaly("POT_MISMATCH", SeverityWarning, d.Error())
		}
		hands = append(hands, h)
	}
	return hands, nil
}
