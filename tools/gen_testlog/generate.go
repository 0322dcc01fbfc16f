package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Options shape one generated table.
type Options struct {
	Players int
	Hands   int
	// Stack, SmallBlind and BigBlind are in cents.
	Stack      int64
	SmallBlind int64
	BigBlind   int64
	Hero       string
	Start      time.Time
	// Truncate leaves the last hand without its end marker, the way a live
	// export looks.
	Truncate bool
	// Chatter adds administrative lines between hands.
	Chatter bool
}

var (
	ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	suits = []string{"♠", "♥", "♦", "♣"}
)

type seat struct {
	number int
	name   string
	device string
	stack  int64
	// committed is the seat's total for the current street.
	committed int64
	folded    bool
	hole      [2]string
}

func (s *seat) label() string { return fmt.Sprintf("%q", s.name+" @ "+s.device) }

// table plays random but legal hands and records what Poker Now would log.
type table struct {
	opts   Options
	rng    *rand.Rand
	seats  []*seat
	dealer int
	at     time.Time
	lines  []string
	times  []time.Time
}

func newTable(opts Options, rng *rand.Rand) *table {
	t := &table{opts: opts, rng: rng, at: opts.Start}
	for i := range opts.Players {
		name := fmt.Sprintf("Player%d", i+1)
		if i == 0 && opts.Hero != "" {
			name = opts.Hero
		}
		t.seats = append(t.seats, &seat{
			number: i + 1,
			name:   name,
			device: deviceID(rng),
			stack:  opts.Stack,
		})
	}
	return t
}

func deviceID(rng *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 10)
	for i := range b {
		b[i] = alphabet[rng.IntN(len(alphabet))]
	}
	return string(b)
}

func money(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func (t *table) log(format string, args ...any) {
	t.at = t.at.Add(time.Duration(500+t.rng.IntN(2500)) * time.Millisecond)
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
	t.times = append(t.times, t.at)
}

func (t *table) deck() []string {
	cards := make([]string, 0, len(ranks)*len(suits))
	for _, r := range ranks {
		for _, s := range suits {
			cards = append(cards, r+s)
		}
	}
	t.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards
}

// next returns the index of the first seat after i that is still in the hand.
func (t *table) next(i int) int {
	for k := 1; k <= len(t.seats); k++ {
		j := (i + k) % len(t.seats)
		if !t.seats[j].folded {
			return j
		}
	}
	return i
}

func (t *table) live() int {
	n := 0
	for _, s := range t.seats {
		if !s.folded {
			n++
		}
	}
	return n
}

func (t *table) play(number int, last bool) {
	for _, s := range t.seats {
		if s.stack < 4*t.opts.BigBlind {
			s.stack = t.opts.Stack
		}
		s.folded = false
		s.committed = 0
	}
	t.dealer = (t.dealer + 1) % len(t.seats)
	dealer := t.seats[t.dealer]

	t.log("-- starting hand #%d (id: %s)  (No Limit Texas Hold'em) (dealer: %s) --",
		number, strings.ToLower(deviceID(t.rng)), dealer.label())
	stacks := make([]string, 0, len(t.seats))
	for _, s := range t.seats {
		stacks = append(stacks, fmt.Sprintf("#%d %s (%s)", s.number, s.label(), money(s.stack)))
	}
	t.log("Player stacks: %s", strings.Join(stacks, " | "))

	cards := t.deck()
	for i, s := range t.seats {
		s.hole = [2]string{cards[2*i], cards[2*i+1]}
		if t.opts.Hero != "" && s.name == t.opts.Hero {
			t.log("Your hand is %s, %s", s.hole[0], s.hole[1])
		}
	}
	board := cards[2*len(t.seats) : 2*len(t.seats)+5]

	sb := t.next(t.dealer)
	if len(t.seats) == 2 {
		sb = t.dealer
	}
	bb := t.next(sb)
	t.post(sb, "small blind", t.opts.SmallBlind)
	t.post(bb, "big blind", t.opts.BigBlind)

	pot := int64(0)
	streets := []struct {
		name  string
		shown int
	}{{"", 0}, {"Flop", 3}, {"Turn", 4}, {"River", 5}}
	for i, st := range streets {
		first := t.next(bb)
		level := t.opts.BigBlind
		if i > 0 {
			t.logStreet(st.name, board[:st.shown])
			first = t.next(t.dealer)
			level = 0
		}
		pot += t.bettingRound(first, level)
		if t.live() == 1 {
			break
		}
	}

	if last && t.opts.Truncate {
		return
	}
	t.award(pot)
	t.log("-- ending hand #%d --", number)
}

func (t *table) post(i int, what string, amount int64) {
	s := t.seats[i]
	s.stack -= amount
	s.committed = amount
	t.log("%s posts a %s of %s", s.label(), what, money(amount))
}

func (t *table) logStreet(name string, shown []string) {
	last := len(shown) - 1
	if last == 2 {
		t.log("%s:  [%s]", name, strings.Join(shown, ", "))
		return
	}
	t.log("%s: %s [%s]", name, strings.Join(shown[:last], ", "), shown[last])
}

// bettingRound runs one street starting at first with level already owed,
// and returns what went into the pot once uncalled chips are handed back.
func (t *table) bettingRound(first int, level int64) int64 {
	pending := make(map[int]bool)
	for i, s := range t.seats {
		if !s.folded {
			pending[i] = true
		}
	}
	raises := 0
	aggressor := -1
	for i := first; len(pending) > 0 && t.live() > 1; i = t.next(i) {
		if !pending[i] {
			continue
		}
		delete(pending, i)
		s := t.seats[i]
		owed := level - s.committed
		roll := t.rng.IntN(100)

		switch {
		case owed > 0 && roll < 25:
			s.folded = true
			t.log("%s folds", s.label())
		case raises < 3 && roll >= 80 && t.canRaise(s, level):
			target := level * int64(2+t.rng.IntN(2))
			if level == 0 {
				target = t.opts.BigBlind * int64(2+t.rng.IntN(4))
			}
			verb := "raises to"
			if level == 0 {
				verb = "bets"
			}
			s.stack -= target - s.committed
			s.committed = target
			level = target
			raises++
			aggressor = i
			t.log("%s %s %s", s.label(), verb, money(target))
			for j, o := range t.seats {
				if j != i && !o.folded {
					pending[j] = true
				}
			}
		case owed > 0 && owed <= s.stack:
			s.stack -= owed
			s.committed = level
			t.log("%s calls %s", s.label(), money(level))
		case owed > 0:
			s.folded = true
			t.log("%s folds", s.label())
		default:
			t.log("%s checks", s.label())
		}
	}

	total := int64(0)
	for _, s := range t.seats {
		total += s.committed
	}
	if aggressor >= 0 || t.live() == 1 {
		total -= t.refund(aggressor)
	}
	for _, s := range t.seats {
		s.committed = 0
	}
	return total
}

func (t *table) canRaise(s *seat, level int64) bool {
	most := level * 3
	if level == 0 {
		most = t.opts.BigBlind * 5
	}
	return most-s.committed < s.stack
}

// refund returns the part of the top commitment nobody matched.
func (t *table) refund(aggressor int) int64 {
	top, second := -1, int64(0)
	for i, s := range t.seats {
		if top < 0 || s.committed > t.seats[top].committed {
			top = i
		}
	}
	if aggressor >= 0 {
		top = aggressor
	}
	for i, s := range t.seats {
		if i != top && s.committed > second {
			second = s.committed
		}
	}
	excess := t.seats[top].committed - second
	if excess <= 0 {
		return 0
	}
	s := t.seats[top]
	s.stack += excess
	t.log("Uncalled bet of %s returned to %s", money(excess), s.label())
	return excess
}

// award pays the whole pot to one player still in the hand. Showdowns
// reveal every remaining hand first.
func (t *table) award(pot int64) {
	var live []*seat
	for _, s := range t.seats {
		if !s.folded {
			live = append(live, s)
		}
	}
	if len(live) > 1 {
		for _, s := range live {
			t.log("%s shows a %s, %s.", s.label(), s.hole[0], s.hole[1])
		}
	}
	winner := live[t.rng.IntN(len(live))]
	winner.stack += pot
	t.log("%s collected %s from pot", winner.label(), money(pot))
}

func (t *table) chatter() {
	s := t.seats[t.rng.IntN(len(t.seats))]
	switch t.rng.IntN(3) {
	case 0:
		t.log("The player %s requested a seat.", s.label())
	case 1:
		t.log("The admin approved the player %s participation with a stack of %s.", s.label(), money(t.opts.Stack))
	default:
		t.log("WARNING: the admin queued the stack change for the player %s.", s.label())
	}
}

// Generate plays opts.Hands hands and writes them as a Poker Now CSV export:
// header first, newest row on top.
func Generate(w io.Writer, opts Options, rng *rand.Rand) error {
	if opts.Players < 2 {
		return fmt.Errorf("need at least 2 players, got %d", opts.Players)
	}
	if opts.Players > 10 {
		return fmt.Errorf("at most 10 players fit at a table, got %d", opts.Players)
	}
	if opts.SmallBlind <= 0 || opts.BigBlind < opts.SmallBlind {
		return fmt.Errorf("invalid blinds %s/%s", money(opts.SmallBlind), money(opts.BigBlind))
	}

	t := newTable(opts, rng)
	for n := 1; n <= opts.Hands; n++ {
		if opts.Chatter && n > 1 && rng.IntN(4) == 0 {
			t.chatter()
		}
		t.play(n, n == opts.Hands)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entry", "at", "order"}); err != nil {
		return err
	}
	for i := len(t.lines) - 1; i >= 0; i-- {
		at := t.times[i].UTC()
		// The order column carries the epoch milliseconds plus two digits
		// that keep rows within the same millisecond apart.
		order := strconv.FormatInt(at.UnixMilli(), 10) + fmt.Sprintf("%02d", i%100)
		if err := cw.Write([]string{t.lines[i], at.Format("2006-01-02T15:04:05.000Z"), order}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
