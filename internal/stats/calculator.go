package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

// Calculator accumulates hand statistics incrementally. Feed hands one by
// one, then call Compute for the current totals.
type Calculator struct {
	total   int
	skipped int
	players map[string]*PlayerStats
}

func NewCalculator() *Calculator {
	return &Calculator{players: make(map[string]*PlayerStats)}
}

// Calculate feeds every hand into a fresh calculator.
func Calculate(hands []*parser.Hand) Stats {
	c := NewCalculator()
	for _, h := range hands {
		c.Feed(h)
	}
	return c.Compute()
}

// handLine is one player's share of a single hand.
type handLine struct {
	invested decimal.Decimal
	won      decimal.Decimal
	showdown bool
	vpip     bool
	pfr      bool
}

// Feed adds one hand. Hands without seated players are counted as skipped.
func (c *Calculator) Feed(h *parser.Hand) {
	if h == nil {
		return
	}
	if len(h.Players) == 0 {
		c.skipped++
		return
	}
	c.total++

	lines := make(map[int]*handLine, len(h.Players))
	for _, p := range h.Players {
		lines[p.ID] = &handLine{}
	}

	for _, rd := range h.Rounds {
		for _, a := range rd.Actions {
			hl := lines[a.PlayerID]
			if hl == nil {
				continue
			}
			if a.Kind.IsPost() || a.Kind.IsWager() {
				hl.invested = hl.invested.Add(a.Amount)
			}
			switch {
			case rd.Street == parser.StreetPreflop && a.Kind.IsWager():
				hl.vpip = true
				if a.Kind == parser.ActionRaise || a.Kind == parser.ActionBet {
					hl.pfr = true
				}
			case rd.Street == parser.StreetShowdown && a.Kind == parser.ActionShowsCards:
				hl.showdown = true
			}
		}
	}
	for _, rf := range h.Refunds {
		if hl := lines[rf.PlayerID]; hl != nil {
			hl.invested = hl.invested.Sub(rf.Amount)
		}
	}
	for _, pot := range h.Pots {
		for _, w := range pot.Wins {
			if hl := lines[w.PlayerID]; hl != nil {
				hl.won = hl.won.Add(w.Amount)
			}
		}
	}

	// Two aliases resolved to one person in the same hand count as one hand.
	byName := make(map[string]*handLine)
	for _, p := range h.Players {
		hl := lines[p.ID]
		if merged, ok := byName[p.Name]; ok {
			merged.invested = merged.invested.Add(hl.invested)
			merged.won = merged.won.Add(hl.won)
			merged.showdown = merged.showdown || hl.showdown
			merged.vpip = merged.vpip || hl.vpip
			merged.pfr = merged.pfr || hl.pfr
			continue
		}
		byName[p.Name] = hl
	}

	for name, hl := range byName {
		ps := c.ensurePlayer(name)
		ps.Hands++
		ps.Invested = ps.Invested.Add(hl.invested)
		ps.AmountWon = ps.AmountWon.Add(hl.won)
		won := hl.won.IsPositive()
		if won {
			ps.WonHands++
		}
		if hl.showdown {
			ps.Showdowns++
			if won {
				ps.WonShowdowns++
			}
		}
		if hl.vpip {
			ps.VPIPHands++
		}
		if hl.pfr {
			ps.PFRHands++
		}
		if h.BigBlind.IsPositive() {
			bb, _ := hl.won.Sub(hl.invested).Div(h.BigBlind).Float64()
			ps.bbNet += bb
			ps.bbHands++
		}
	}
}

func (c *Calculator) ensurePlayer(name string) *PlayerStats {
	ps, ok := c.players[name]
	if !ok {
		ps = &PlayerStats{Name: name, AmountWon: decimal.Zero, Invested: decimal.Zero}
		c.players[name] = ps
	}
	return ps
}

// Compute returns a snapshot of the accumulated totals. The calculator can
// keep accepting hands afterwards.
func (c *Calculator) Compute() Stats {
	s := Stats{TotalHands: c.total, Skipped: c.skipped, Players: make([]*PlayerStats, 0, len(c.players))}
	for _, ps := range c.players {
		cp := *ps
		cp.Metrics = metricsFor(&cp)
		s.Players = append(s.Players, &cp)
	}
	sort.Slice(s.Players, func(i, j int) bool { return s.Players[i].Name < s.Players[j].Name })
	return s
}

func metricsFor(ps *PlayerStats) map[MetricID]MetricValue {
	out := make(map[MetricID]MetricValue, len(metricRegistry))
	for _, def := range metricRegistry {
		out[def.ID] = def.evaluate(ps)
	}
	return out
}
