package stats

import "github.com/shopspring/decimal"

// PlayerStats aggregates one canonical player across every hand fed.
type PlayerStats struct {
	Name string

	Hands        int
	WonHands     int
	Showdowns    int
	WonShowdowns int
	VPIPHands    int // voluntarily bet, called or raised preflop
	PFRHands     int // bet or raised preflop

	AmountWon decimal.Decimal
	Invested  decimal.Decimal // posts and wagers net of uncalled bets returned

	// Metrics is filled by Compute.
	Metrics map[MetricID]MetricValue

	bbNet   float64
	bbHands int
}

// Net is the amount won minus the amount invested.
func (p *PlayerStats) Net() decimal.Decimal {
	return p.AmountWon.Sub(p.Invested)
}

// Stats holds every player seen, sorted by name.
type Stats struct {
	TotalHands int
	Skipped    int
	Players    []*PlayerStats
}

// Player returns the stats for a canonical name.
func (s *Stats) Player(name string) (*PlayerStats, bool) {
	if s == nil {
		return nil, false
	}
	for _, p := range s.Players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}
