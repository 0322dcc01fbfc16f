package stats

type MetricID string

const (
	MetricVPIP     MetricID = "vpip"
	MetricPFR      MetricID = "pfr"
	MetricGap      MetricID = "gap"
	MetricWTSD     MetricID = "wtsd"
	MetricWSD      MetricID = "w_sd"
	MetricWinRate  MetricID = "win_rate"
	MetricBBPer100 MetricID = "bb_per_100"
)

// Sample names what a metric's denominator counts, which decides how many
// observations it needs before it is trusted.
type Sample int

const (
	SampleHands Sample = iota
	SampleShowdowns
)

// Minimum denominators before a metric is reported as confident.
const (
	minHandSample     = 200
	minShowdownSample = 50
)

func (s Sample) minimum() int {
	if s == SampleShowdowns {
		return minShowdownSample
	}
	return minHandSample
}

type MetricFormat int

const (
	MetricFormatPercent MetricFormat = iota
	// MetricFormatPoints is a difference of two percentages.
	MetricFormatPoints
	MetricFormatBBPer100
)

type MetricDefinition struct {
	ID     MetricID
	Label  string
	Sample Sample
	Format MetricFormat

	// measure returns the numerator and denominator; rate overrides the
	// plain percentage when set.
	measure func(p *PlayerStats) (count, opp int)
	rate    func(p *PlayerStats) float64
}

type MetricValue struct {
	ID          MetricID
	Format      MetricFormat
	Count       int
	Opportunity int
	Rate        float64
	Confident   bool
	MinSample   int
}

var metricRegistry = []MetricDefinition{
	{
		ID: MetricVPIP, Label: "VPIP", Sample: SampleHands, Format: MetricFormatPercent,
		measure: func(p *PlayerStats) (int, int) { return p.VPIPHands, p.Hands },
	},
	{
		ID: MetricPFR, Label: "PFR", Sample: SampleHands, Format: MetricFormatPercent,
		measure: func(p *PlayerStats) (int, int) { return p.PFRHands, p.Hands },
	},
	{
		ID: MetricGap, Label: "VPIP-PFR", Sample: SampleHands, Format: MetricFormatPoints,
		measure: func(p *PlayerStats) (int, int) { return p.VPIPHands - p.PFRHands, p.Hands },
	},
	{
		ID: MetricWTSD, Label: "WTSD", Sample: SampleHands, Format: MetricFormatPercent,
		measure: func(p *PlayerStats) (int, int) { return p.Showdowns, p.Hands },
	},
	{
		ID: MetricWSD, Label: "W$SD", Sample: SampleShowdowns, Format: MetricFormatPercent,
		measure: func(p *PlayerStats) (int, int) { return p.WonShowdowns, p.Showdowns },
	},
	{
		ID: MetricWinRate, Label: "WON", Sample: SampleHands, Format: MetricFormatPercent,
		measure: func(p *PlayerStats) (int, int) { return p.WonHands, p.Hands },
	},
	{
		ID: MetricBBPer100, Label: "bb/100", Sample: SampleHands, Format: MetricFormatBBPer100,
		measure: func(p *PlayerStats) (int, int) { return 0, p.bbHands },
		rate: func(p *PlayerStats) float64 {
			if p.bbHands == 0 {
				return 0
			}
			return p.bbNet / float64(p.bbHands) * 100
		},
	},
}

// Registry returns the metric definitions in display order.
func Registry() []MetricDefinition {
	return append([]MetricDefinition(nil), metricRegistry...)
}

func (d MetricDefinition) evaluate(p *PlayerStats) MetricValue {
	count, opp := d.measure(p)
	v := MetricValue{
		ID:          d.ID,
		Format:      d.Format,
		Count:       count,
		Opportunity: opp,
		MinSample:   d.Sample.minimum(),
	}
	if d.rate != nil {
		v.Rate = d.rate(p)
	} else if opp > 0 {
		v.Rate = float64(count) / float64(opp) * 100
	}
	v.Confident = opp >= v.MinSample
	return v
}
