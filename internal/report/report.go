// Package report renders run summaries for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"

	"github.com/AkatukiSora/pokernow-ohh/internal/identity"
	"github.com/AkatukiSora/pokernow-ohh/internal/stats"
)

// TableRow is one converted table in the convert summary.
type TableRow struct {
	Table          string
	Hands          int
	Dropped        int
	Ignored        int
	Anomalies      int
	LastStart      time.Time
	LastGameNumber string
	Output         string
	Elapsed        time.Duration
}

type Printer struct {
	w io.Writer

	header   lipgloss.Style
	cell     lipgloss.Style
	number   lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	muted    lipgloss.Style
	border   lipgloss.Style
}

// New returns a printer writing to w. With color off, no escape sequences are
// emitted.
func New(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w: w,
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1),
		cell:     r.NewStyle().Padding(0, 1),
		number:   r.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		positive: r.NewStyle().Padding(0, 1).Align(lipgloss.Right).Foreground(lipgloss.Color("10")),
		negative: r.NewStyle().Padding(0, 1).Align(lipgloss.Right).Foreground(lipgloss.Color("9")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("8")),
		border:   r.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

func (p *Printer) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border).
		Headers(headers...)
}

// Tables prints the per-table convert summary.
func (p *Printer) Tables(rows []TableRow) {
	if len(rows) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("no tables converted"))
		return
	}
	t := p.newTable("TABLE", "HANDS", "DROPPED", "IGNORED", "ANOMALIES", "LAST HAND", "LAST START (UTC)", "OUTPUT", "TIME")
	total := 0
	for _, r := range rows {
		total += r.Hands
		last := ""
		if !r.LastStart.IsZero() {
			last = r.LastStart.UTC().Format("2006-01-02 15:04:05")
		}
		t.Row(r.Table,
			strconv.Itoa(r.Hands),
			strconv.Itoa(r.Dropped),
			strconv.Itoa(r.Ignored),
			strconv.Itoa(r.Anomalies),
			r.LastGameNumber,
			last,
			r.Output,
			r.Elapsed.Round(time.Millisecond).String())
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return p.header
		case col >= 1 && col <= 4:
			return p.number
		default:
			return p.cell
		}
	})
	fmt.Fprintln(p.w, t.Render())
	fmt.Fprintf(p.w, "%d hands in %d tables\n", total, len(rows))
}

// Players prints per-player totals from the hand repository.
func (p *Printer) Players(s stats.Stats) {
	if len(s.Players) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("no hands stored"))
		return
	}
	headers := []string{"PLAYER", "HANDS", "WON", "SHOWDOWNS"}
	for _, def := range stats.Registry() {
		headers = append(headers, def.Label)
	}
	headers = append(headers, "AMOUNT WON", "INVESTED", "NET")
	netCol := len(headers) - 1

	t := p.newTable(headers...)
	nets := make([]decimal.Decimal, len(s.Players))
	for i, ps := range s.Players {
		row := []string{ps.Name, strconv.Itoa(ps.Hands), strconv.Itoa(ps.WonHands), strconv.Itoa(ps.Showdowns)}
		for _, def := range stats.Registry() {
			row = append(row, formatMetric(ps.Metrics[def.ID]))
		}
		nets[i] = ps.Net()
		row = append(row, ps.AmountWon.StringFixed(2), ps.Invested.StringFixed(2), nets[i].StringFixed(2))
		t.Row(row...)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return p.header
		case col == 0:
			return p.cell
		case col == netCol && row >= 0 && row < len(nets) && nets[row].IsNegative():
			return p.negative
		case col == netCol && row >= 0 && row < len(nets) && nets[row].IsPositive():
			return p.positive
		default:
			return p.number
		}
	})
	fmt.Fprintln(p.w, t.Render())
	fmt.Fprintf(p.w, "%d hands, %d players", s.TotalHands, len(s.Players))
	if s.Skipped > 0 {
		fmt.Fprintf(p.w, " (%d hands without players skipped)", s.Skipped)
	}
	fmt.Fprintln(p.w)
}

func formatMetric(v stats.MetricValue) string {
	var s string
	switch v.Format {
	case stats.MetricFormatBBPer100, stats.MetricFormatPoints:
		s = fmt.Sprintf("%.1f", v.Rate)
	default:
		s = fmt.Sprintf("%.1f%%", v.Rate)
	}
	if !v.Confident && v.Opportunity > 0 {
		s += "*"
	}
	return s
}

// Identities prints the identity directory.
func (p *Printer) Identities(entries map[string]identity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("identity directory is empty"))
		return
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	t := p.newTable("NAME", "NICKNAMES", "DEVICES")
	for _, name := range names {
		e := entries[name]
		t.Row(name, strings.Join(e.Nicknames, ", "), strings.Join(e.Devices, ", "))
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return p.header
		}
		return p.cell
	})
	fmt.Fprintln(p.w, t.Render())
}
