// gen_testlog writes synthetic Poker Now CSV exports for load and
// regression testing of the converter.
//
// Usage:
//
//	go run ./tools/gen_testlog --tables 20 --hands 500 --out ./testdata/generated
package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/AkatukiSora/pokernow-ohh/internal/fileutil"
)

type CLI struct {
	Out        string `short:"o" default:"./testdata/generated" help:"Directory to write poker_now_log_*.csv files to."`
	Tables     int    `short:"n" default:"10" help:"Number of table exports to generate."`
	Hands      int    `default:"200" help:"Hands per table."`
	Players    int    `default:"6" help:"Players per table (2-10)."`
	Stack      string `default:"1000" help:"Starting stack."`
	SmallBlind string `name:"small-blind" default:"5" help:"Small blind."`
	BigBlind   string `name:"big-blind" default:"10" help:"Big blind."`
	Hero       string `help:"Name of the player whose hole cards are revealed."`
	Seed       uint64 `help:"Random seed; 0 uses the current time."`
	StartDate  string `name:"start-date" default:"2025-01-01" help:"Date of the first generated hand (YYYY-MM-DD)."`
	Truncate   bool   `help:"Leave every table's last hand unfinished."`
	Chatter    bool   `help:"Mix administrative lines between hands."`
}

func cents(flag, v string) (int64, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", flag, v, err)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

func (c *CLI) options() (Options, error) {
	start, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return Options{}, fmt.Errorf("invalid --start-date: %w", err)
	}
	opts := Options{
		Players:  c.Players,
		Hands:    c.Hands,
		Hero:     c.Hero,
		Start:    start.Add(20 * time.Hour),
		Truncate: c.Truncate,
		Chatter:  c.Chatter,
	}
	if opts.Stack, err = cents("stack", c.Stack); err != nil {
		return opts, err
	}
	if opts.SmallBlind, err = cents("small-blind", c.SmallBlind); err != nil {
		return opts, err
	}
	if opts.BigBlind, err = cents("big-blind", c.BigBlind); err != nil {
		return opts, err
	}
	return opts, nil
}

func (c *CLI) Run() error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	slog.Info("generating logs", "tables", c.Tables, "hands", c.Hands, "players", c.Players, "seed", seed, "out", c.Out)

	for i := range c.Tables {
		path := filepath.Join(c.Out, fmt.Sprintf("poker_now_log_gen%03d.csv", i+1))
		err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
			return Generate(w, opts, rng)
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		slog.Info("table written", "path", path, "bytes", info.Size())
		// Tables follow one another in time so game numbers never collide.
		opts.Start = opts.Start.Add(24 * time.Hour)
	}
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gen_testlog"),
		kong.Description("Generate synthetic Poker Now CSV exports"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
