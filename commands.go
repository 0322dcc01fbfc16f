package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/AkatukiSora/pokernow-ohh/internal/application"
	"github.com/AkatukiSora/pokernow-ohh/internal/applog"
	"github.com/AkatukiSora/pokernow-ohh/internal/config"
	"github.com/AkatukiSora/pokernow-ohh/internal/identity"
	"github.com/AkatukiSora/pokernow-ohh/internal/persistence"
	"github.com/AkatukiSora/pokernow-ohh/internal/report"
	"github.com/AkatukiSora/pokernow-ohh/internal/watcher"
)

// session is everything a command needs once configuration is loaded.
type session struct {
	cfg     *config.Config
	store   *identity.FileStore
	dir     *identity.Directory
	repo    persistence.ImportRepository
	svc     *application.Service
	printer *report.Printer
	closers []io.Closer
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}

// loadConfig reads the config file and applies the command-line overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.Identity != "" {
		cfg.Processing.Identity = g.Identity
	}
	if g.Answers != "" {
		cfg.Processing.Answers = g.Answers
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", g.Config, err)
	}
	return cfg, nil
}

func (g *Globals) open(force bool) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	logCloser, logPath, err := applog.Init(applog.Options{
		Level: cfg.Logging.Level,
		Color: cfg.ColorEnabled(),
		Dir:   cfg.Directories.LogDir,
	})
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:     cfg,
		printer: report.New(os.Stdout, cfg.ColorEnabled()),
		closers: []io.Closer{logCloser},
	}
	slog.Info("pokernow-ohh starting", "version", version, "config", g.Config, "log_file", logPath)

	s.store = identity.NewFileStore(cfg.Directories.ConfigDir)
	if s.dir, err = s.store.Load(); err != nil {
		s.Close()
		return nil, err
	}

	strategy, err := newStrategy(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	if s.repo, err = openRepository(cfg.Directories.Database); err != nil {
		s.Close()
		return nil, err
	}
	if c, ok := s.repo.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}

	s.svc = application.NewService(s.repo, s.dir, s.store, strategy, application.Options{
		Settings:  cfg.Settings(),
		Workers:   cfg.Processing.Workers,
		OutputDir: cfg.Directories.OutputDir,
		Prefix:    cfg.OHH.OutputPrefix,
		Force:     force,
	})
	return s, nil
}

func newStrategy(cfg *config.Config) (identity.Strategy, error) {
	switch cfg.Processing.Identity {
	case config.IdentityBatch:
		b, err := identity.LoadBatch(cfg.Processing.Answers)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.IdentityStrict:
		return identity.Strict{}, nil
	default:
		return identity.Interactive{Prompter: identity.TerminalPrompter{}}, nil
	}
}

// openRepository opens the SQLite repository at path, or an in-memory one
// when path is empty.
func openRepository(path string) (persistence.ImportRepository, error) {
	if path == "" {
		return persistence.NewMemoryRepository(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	repo, err := persistence.NewSQLiteRepository(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open hand repository %s: %w", path, err)
	}
	return repo, nil
}

// inputs returns the explicit files, or every log in the input directory.
func (s *session) inputs(files []string) ([]string, error) {
	if len(files) > 0 {
		return files, nil
	}
	paths, err := watcher.FindLogs(s.cfg.Directories.InputDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		slog.Warn("no Poker Now logs found", "dir", s.cfg.Directories.InputDir, "pattern", watcher.LogPattern)
	}
	return paths, nil
}

func (s *session) convert(ctx context.Context, paths []string) (application.Summary, error) {
	sum, err := s.svc.Convert(ctx, paths, nil)
	if err != nil {
		return sum, err
	}
	skipped := 0
	for _, f := range sum.Files {
		if f.Skipped {
			skipped++
		}
	}
	slog.Info("conversion finished",
		"files", len(sum.Files), "unchanged", skipped,
		"identities_learned", sum.Learned, "identities_assigned", sum.Assigned,
		"elapsed", sum.Elapsed.Round(time.Millisecond))
	return sum, nil
}

func tableRows(sum application.Summary) []report.TableRow {
	var rows []report.TableRow
	for _, f := range sum.Files {
		if f.Skipped {
			continue
		}
		rows = append(rows, report.TableRow{
			Table:          f.Table,
			Hands:          f.Hands,
			Dropped:        len(f.Dropped),
			Ignored:        f.Ignored,
			Anomalies:      f.Anomalies,
			LastStart:      f.LastStart,
			LastGameNumber: f.LastGameNumber,
			Output:         f.Output,
			Elapsed:        f.Elapsed,
		})
	}
	return rows
}

type ConvertCmd struct {
	Files []string `arg:"" optional:"" help:"Logs to convert. Defaults to every poker_now_log_*.csv in the input directory."`
	Force bool     `short:"f" help:"Reconvert files that have not changed since the last run."`
}

func (c *ConvertCmd) Run(ctx context.Context, g *Globals) error {
	s, err := g.open(c.Force)
	if err != nil {
		return err
	}
	defer s.Close()

	paths, err := s.inputs(c.Files)
	if err != nil {
		return err
	}
	sum, err := s.convert(ctx, paths)
	if err != nil {
		return err
	}
	s.printer.Tables(tableRows(sum))
	return nil
}

type WatchCmd struct {
	Settle time.Duration `default:"500ms" help:"Quiet period before a changed log is converted."`
	Rescan time.Duration `default:"5s" help:"Directory rescan interval; 0 disables it."`
}

func (c *WatchCmd) Run(ctx context.Context, g *Globals) error {
	s, err := g.open(false)
	if err != nil {
		return err
	}
	defer s.Close()

	paths, err := s.inputs(nil)
	if err != nil {
		return err
	}
	sum, err := s.convert(ctx, paths)
	if err != nil {
		return err
	}
	s.printer.Tables(tableRows(sum))

	rescan := c.Rescan
	if rescan == 0 {
		rescan = -1
	}
	dw, err := watcher.New(s.cfg.Directories.InputDir, watcher.Config{
		Settle: c.Settle,
		Rescan: rescan,
		OnChange: func(path string) {
			sum, err := s.convert(ctx, []string{path})
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Error("conversion failed", "path", path, "error", err)
				}
				return
			}
			s.printer.Tables(tableRows(sum))
		},
	})
	if err != nil {
		return err
	}
	if err := dw.Start(); err != nil {
		return err
	}
	defer dw.Stop()

	<-ctx.Done()
	return nil
}

type IdentitiesCmd struct{}

func (c *IdentitiesCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	store := identity.NewFileStore(cfg.Directories.ConfigDir)
	dir, err := store.Load()
	if err != nil {
		return err
	}
	report.New(os.Stdout, cfg.ColorEnabled()).Identities(dir.Entries())
	return nil
}

type StatsCmd struct {
	Table  string `help:"Only count hands from this table."`
	Player string `help:"Only count hands this canonical player sat in."`
	From   string `help:"Only count hands starting on or after this UTC date (YYYY-MM-DD)."`
	To     string `help:"Only count hands starting before the end of this UTC date (YYYY-MM-DD)."`
	Tables bool   `help:"Also list the stored tables."`
}

func (c *StatsCmd) filter() (persistence.HandFilter, error) {
	f := persistence.HandFilter{Table: c.Table, Player: c.Player}
	if c.From != "" {
		from, err := time.Parse(time.DateOnly, c.From)
		if err != nil {
			return f, fmt.Errorf("invalid --from: %w", err)
		}
		f.FromTime = &from
	}
	if c.To != "" {
		to, err := time.Parse(time.DateOnly, c.To)
		if err != nil {
			return f, fmt.Errorf("invalid --to: %w", err)
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		f.ToTime = &to
	}
	return f, nil
}

func (c *StatsCmd) Run(ctx context.Context, g *Globals) error {
	filter, err := c.filter()
	if err != nil {
		return err
	}
	s, err := g.open(false)
	if err != nil {
		return err
	}
	defer s.Close()

	// An in-memory repository starts empty.
	if s.cfg.Directories.Database == "" {
		paths, err := s.inputs(nil)
		if err != nil {
			return err
		}
		if _, err := s.convert(ctx, paths); err != nil {
			return err
		}
	}

	if c.Tables {
		tables, err := s.svc.Tables(ctx)
		if err != nil {
			return err
		}
		rows := make([]report.TableRow, 0, len(tables))
		for _, t := range tables {
			rows = append(rows, report.TableRow{
				Table:          t.Table,
				Hands:          t.Hands,
				LastStart:      t.LastStart,
				LastGameNumber: t.LastGameNumber,
			})
		}
		s.printer.Tables(rows)
	}

	st, err := s.svc.Stats(ctx, filter)
	if err != nil {
		return err
	}
	s.printer.Players(st)
	return nil
}

type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write the default configuration file"`
}

type ConfigInitCmd struct {
	Force bool `short:"f" help:"Overwrite an existing file."`
}

func (c *ConfigInitCmd) Run(g *Globals) error {
	if err := config.WriteDefault(g.Config, c.Force); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", g.Config)
	return nil
}
