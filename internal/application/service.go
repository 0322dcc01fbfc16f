package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/AkatukiSora/pokernow-ohh/internal/identity"
	"github.com/AkatukiSora/pokernow-ohh/internal/ohh"
	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
	"github.com/AkatukiSora/pokernow-ohh/internal/persistence"
	"github.com/AkatukiSora/pokernow-ohh/internal/stats"
)

const defaultWorkers = 4

// IdentityStore persists the identity directory after the pre-pass changed it.
type IdentityStore interface {
	Save(d *identity.Directory) error
}

type Options struct {
	Settings   parser.Settings
	Vocabulary *parser.Vocabulary
	// Blinds are assumed at the start of every file. Nil means the defaults.
	Blinds    *parser.BlindLevels
	Workers   int
	OutputDir string
	Prefix    string
	// Force reconverts files whose cursor says they have not changed.
	Force bool
	Clock quartz.Clock
}

// Service runs conversions: read and segment every file, resolve identities
// once for the whole batch, compile files in parallel, then write the
// documents and the repository in file order.
type Service struct {
	mu       sync.Mutex
	repo     persistence.ImportRepository
	dir      *identity.Directory
	store    IdentityStore
	strategy identity.Strategy

	classifier *parser.Classifier
	compiler   *parser.Compiler
	writer     *ohh.Writer
	blinds     parser.BlindLevels
	workers    int
	force      bool
	clock      quartz.Clock

	cacheMu    sync.Mutex
	statsCache map[statsCacheKey]stats.Stats
}

type statsCacheKey struct {
	table     string
	player    string
	fromTime  time.Time
	toTime    time.Time
	handCount int
}

// NewService wires a converter. store may be nil, in which case identity
// changes live only for the process.
func NewService(repo persistence.ImportRepository, dir *identity.Directory, store IdentityStore, strategy identity.Strategy, opts Options) *Service {
	if dir == nil {
		dir = identity.NewDirectory(nil)
	}
	if strategy == nil {
		strategy = identity.Strict{}
	}
	blinds := parser.DefaultBlindLevels()
	if opts.Blinds != nil {
		blinds = *opts.Blinds
	}
	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	clock := opts.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Service{
		repo:       repo,
		dir:        dir,
		store:      store,
		strategy:   strategy,
		classifier: parser.NewClassifier(opts.Vocabulary),
		compiler:   parser.NewCompiler(opts.Settings, opts.Vocabulary),
		writer:     ohh.NewWriter(opts.OutputDir, opts.Prefix, opts.Settings),
		blinds:     blinds,
		workers:    workers,
		force:      opts.Force,
		clock:      clock,
	}
}

// FileResult describes what happened to one input file.
type FileResult struct {
	Path   string
	Table  string
	Output string

	Lines     int
	Ignored   int
	Preamble  int
	Dropped   []int
	Hands     int
	Anomalies int
	Upsert    persistence.UpsertResult

	// Skipped is set when the file was unchanged since its last conversion.
	Skipped bool
	Elapsed time.Duration

	LastStart      time.Time
	LastGameNumber string
}

type Summary struct {
	Files []FileResult
	// Learned and Assigned count identity directory changes made by the
	// pre-pass.
	Learned  int
	Assigned int
	Elapsed  time.Duration
}

// Progress is reported after each file has been written.
type Progress struct {
	Current int
	Total   int
	Path    string
}

// job is one file moving through the pipeline.
type job struct {
	path    string
	size    int64
	modTime time.Time
	started time.Time

	segments parser.SegmentResult
	hands    []*parser.Hand
	result   FileResult
}

// Convert converts paths in order. onProgress may be nil.
func (s *Service) Convert(ctx context.Context, paths []string, onProgress func(Progress)) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.clock.Now()
	var sum Summary
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	jobs, skipped, err := s.pending(ctx, paths)
	if err != nil {
		return sum, err
	}
	sum.Files = append(sum.Files, skipped...)
	if len(jobs) == 0 {
		sum.Elapsed = s.clock.Since(start)
		return sum, nil
	}
	slog.Info("converting logs", "files", len(jobs), "skipped", len(skipped), "workers", s.workers)

	if err := s.parallel(ctx, jobs, s.segment); err != nil {
		return sum, err
	}

	res, err := s.resolveIdentities(ctx, jobs)
	sum.Learned, sum.Assigned = res.Learned, res.Assigned
	if err != nil {
		return sum, err
	}

	if err := s.parallel(ctx, jobs, s.compile); err != nil {
		return sum, err
	}

	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := s.write(ctx, j); err != nil {
			return sum, err
		}
		j.result.Elapsed = s.clock.Since(j.started)
		slog.Info("file converted",
			"path", j.path, "table", j.result.Table, "hands", j.result.Hands,
			"lines", j.result.Lines, "ignored", j.result.Ignored,
			"dropped", len(j.result.Dropped), "elapsed", j.result.Elapsed)
		sum.Files = append(sum.Files, j.result)
		if onProgress != nil {
			onProgress(Progress{Current: i + 1, Total: len(jobs), Path: j.path})
		}
	}

	s.invalidateStatsCache()
	sum.Elapsed = s.clock.Since(start)
	return sum, nil
}

// pending stats every path and splits off the files whose cursor matches.
func (s *Service) pending(ctx context.Context, paths []string) ([]*job, []FileResult, error) {
	var (
		jobs    []*job
		skipped []FileResult
	)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !s.force {
			cursor, err := s.repo.GetCursor(ctx, p)
			if err != nil {
				return nil, nil, fmt.Errorf("load cursor for %s: %w", p, err)
			}
			if cursor.Unchanged(info.Size(), info.ModTime()) {
				slog.Debug("skipping unchanged file", "path", p)
				skipped = append(skipped, FileResult{
					Path:           p,
					Table:          parser.TableNameFromPath(p),
					Hands:          cursor.Hands,
					LastGameNumber: cursor.LastGameNumber,
					Skipped:        true,
				})
				continue
			}
		}
		jobs = append(jobs, &job{path: p, size: info.Size(), modTime: info.ModTime()})
	}
	return jobs, skipped, nil
}

// parallel runs fn over jobs with at most s.workers in flight. The first
// error cancels the rest.
func (s *Service) parallel(ctx context.Context, jobs []*job, fn func(context.Context, *job) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, j)
		})
	}
	return g.Wait()
}

func (s *Service) segment(_ context.Context, j *job) error {
	j.started = s.clock.Now()
	f, err := os.Open(j.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", j.path, err)
	}
	defer f.Close()

	lines, err := parser.ReadLog(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", j.path, err)
	}
	table := parser.TableNameFromPath(j.path)
	j.segments = parser.NewSegmenter(s.classifier, table, s.blinds).Segment(lines)
	j.result = FileResult{
		Path:     j.path,
		Table:    table,
		Lines:    j.segments.Lines,
		Ignored:  j.segments.Ignored,
		Preamble: j.segments.Preamble,
		Dropped:  j.segments.Dropped,
	}
	return nil
}

// resolveIdentities runs the pre-pass over every file of the batch so that
// compilation only reads the directory.
func (s *Service) resolveIdentities(ctx context.Context, jobs []*job) (identity.PrepareResult, error) {
	var segs []parser.HandSegment
	for _, j := range jobs {
		segs = append(segs, j.segments.Segments...)
	}
	res, err := identity.Prepare(ctx, s.dir, identity.Pairs(segs), s.strategy)
	// Answers given before a failure are kept.
	if s.store != nil && s.dir.Dirty() {
		if serr := s.store.Save(s.dir); serr != nil {
			return res, errors.Join(err, fmt.Errorf("save identities: %w", serr))
		}
	}
	if err != nil {
		return res, err
	}
	if res.Learned+res.Assigned > 0 {
		slog.Info("identity directory updated", "learned", res.Learned, "assigned", res.Assigned)
	}
	return res, nil
}

func (s *Service) compile(_ context.Context, j *job) error {
	hands, err := s.compiler.CompileTable(j.segments.Segments, s.dir)
	if err != nil {
		return fmt.Errorf("compile %s: %w", j.path, err)
	}
	j.hands = hands
	j.result.Hands = len(hands)
	for _, h := range hands {
		j.result.Anomalies += len(h.Anomalies)
	}
	if n := len(hands); n > 0 {
		last := hands[n-1]
		j.result.LastStart = last.StartTime
		j.result.LastGameNumber = last.Key()
	}
	return nil
}

func (s *Service) write(ctx context.Context, j *job) error {
	if len(j.hands) > 0 {
		out, err := s.writer.WriteTable(j.result.Table, j.hands)
		if err != nil {
			return err
		}
		j.result.Output = out
	}

	rows := make([]persistence.PersistedHand, 0, len(j.hands))
	for i, h := range j.hands {
		rows = append(rows, persistence.PersistedHand{
			Hand:   h,
			Source: sourceRef(j.path, j.segments.Segments[i]),
		})
	}
	cursor := persistence.ImportCursor{
		SourcePath:     j.path,
		Size:           j.size,
		ModTime:        j.modTime,
		Hands:          len(j.hands),
		LastGameNumber: j.result.LastGameNumber,
		UpdatedAt:      s.clock.Now(),
	}
	upsert, err := s.saveImportBatch(ctx, rows, cursor)
	if err != nil {
		return fmt.Errorf("save %s: %w", j.path, err)
	}
	j.result.Upsert = upsert
	return nil
}

// sourceRef spans the hand's rows in file numbering. Poker Now exports
// newest first, so the first chronological line carries the largest number.
func sourceRef(path string, seg parser.HandSegment) persistence.HandSourceRef {
	ref := persistence.HandSourceRef{SourcePath: path}
	for i, l := range seg.Lines {
		if i == 0 || l.Number < ref.FirstLine {
			ref.FirstLine = l.Number
		}
		if l.Number > ref.LastLine {
			ref.LastLine = l.Number
		}
	}
	return ref
}

func (s *Service) saveImportBatch(ctx context.Context, hands []persistence.PersistedHand, cursor persistence.ImportCursor) (persistence.UpsertResult, error) {
	if repo, ok := s.repo.(persistence.ImportBatchRepository); ok {
		return repo.SaveImportBatch(ctx, hands, cursor)
	}

	var res persistence.UpsertResult
	if len(hands) > 0 {
		var err error
		if res, err = s.repo.UpsertHands(ctx, hands); err != nil {
			return res, err
		}
	}
	return res, s.repo.SaveCursor(ctx, cursor)
}

// Hands returns stored hands in start-time order.
func (s *Service) Hands(ctx context.Context, filter persistence.HandFilter) ([]*parser.Hand, error) {
	return s.repo.ListHands(ctx, filter)
}

// Hand returns one stored hand, or nil when the key is unknown.
func (s *Service) Hand(ctx context.Context, key string) (*parser.Hand, error) {
	return s.repo.GetHand(ctx, key)
}

func (s *Service) Tables(ctx context.Context) ([]persistence.TableSummary, error) {
	return s.repo.ListTables(ctx)
}

// Stats aggregates the hands matching filter. Results are cached per filter
// and hand count; a conversion clears the cache.
func (s *Service) Stats(ctx context.Context, filter persistence.HandFilter) (stats.Stats, error) {
	count, err := s.repo.CountHands(ctx, filter)
	if err != nil {
		return stats.Stats{}, err
	}

	key := statsCacheKey{table: filter.Table, player: filter.Player, handCount: count}
	if filter.FromTime != nil {
		key.fromTime = *filter.FromTime
	}
	if filter.ToTime != nil {
		key.toTime = *filter.ToTime
	}
	cacheable := filter.Limit == 0 && filter.Offset == 0

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if cached, ok := s.statsCache[key]; ok && cacheable {
		return cached, nil
	}

	hands, err := s.repo.ListHands(ctx, filter)
	if err != nil {
		return stats.Stats{}, err
	}
	result := stats.Calculate(hands)
	if !cacheable {
		return result, nil
	}

	if s.statsCache == nil || len(s.statsCache) >= 8 {
		s.statsCache = make(map[statsCacheKey]stats.Stats)
	}
	s.statsCache[key] = result
	return result, nil
}

func (s *Service) invalidateStatsCache() {
	s.cacheMu.Lock()
	s.statsCache = nil
	s.cacheMu.Unlock()
}

func (s *Service) Close() error {
	if c, ok := s.repo.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
