package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/coder/quartz"

	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

type inMemoryEntry struct {
	hand   *parser.Hand
	source HandSourceRef
}

// MemoryRepository keeps hands for a single run when no database is
// configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	clock   quartz.Clock
	hands   map[string]inMemoryEntry
	cursors map[string]ImportCursor
}

func NewMemoryRepository(clock quartz.Clock) *MemoryRepository {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MemoryRepository{
		clock:   clock,
		hands:   make(map[string]inMemoryEntry),
		cursors: make(map[string]ImportCursor),
	}
}

func (r *MemoryRepository) UpsertHands(_ context.Context, hands []PersistedHand) (UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertHandsLocked(hands), nil
}

func (r *MemoryRepository) upsertHandsLocked(hands []PersistedHand) UpsertResult {
	res := UpsertResult{}
	for _, ph := range hands {
		key := ph.Hand.Key()
		if key == "" {
			res.Skipped++
			continue
		}
		entry, ok := r.hands[key]
		if ok {
			res.Updated++
		} else {
			res.Inserted++
		}
		src := ph.Source
		if src.SourcePath == "" {
			src = entry.source
		}
		r.hands[key] = inMemoryEntry{hand: parser.CloneHand(ph.Hand), source: src}
	}
	return res
}

func (r *MemoryRepository) ListHands(_ context.Context, f HandFilter) ([]*parser.Hand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*parser.Hand, 0, len(r.hands))
	for _, entry := range r.hands {
		if matchesFilter(entry.hand, f) {
			out = append(out, parser.CloneHand(entry.hand))
		}
	}
	sortHands(out)

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MemoryRepository) CountHands(_ context.Context, f HandFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, entry := range r.hands {
		if matchesFilter(entry.hand, f) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) GetHand(_ context.Context, key string) (*parser.Hand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.hands[key]
	if !ok {
		return nil, nil
	}
	return parser.CloneHand(entry.hand), nil
}

func (r *MemoryRepository) ListTables(_ context.Context) ([]TableSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byTable := make(map[string][]*parser.Hand)
	for _, entry := range r.hands {
		byTable[entry.hand.TableName] = append(byTable[entry.hand.TableName], entry.hand)
	}
	out := make([]TableSummary, 0, len(byTable))
	for table, hands := range byTable {
		sortHands(hands)
		last := hands[len(hands)-1]
		out = append(out, TableSummary{
			Table:          table,
			Hands:          len(hands),
			LastStart:      last.StartTime.UTC(),
			LastGameNumber: last.Key(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out, nil
}

func (r *MemoryRepository) GetCursor(_ context.Context, sourcePath string) (*ImportCursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cursors[sourcePath]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryRepository) SaveCursor(_ context.Context, c ImportCursor) error {
	if c.SourcePath == "" {
		return errNoCursorPath
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCursorLocked(c)
	return nil
}

func (r *MemoryRepository) SaveImportBatch(_ context.Context, hands []PersistedHand, c ImportCursor) (UpsertResult, error) {
	if c.SourcePath == "" {
		return UpsertResult{}, errNoCursorPath
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.upsertHandsLocked(hands)
	r.saveCursorLocked(c)
	return res, nil
}

func (r *MemoryRepository) saveCursorLocked(c ImportCursor) {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = r.clock.Now()
	}
	c.ModTime = c.ModTime.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	r.cursors[c.SourcePath] = c
}

func sortHands(hands []*parser.Hand) {
	sort.Slice(hands, func(i, j int) bool {
		if !hands[i].StartTime.Equal(hands[j].StartTime) {
			return hands[i].StartTime.Before(hands[j].StartTime)
		}
		return hands[i].Key() < hands[j].Key()
	})
}
