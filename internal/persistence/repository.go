package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

var errNoCursorPath = errors.New("cursor has no source path")

type HandFilter struct {
	Table    string
	Player   string // canonical player name
	FromTime *time.Time
	ToTime   *time.Time
	// Limit == 0 means no limit.
	Limit  int
	Offset int
}

// HandSourceRef locates the log rows a hand was compiled from.
type HandSourceRef struct {
	SourcePath string
	FirstLine  int
	LastLine   int
}

type PersistedHand struct {
	Hand   *parser.Hand
	Source HandSourceRef
}

type UpsertResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

// ImportCursor records the state of a log file when it was last converted.
type ImportCursor struct {
	SourcePath     string
	Size           int64
	ModTime        time.Time
	Hands          int
	LastGameNumber string
	UpdatedAt      time.Time
}

// Unchanged reports whether a file with the given size and modification time
// was already converted under this cursor.
func (c *ImportCursor) Unchanged(size int64, modTime time.Time) bool {
	if c == nil {
		return false
	}
	return c.Size == size && c.ModTime.Equal(modTime)
}

type TableSummary struct {
	Table          string
	Hands          int
	LastStart      time.Time
	LastGameNumber string
}

type HandRepository interface {
	UpsertHands(ctx context.Context, hands []PersistedHand) (UpsertResult, error)
	// ListHands returns matching hands ordered by start time, then key.
	ListHands(ctx context.Context, f HandFilter) ([]*parser.Hand, error)
	CountHands(ctx context.Context, f HandFilter) (int, error)
	// GetHand returns nil, nil if the key is not stored.
	GetHand(ctx context.Context, key string) (*parser.Hand, error)
	ListTables(ctx context.Context) ([]TableSummary, error)
}

type CursorRepository interface {
	GetCursor(ctx context.Context, sourcePath string) (*ImportCursor, error)
	SaveCursor(ctx context.Context, c ImportCursor) error
}

type ImportRepository interface {
	HandRepository
	CursorRepository
}

type ImportBatchRepository interface {
	ImportRepository
	SaveImportBatch(ctx context.Context, hands []PersistedHand, cursor ImportCursor) (UpsertResult, error)
}

func matchesFilter(h *parser.Hand, f HandFilter) bool {
	if h == nil {
		return false
	}
	if f.Table != "" && h.TableName != f.Table {
		return false
	}
	if f.FromTime != nil && h.StartTime.Before(*f.FromTime) {
		return false
	}
	if f.ToTime != nil && h.StartTime.After(*f.ToTime) {
		return false
	}
	if f.Player != "" {
		for _, p := range h.Players {
			if p.Name == f.Player {
				return true
			}
		}
		return false
	}
	return true
}
