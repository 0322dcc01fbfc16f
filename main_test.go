package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkatukiSora/pokernow-ohh/internal/application"
	"github.com/AkatukiSora/pokernow-ohh/internal/config"
	"github.com/AkatukiSora/pokernow-ohh/internal/identity"
	"github.com/AkatukiSora/pokernow-ohh/internal/persistence"
)

func TestStatsFilterDates(t *testing.T) {
	t.Parallel()

	cmd := StatsCmd{Table: "friday", From: "2022-09-14", To: "2022-09-15"}
	f, err := cmd.filter()
	require.NoError(t, err)
	assert.Equal(t, "friday", f.Table)
	require.NotNil(t, f.FromTime)
	require.NotNil(t, f.ToTime)
	assert.Equal(t, time.Date(2022, 9, 14, 0, 0, 0, 0, time.UTC), *f.FromTime)
	assert.True(t, f.ToTime.Before(time.Date(2022, 9, 16, 0, 0, 0, 0, time.UTC)))
	assert.True(t, f.ToTime.After(time.Date(2022, 9, 15, 23, 59, 59, 0, time.UTC)))

	_, err = (&StatsCmd{From: "14/09/2022"}).filter()
	assert.Error(t, err)
}

func TestTableRowsOmitUnchangedFiles(t *testing.T) {
	t.Parallel()

	rows := tableRows(application.Summary{Files: []application.FileResult{
		{Table: "friday", Hands: 12, Dropped: []int{13}, Output: "out/HHC_friday.ohh"},
		{Table: "saturday", Hands: 40, Skipped: true},
	}})
	require.Len(t, rows, 1)
	assert.Equal(t, "friday", rows[0].Table)
	assert.Equal(t, 1, rows[0].Dropped)
}

func TestNewStrategy(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Processing.Identity = config.IdentityStrict
	s, err := newStrategy(cfg)
	require.NoError(t, err)
	assert.IsType(t, identity.Strict{}, s)

	cfg.Processing.Identity = config.IdentityInteractive
	s, err = newStrategy(cfg)
	require.NoError(t, err)
	assert.IsType(t, identity.Interactive{}, s)

	cfg.Processing.Identity = config.IdentityBatch
	cfg.Processing.Answers = filepath.Join(t.TempDir(), "missing.toml")
	_, err = newStrategy(cfg)
	assert.Error(t, err)
}

func TestOpenRepository(t *testing.T) {
	t.Parallel()

	mem, err := openRepository("")
	require.NoError(t, err)
	assert.IsType(t, &persistence.MemoryRepository{}, mem)

	repo, err := openRepository(filepath.Join(t.TempDir(), "data", "hands.db"))
	require.NoError(t, err)
	db, ok := repo.(*persistence.SQLiteRepository)
	require.True(t, ok)
	require.NoError(t, db.Close())
}
