package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkatukiSora/pokernow-ohh/internal/identity"
	"github.com/AkatukiSora/pokernow-ohh/internal/ohh"
	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
	"github.com/AkatukiSora/pokernow-ohh/internal/persistence"
)

// Two complete hands and a third that the export cut off.
const sessionLog = `
-- starting hand #1 (id: aa11)  (No Limit Texas Hold'em) (dealer: "Alice @ dev1") --
Player stacks: #1 "Alice @ dev1" (1000.00) | #2 "Bob @ dev2" (1000.00) | #3 "Carol @ dev3" (1000.00)
"Bob @ dev2" posts a small blind of 10.00
"Carol @ dev3" posts a big blind of 20.00
"Alice @ dev1" raises to 60.00
"Bob @ dev2" folds
"Carol @ dev3" calls 60.00
Flop:  [A♥, 7♣, 2♠]
"Carol @ dev3" checks
"Alice @ dev1" bets 50.00
"Carol @ dev3" folds
Uncalled bet of 50.00 returned to "Alice @ dev1"
"Alice @ dev1" collected 130.00 from pot
-- ending hand #1 --
-- starting hand #2 (id: bb22)  (No Limit Texas Hold'em) (dealer: "Bob @ dev2") --
Player stacks: #1 "Alice @ dev1" (1070.00) | #2 "Bob @ dev2" (990.00) | #3 "Carol @ dev3" (940.00)
"Carol @ dev3" posts a small blind of 10.00
"Alice @ dev1" posts a big blind of 20.00
"Bob @ dev2" calls 20.00
"Carol @ dev3" folds
"Alice @ dev1" checks
Flop:  [K♦, 9♣, 3♥]
"Alice @ dev1" checks
"Bob @ dev2" checks
Turn: K♦, 9♣, 3♥ [5♠]
"Alice @ dev1" checks
"Bob @ dev2" checks
River: K♦, 9♣, 3♥, 5♠ [Q♣]
"Alice @ dev1" checks
"Bob @ dev2" checks
"Alice @ dev1" shows a 4♠, 4♦.
"Bob @ dev2" shows a K♠, J♦.
"Bob @ dev2" collected 50.00 from pot with Pair, K's (combination: K♠, K♦, Q♣, J♦, 9♣)
-- ending hand #2 --
-- starting hand #3 (id: cc33)  (No Limit Texas Hold'em) (dealer: "Carol @ dev3") --
Player stacks: #1 "Alice @ dev1" (1050.00) | #2 "Bob @ dev2" (1020.00) | #3 "Carol @ dev3" (930.00)
`

// writeSessionLog exports sessionLog as Poker Now does, newest row first,
// with timestamps starting at base.
func writeSessionLog(t *testing.T, dir, table string, base time.Time) string {
	t.Helper()
	var entries []string
	for _, line := range strings.Split(sessionLog, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write([]string{"entry", "at", "order"}))
	for i := len(entries) - 1; i >= 0; i-- {
		at := base.Add(time.Duration(i) * time.Second)
		order := strconv.FormatInt(at.UnixMilli()*100, 10)
		require.NoError(t, w.Write([]string{entries[i], at.Format("2006-01-02T15:04:05.000Z"), order}))
	}
	w.Flush()
	require.NoError(t, w.Error())

	path := filepath.Join(dir, "poker_now_log_"+table+".csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func knownPlayers() *identity.Directory {
	return identity.NewDirectory(map[string]identity.Entry{
		"Alice": {Nicknames: []string{"Alice"}, Devices: []string{"dev1"}},
		"Bob":   {Nicknames: []string{"Bob"}, Devices: []string{"dev2"}},
		"Carol": {Nicknames: []string{"Carol"}, Devices: []string{"dev3"}},
	})
}

type recordingStore struct {
	saves int
	last  map[string]identity.Entry
}

func (s *recordingStore) Save(d *identity.Directory) error {
	s.saves++
	s.last = d.Entries()
	d.MarkClean()
	return nil
}

func testOptions(outDir string) Options {
	settings := parser.DefaultSettings()
	settings.HeroName = "Alice"
	return Options{Settings: settings, Workers: 2, OutputDir: outDir, Prefix: "HHC"}
}

var (
	fridayStart   = time.Date(2022, 9, 16, 20, 0, 0, 0, time.UTC)
	saturdayStart = time.Date(2022, 9, 17, 20, 0, 0, 0, time.UTC)
)

func TestConvertWritesDocumentsAndRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in, out := t.TempDir(), t.TempDir()
	friday := writeSessionLog(t, in, "friday", fridayStart)
	saturday := writeSessionLog(t, in, "saturday", saturdayStart)

	repo := persistence.NewMemoryRepository(nil)
	svc := NewService(repo, knownPlayers(), nil, identity.Strict{}, testOptions(out))

	var progress []Progress
	sum, err := svc.Convert(ctx, []string{friday, saturday}, func(p Progress) { progress = append(progress, p) })
	require.NoError(t, err)
	require.Len(t, sum.Files, 2)
	assert.Equal(t, []Progress{{1, 2, friday}, {2, 2, saturday}}, progress)
	assert.Zero(t, sum.Assigned)

	first := sum.Files[0]
	assert.Equal(t, "friday", first.Table)
	assert.Equal(t, 2, first.Hands)
	assert.Equal(t, []int{3}, first.Dropped)
	assert.Equal(t, 2, first.Upsert.Inserted)
	assert.Equal(t, filepath.Join(out, "HHC_friday.ohh"), first.Output)
	assert.Equal(t, strconv.FormatInt(fridayStart.Add(14*time.Second).UnixMilli(), 10), first.LastGameNumber)

	docs, err := ohh.ReadFile(first.Output)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "friday", docs[0].TableName)

	count, err := repo.CountHands(ctx, persistence.HandFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	tables, err := svc.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "friday", tables[0].Table)
	assert.Equal(t, 2, tables[0].Hands)

	cursor, err := repo.GetCursor(ctx, friday)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, 2, cursor.Hands)
}

func TestConvertSkipsUnchangedFiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in, out := t.TempDir(), t.TempDir()
	path := writeSessionLog(t, in, "friday", fridayStart)
	repo := persistence.NewMemoryRepository(nil)

	svc := NewService(repo, knownPlayers(), nil, identity.Strict{}, testOptions(out))
	_, err := svc.Convert(ctx, []string{path}, nil)
	require.NoError(t, err)

	sum, err := svc.Convert(ctx, []string{path}, nil)
	require.NoError(t, err)
	require.Len(t, sum.Files, 1)
	assert.True(t, sum.Files[0].Skipped)
	assert.Equal(t, 2, sum.Files[0].Hands)

	opts := testOptions(out)
	opts.Force = true
	forced := NewService(repo, knownPlayers(), nil, identity.Strict{}, opts)
	sum, err = forced.Convert(ctx, []string{path}, nil)
	require.NoError(t, err)
	require.Len(t, sum.Files, 1)
	assert.False(t, sum.Files[0].Skipped)
	assert.Equal(t, 2, sum.Files[0].Upsert.Updated, "reconversion replaces hands in place")

	count, err := repo.CountHands(ctx, persistence.HandFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestConvertAssignsIdentitiesFromBatchAnswers(t *testing.T) {
	t.Parallel()

	in, out := t.TempDir(), t.TempDir()
	path := writeSessionLog(t, in, "friday", fridayStart)

	answers, err := identity.DecodeBatch(strings.NewReader(`
[aliases]
"Alice" = "Alice"
"Bob" = "Robert"

[devices]
"dev3" = "Carol"
`))
	require.NoError(t, err)

	store := &recordingStore{}
	svc := NewService(persistence.NewMemoryRepository(nil), identity.NewDirectory(nil), store, answers, testOptions(out))
	sum, err := svc.Convert(context.Background(), []string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Assigned)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, []string{"Bob"}, store.last["Robert"].Nicknames)

	hands, err := svc.Hands(context.Background(), persistence.HandFilter{Player: "Robert"})
	require.NoError(t, err)
	assert.Len(t, hands, 2)
}

func TestConvertStopsOnUnknownIdentity(t *testing.T) {
	t.Parallel()

	in, out := t.TempDir(), t.TempDir()
	path := writeSessionLog(t, in, "friday", fridayStart)
	repo := persistence.NewMemoryRepository(nil)

	svc := NewService(repo, identity.NewDirectory(nil), nil, identity.Strict{}, testOptions(out))
	_, err := svc.Convert(context.Background(), []string{path}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, identity.ErrUnknownIdentity))

	_, statErr := os.Stat(filepath.Join(out, "HHC_friday.ohh"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "nothing is written when identities fail")

	cursor, err := repo.GetCursor(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestConvertMissingFile(t *testing.T) {
	t.Parallel()

	svc := NewService(persistence.NewMemoryRepository(nil), knownPlayers(), nil, nil, testOptions(t.TempDir()))
	_, err := svc.Convert(context.Background(), []string{filepath.Join(t.TempDir(), "poker_now_log_gone.csv")}, nil)
	assert.Error(t, err)
}

func TestStatsFollowConversions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in, out := t.TempDir(), t.TempDir()
	friday := writeSessionLog(t, in, "friday", fridayStart)
	saturday := writeSessionLog(t, in, "saturday", saturdayStart)
	svc := NewService(persistence.NewMemoryRepository(nil), knownPlayers(), nil, identity.Strict{}, testOptions(out))

	_, err := svc.Convert(ctx, []string{friday}, nil)
	require.NoError(t, err)
	st, err := svc.Stats(ctx, persistence.HandFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalHands)

	alice, ok := st.Player("Alice")
	require.True(t, ok)
	assert.Equal(t, 2, alice.Hands)
	assert.Equal(t, 1, alice.WonHands)

	_, err = svc.Convert(ctx, []string{saturday}, nil)
	require.NoError(t, err)
	st, err = svc.Stats(ctx, persistence.HandFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalHands)

	st, err = svc.Stats(ctx, persistence.HandFilter{Table: "saturday"})
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalHands)
}

// writeEntryOnlyLog exports sessionLog newest row first with only the entry
// column, as hand-trimmed exports arrive.
func writeEntryOnlyLog(t *testing.T, dir, table string) string {
	t.Helper()
	var entries []string
	for _, line := range strings.Split(sessionLog, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write([]string{"entry"}))
	for i := len(entries) - 1; i >= 0; i-- {
		require.NoError(t, w.Write([]string{entries[i]}))
	}
	w.Flush()
	require.NoError(t, w.Error())

	path := filepath.Join(dir, "poker_now_log_"+table+".csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestConvertEntryOnlyLogKeepsHandOrder(t *testing.T) {
	t.Parallel()

	in, out := t.TempDir(), t.TempDir()
	path := writeEntryOnlyLog(t, in, "trimmed")

	svc := NewService(persistence.NewMemoryRepository(nil), knownPlayers(), nil, identity.Strict{}, testOptions(out))
	sum, err := svc.Convert(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	require.Len(t, sum.Files, 1)

	res := sum.Files[0]
	assert.Equal(t, 2, res.Hands)
	assert.Equal(t, []int{3}, res.Dropped)
	assert.Zero(t, res.Anomalies)

	docs, err := ohh.ReadFile(res.Output)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "trimmed-1", docs[0].GameNumber)
	assert.Equal(t, "trimmed-2", docs[1].GameNumber)
	for _, doc := range docs {
		assert.Len(t, doc.Players, 3, "hand %s", doc.GameNumber)
		assert.NotEmpty(t, doc.Rounds, "hand %s", doc.GameNumber)
	}
}
