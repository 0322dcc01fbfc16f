package ohh

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleHand() *parser.Hand {
	hero := 1
	return &parser.Hand{
		GameNumber:   "1663117201000",
		HandNumber:   7,
		TableName:    "pglTable",
		StartTime:    time.Date(2022, 9, 14, 1, 0, 1, 500_000_000, time.UTC),
		GameType:     parser.GameHoldem,
		BetLimit:     parser.BetLimit{Type: parser.BetNoLimit},
		TableSize:    10,
		Currency:     "USD",
		DealerSeat:   3,
		SmallBlind:   d("5"),
		BigBlind:     d("10"),
		Ante:         decimal.Zero,
		HeroPlayerID: &hero,
		Flags:        []parser.Flag{parser.FlagRunItTwice},
		Players: []parser.Player{
			{ID: 0, Seat: 1, Name: "Alice", Display: "Ali", StartingStack: d("1000")},
			{ID: 1, Seat: 3, Name: "Robert", Display: "Bob", StartingStack: d("950.5")},
		},
		Rounds: []parser.Round{
			{ID: 0, Street: parser.StreetPreflop, Actions: []parser.Action{
				{Number: 0, PlayerID: 1, Kind: parser.ActionDealtCards, Cards: []string{"As", "Td"}},
				{Number: 1, PlayerID: 0, Kind: parser.ActionPostSB, Amount: d("5")},
				{Number: 2, PlayerID: 1, Kind: parser.ActionRaise, Amount: d("25"), AllIn: true},
			}},
			{ID: 1, Street: parser.StreetShowdown},
		},
		Pots: []parser.Pot{{Number: 0, Amount: d("35"), Rake: decimal.Zero, Wins: []parser.PlayerWin{
			{PlayerID: 1, Amount: d("35"), Rake: decimal.Zero},
		}}},
	}
}

func TestFromHandFields(t *testing.T) {
	t.Parallel()

	doc := FromHand(sampleHand(), parser.DefaultSettings())
	assert.Equal(t, "1.2.2", doc.SpecVersion)
	assert.Equal(t, "PokerStars", doc.SiteName)
	assert.Equal(t, "Holdem", doc.GameType)
	assert.Equal(t, "1663117201000", doc.GameNumber)
	assert.Equal(t, "2022-09-14T01:00:01Z", doc.StartDateUTC)
	assert.Equal(t, "NL", doc.BetLimit.BetType)
	assert.Nil(t, doc.BetLimit.BetCap)
	assert.Equal(t, []string{"Run_It_Twice"}, doc.Flags)
	require.NotNil(t, doc.HeroPlayerID)
	assert.Equal(t, 1, *doc.HeroPlayerID)

	require.Len(t, doc.Rounds, 2)
	assert.Equal(t, "Preflop", doc.Rounds[0].Street)
	assert.Equal(t, "Dealt Cards", doc.Rounds[0].Actions[0].Action)
	assert.Equal(t, "Post SB", doc.Rounds[0].Actions[1].Action)
	assert.True(t, doc.Rounds[0].Actions[2].IsAllIn)
	assert.NotNil(t, doc.Rounds[1].Cards, "empty rounds still carry a cards array")
}

func TestDocumentJSONShape(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Envelope{OHH: FromHand(sampleHand(), parser.DefaultSettings())})
	require.NoError(t, err)
	text := string(data)

	for _, want := range []string{
		`{"ohh":{"spec_version":"1.2.2"`,
		`"small_blind_amount":5.00`,
		`"starting_stack":950.50`,
		`"bet_limit":{"bet_type":"NL","bet_cap":null}`,
		`"hero_player_id":1`,
		`"action":"Raise","amount":25.00,"is_allin":true}`,
		`"player_wins":[{"player_id":1,"win_amount":35.00,"cashout_amount":0.00`,
		`"cards":[]`,
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, `"cards":null`)
}

func TestObservedHandHasNullHero(t *testing.T) {
	t.Parallel()

	h := sampleHand()
	h.HeroPlayerID = nil
	h.Flags = []parser.Flag{parser.FlagObserved}
	data, err := json.Marshal(FromHand(h, parser.DefaultSettings()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hero_player_id":null`)
	assert.Contains(t, string(data), `"flags":["Observed"]`)
}

func TestAmountRoundTrip(t *testing.T) {
	t.Parallel()

	var a Amount
	require.NoError(t, json.Unmarshal([]byte("12.5"), &a))
	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, "12.50", string(out))
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &a))
}

func TestWriterSeparatesDocumentsWithBlankLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(dir, "HHC", parser.DefaultSettings())
	second := sampleHand()
	second.GameNumber = "1663117209999"

	path, err := w.WriteTable("pglTable", []*parser.Hand{sampleHand(), second})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "HHC_pglTable.ohh"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, 2, strings.Count(text, "}\n\n"))
	assert.True(t, strings.HasPrefix(text, "{\n    \"ohh\": {\n        \"spec_version\""))

	docs, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1663117209999", docs[1].GameNumber)
	assert.True(t, docs[0].Players[1].StartingStack.Equal(d("950.5")))
}

func TestWriterPathWithoutPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("out", "table.ohh"), NewWriter("out", "", parser.DefaultSettings()).Path("table"))
}

func TestEncodeCompiledLog(t *testing.T) {
	t.Parallel()

	const csvText = `entry,at,order
-- ending hand #1 --,2022-09-14T01:00:06.000Z,166311720600000
"""B @ d2"" collected 15 from pot",2022-09-14T01:00:05.000Z,166311720500000
"""A @ d1"" folds",2022-09-14T01:00:04.000Z,166311720400000
"""B @ d2"" posts a big blind of 10",2022-09-14T01:00:03.000Z,166311720300000
"""A @ d1"" posts a small blind of 5",2022-09-14T01:00:02.000Z,166311720200000
"Player stacks: #1 ""A @ d1"" (100) | #2 ""B @ d2"" (100)",2022-09-14T01:00:01.000Z,166311720100000
"-- starting hand #1 (id: a)  (No Limit Texas Hold'em) (dealer: ""A @ d1"") --",2022-09-14T01:00:00.000Z,166311720000000
`
	lines, err := parser.ReadLog(strings.NewReader(csvText))
	require.NoError(t, err)
	res := parser.NewSegmenter(nil, "t", parser.DefaultBlindLevels()).Segment(lines)
	hands, err := parser.NewCompiler(parser.DefaultSettings(), nil).CompileTable(res.Segments, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, hands, parser.DefaultSettings()))
	docs, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "1663117200000", doc.GameNumber)
	assert.Equal(t, "2022-09-14T01:00:00Z", doc.StartDateUTC)
	assert.Equal(t, []string{"Observed"}, doc.Flags)
	assert.Nil(t, doc.HeroPlayerID)
	require.Len(t, doc.Pots, 1)
	assert.True(t, doc.Pots[0].Amount.Equal(d("15")))
	assert.True(t, doc.SmallBlind.Equal(d("5")))
	assert.True(t, doc.BigBlind.Equal(d("10")))
}
