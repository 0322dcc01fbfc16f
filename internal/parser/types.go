package parser

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type GameType string

const (
	GameHoldem    GameType = "Holdem"
	GameOmaha     GameType = "Omaha"
	GameOmahaHiLo GameType = "OmahaHiLo"
)

type BetType string

const (
	BetNoLimit  BetType = "NL"
	BetPotLimit BetType = "PL"
)

type Flag string

const (
	FlagRunItTwice Flag = "Run_It_Twice"
	FlagObserved   Flag = "Observed"
)

type HandAnomaly struct {
	Code     string
	Severity string
	Detail   string
}

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Street represents the betting round
type Street int

const (
	StreetPreflop Street = iota
	StreetFlop
	StreetTurn
	StreetRiver
	StreetShowdown
)

func (s Street) String() string {
	switch s {
	case StreetPreflop:
		return "Preflop"
	case StreetFlop:
		return "Flop"
	case StreetTurn:
		return "Turn"
	case StreetRiver:
		return "River"
	case StreetShowdown:
		return "Showdown"
	default:
		return "Unknown"
	}
}

// ActionKind is the kind of a recorded action. String returns the
// hand-history spelling.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionPostSB
	ActionPostBB
	ActionPostAnte
	ActionPostDead
	ActionPostExtraBlind
	ActionStraddle
	ActionBet
	ActionCall
	ActionRaise
	ActionCheck
	ActionFold
	ActionShowsCards
	ActionDealtCards
	ActionAddedChips
)

func (a ActionKind) String() string {
	switch a {
	case ActionPostSB:
		return "Post SB"
	case ActionPostBB:
		return "Post BB"
	case ActionPostAnte:
		return "Post Ante"
	case ActionPostDead:
		return "Post Dead"
	case ActionPostExtraBlind:
		return "Post Extra Blind"
	case ActionStraddle:
		return "Straddle"
	case ActionBet:
		return "Bet"
	case ActionCall:
		return "Call"
	case ActionRaise:
		return "Raise"
	case ActionCheck:
		return "Check"
	case ActionFold:
		return "Fold"
	case ActionShowsCards:
		return "Shows Cards"
	case ActionDealtCards:
		return "Dealt Cards"
	case ActionAddedChips:
		return "Added Chips"
	default:
		return "Unknown"
	}
}

// IsPost reports whether the action is a forced or optional post.
func (a ActionKind) IsPost() bool {
	switch a {
	case ActionPostSB, ActionPostBB, ActionPostAnte, ActionPostDead, ActionPostExtraBlind, ActionStraddle:
		return true
	}
	return false
}

// IsWager reports whether the action is a bet, call or raise.
func (a ActionKind) IsWager() bool {
	return a == ActionBet || a == ActionCall || a == ActionRaise
}

type BetLimit struct {
	Type BetType
	Cap  *decimal.Decimal
}

// Player is one seated participant. It is not updated after the seating line
// that created it.
type Player struct {
	ID            int
	Seat          int
	Name          string
	Display       string
	Device        string
	StartingStack decimal.Decimal
	Bounty        decimal.Decimal
}

// Action is a single entry within a round. Amount is incremental, never the
// running total reported by the log.
type Action struct {
	Number   int
	PlayerID int
	Kind     ActionKind
	Amount   decimal.Decimal
	AllIn    bool
	Cards    []string
}

type Round struct {
	ID      int
	Street  Street
	Cards   []string
	Actions []Action
}

type PlayerWin struct {
	PlayerID int
	Amount   decimal.Decimal
	Rake     decimal.Decimal
}

// Refund is an uncalled bet handed back to the player who made it.
type Refund struct {
	PlayerID int
	Amount   decimal.Decimal
}

type Pot struct {
	Number int
	Amount decimal.Decimal
	Rake   decimal.Decimal
	Wins   []PlayerWin
}

// Hand represents a single compiled poker hand
type Hand struct {
	GameNumber string
	HandNumber int
	TableName  string
	StartTime  time.Time
	GameType   GameType
	BetLimit   BetLimit
	TableSize  int
	Currency   string
	DealerSeat int
	SmallBlind decimal.Decimal
	BigBlind   decimal.Decimal
	Ante       decimal.Decimal

	// HeroPlayerID is nil when the configured hero did not sit in the hand.
	HeroPlayerID *int
	Flags        []Flag
	Players      []Player
	Rounds       []Round
	Pots         []Pot

	// Contributed is the running pot total: wagers and live posts minus
	// uncalled bets returned.
	Contributed decimal.Decimal
	Refunds     []Refund
	Unprocessed int
	Degraded    bool
	Anomalies   []HandAnomaly
}

// Key returns the identifier a hand is stored and emitted under. The global
// game number is authoritative; the table-local counter is only a fallback
// for logs without an ordering column.
func (h *Hand) Key() string {
	if h == nil {
		return ""
	}
	if h.GameNumber != "" {
		return h.GameNumber
	}
	return h.TableName + "-" + strconv.Itoa(h.HandNumber)
}

func (h *Hand) HasFlag(f Flag) bool {
	if h == nil {
		return false
	}
	for _, got := range h.Flags {
		if got == f {
			return true
		}
	}
	return false
}

func (h *Hand) addFlag(f Flag) {
	if !h.HasFlag(f) {
		h.Flags = append(h.Flags, f)
	}
}

// AddAnomaly records a non-fatal data problem on the hand.
func (h *Hand) AddAnomaly(code, severity, detail string) {
	h.Anomalies = append(h.Anomalies, HandAnomaly{Code: code, Severity: severity, Detail: detail})
}

// Player returns the seated player with the given id.
func (h *Hand) Player(id int) (Player, bool) {
	if h == nil || id < 0 || id >= len(h.Players) {
		return Player{}, false
	}
	return h.Players[id], true
}

// TotalPot is the sum of every pot's amount.
func (h *Hand) TotalPot() decimal.Decimal {
	total := decimal.Zero
	if h == nil {
		return total
	}
	for _, p := range h.Pots {
		total = total.Add(p.Amount)
	}
	return total
}

// Settings are the read-only values a run is configured with.
type Settings struct {
	SpecVersion     string
	InternalVersion string
	SiteName        string
	NetworkName     string
	Currency        string
	HeroName        string
	TableSize       int
}

func DefaultSettings() Settings {
	return Settings{
		SpecVersion:     "1.2.2",
		InternalVersion: "1.2.2",
		SiteName:        "PokerStars",
		NetworkName:     "PokerStars",
		Currency:        "USD",
		TableSize:       10,
	}
}

// BlindLevels holds the blind and ante amounts in effect for a hand.
type BlindLevels struct {
	SmallBlind decimal.Decimal
	BigBlind   decimal.Decimal
	Ante       decimal.Decimal
}

// DefaultBlindLevels are assumed until the log says otherwise.
func DefaultBlindLevels() BlindLevels {
	return BlindLevels{
		SmallBlind: decimal.NewFromInt(10),
		BigBlind:   decimal.NewFromInt(20),
		Ante:       decimal.Zero,
	}
}
