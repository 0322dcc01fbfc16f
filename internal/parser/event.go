package parser

import "github.com/shopspring/decimal"

// EventKind is the closed set of things a single log line can mean.
type EventKind int

const (
	EventUnrecognized EventKind = iota
	EventIgnorable
	EventBlindStructureChanged
	EventHandStarted
	EventHandEnded
	EventSeatAnnounced
	EventPosted
	EventStreetMarker
	EventShowedCards
	EventAddedChips
	EventHeroDealt
	EventNonBetAction
	EventBetAction
	EventUncalledBetReturned
	EventCollected
	EventRunItTwiceApproved
)

func (k EventKind) String() string {
	switch k {
	case EventIgnorable:
		return "Ignorable"
	case EventBlindStructureChanged:
		return "BlindStructureChanged"
	case EventHandStarted:
		return "HandStarted"
	case EventHandEnded:
		return "HandEnded"
	case EventSeatAnnounced:
		return "SeatAnnounced"
	case EventPosted:
		return "Posted"
	case EventStreetMarker:
		return "StreetMarker"
	case EventShowedCards:
		return "ShowedCards"
	case EventAddedChips:
		return "AddedChips"
	case EventHeroDealt:
		return "HeroDealt"
	case EventNonBetAction:
		return "NonBetAction"
	case EventBetAction:
		return "BetAction"
	case EventUncalledBetReturned:
		return "UncalledBetReturned"
	case EventCollected:
		return "Collected"
	case EventRunItTwiceApproved:
		return "RunItTwiceApproved"
	default:
		return "Unrecognized"
	}
}

// SeatInfo is one entry of the seating line.
type SeatInfo struct {
	Seat   int
	Alias  string
	Device string
	Stack  decimal.Decimal
}

// Event is the classified form of one log line. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind

	// Acting player, or the dealer for EventHandStarted.
	Alias  string
	Device string

	Amount decimal.Decimal
	AllIn  bool
	Cards  []string
	Action ActionKind

	HandNumber int
	Game       GameType
	GameLabel  string
	Structure  BetType
	DeadButton bool

	// BlindType is "small blind", "big blind" or "ante".
	BlindType string

	Street      Street
	StreetLabel string
	Seats       []SeatInfo

	PotLabel string
}
