package parser

import "strings"

// stacksLabel is the street-marker label of the seating line. It seeds the
// first round instead of closing one.
const stacksLabel = "Player stacks"

// Vocabulary holds the immutable lookup tables that translate Poker Now
// phrases into hand-history values. Build it once with DefaultVocabulary and
// share it between classifiers and compilers.
type Vocabulary struct {
	games      map[string]GameType
	structures map[string]BetType
	streets    map[string]Street
	posts      map[string]ActionKind
	verbs      map[string]ActionKind
	ignore     []string
}

func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		games: map[string]GameType{
			"Texas Hold'em":           GameHoldem,
			"Omaha Hi/Lo 8 or Better": GameOmahaHiLo,
			"Omaha Hi":                GameOmaha,
			"Omaha High":              GameOmaha,
		},
		structures: map[string]BetType{
			"No Limit":  BetNoLimit,
			"Pot Limit": BetPotLimit,
		},
		streets: map[string]Street{
			stacksLabel:          StreetPreflop,
			"Flop":               StreetFlop,
			"Flop (second run)":  StreetFlop,
			"Turn":               StreetTurn,
			"Turn (second run)":  StreetTurn,
			"River":              StreetRiver,
			"River (second run)": StreetRiver,
			"Show Down":          StreetShowdown,
		},
		posts: map[string]ActionKind{
			"posts an ante":               ActionPostAnte,
			"posts a big blind":           ActionPostBB,
			"posts a small blind":         ActionPostSB,
			"posts a straddle":            ActionStraddle,
			"posts a missing small blind": ActionPostDead,
			"posts a missed big blind":    ActionPostExtraBlind,
		},
		verbs: map[string]ActionKind{
			"bets":   ActionBet,
			"calls":  ActionCall,
			"raises": ActionRaise,
			"folds":  ActionFold,
			"checks": ActionCheck,
		},
		ignore: []string{
			"The admin",
			"joined",
			"requested",
			"canceled the seat",
			"authenticated",
			"quits",
			"stand up",
			"sit back",
			"Remaining players",
			"chooses",
			"choose to not",
			"Dead Small Blind",
			"room ownership",
			"IMPORTANT:",
			"WARNING:",
			"enqueued",
			"approved",
			"created",
			"he player ",
		},
	}
}

func (v *Vocabulary) Game(label string) (GameType, bool) {
	g, ok := v.games[strings.TrimSpace(label)]
	return g, ok
}

func (v *Vocabulary) Structure(label string) (BetType, bool) {
	b, ok := v.structures[strings.TrimSpace(label)]
	return b, ok
}

func (v *Vocabulary) Street(label string) (Street, bool) {
	s, ok := v.streets[strings.TrimSpace(label)]
	return s, ok
}

func (v *Vocabulary) Post(phrase string) (ActionKind, bool) {
	k, ok := v.posts[strings.TrimSpace(phrase)]
	return k, ok
}

func (v *Vocabulary) Verb(verb string) (ActionKind, bool) {
	k, ok := v.verbs[verb]
	return k, ok
}

// Ignorable reports whether the line is administrative chatter.
func (v *Vocabulary) Ignorable(text string) bool {
	for _, sub := range v.ignore {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
