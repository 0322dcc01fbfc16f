package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	namePattern   = `"(.+?) @ ([-\w]+)"`
	numberPattern = `\d+(?:\.\d+)?`
	amountPattern = `\s*(` + numberPattern + `)`
	cardsPattern  = `([\dAKQJTshcd, ]+)`
)

var (
	reBlindChange = regexp.MustCompile(`^The game's (.+?) was changed from ` + numberPattern + ` to` + amountPattern)
	reHandStart   = regexp.MustCompile(`^-- starting hand #(\d+).+\((\w*\s*Limit) (.+)\) \((?:dealer: ` + namePattern + `|dead button)\) --`)
	reHandEnd     = regexp.MustCompile(`^-- ending hand #(\d+) --`)
	rePost        = regexp.MustCompile(`^` + namePattern + ` (posts an? .+?) of` + amountPattern + `\s*([a-z ]+)?`)
	reSeat        = regexp.MustCompile(`#(\d+) ` + namePattern + ` \(` + amountPattern + `\)`)
	reStreet      = regexp.MustCompile(`^(\w[^:]*):.*?\[` + cardsPattern)
	reShow        = regexp.MustCompile(`^` + namePattern + ` shows a ` + cardsPattern)
	reAddOn       = regexp.MustCompile(`^` + namePattern + ` adding` + amountPattern)
	reHeroHand    = regexp.MustCompile(`^Your hand is ` + cardsPattern)
	reCollected   = regexp.MustCompile(`^` + namePattern + ` collected` + amountPattern + `(.*)$`)
	rePotLabel    = regexp.MustCompile(`from ((?:main |side )?pot(?:[- ]?\d+)?)`)
	reUncalled    = regexp.MustCompile(`^Uncalled bet of` + amountPattern + ` .+ ` + namePattern)
	reActor       = regexp.MustCompile(`^` + namePattern + ` (\w+)(.*)$`)
	reWagerTail   = regexp.MustCompile(`^ (?:[a-z]*\s*)?(` + numberPattern + `)\s*([a-z ]+)?`)
)

const runItTwiceApproval = "All players in hand choose to run it twice"

// Verbs that share the "<player> <verb> <amount>" shape with wagers but are
// never wagers. They are rejected before the wager pattern is tried.
var excludedWagerVerbs = map[string]bool{
	"collected": true,
	"shows":     true,
}

// Classifier maps one log line to exactly one Event. It holds no state
// between calls.
type Classifier struct {
	vocab *Vocabulary
}

func NewClassifier(vocab *Vocabulary) *Classifier {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Classifier{vocab: vocab}
}

func (c *Classifier) Vocabulary() *Vocabulary { return c.vocab }

// Classify normalizes text and returns its event. Kinds are tried in a fixed
// priority order; lines that match nothing come back as EventUnrecognized.
func (c *Classifier) Classify(text string) Event {
	text = strings.TrimSpace(Normalize(text))
	if text == "" {
		return Event{Kind: EventUnrecognized}
	}
	if c.vocab.Ignorable(text) {
		return Event{Kind: EventIgnorable}
	}

	classifiers := [...]func(string) (Event, bool){
		c.blindChange,
		c.handStart,
		c.handEnd,
		c.post,
		c.seats,
		c.streetMarker,
		c.showedCards,
		c.addedChips,
		c.heroDealt,
		c.collected,
		c.uncalled,
		c.playerAction,
		c.runItTwice,
	}
	for _, fn := range classifiers {
		if ev, ok := fn(text); ok {
			return ev
		}
	}
	return Event{Kind: EventUnrecognized}
}

func (c *Classifier) blindChange(text string) (Event, bool) {
	m := reBlindChange.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	amount, ok := parseAmount(m[2])
	if !ok {
		return Event{}, false
	}
	return Event{Kind: EventBlindStructureChanged, BlindType: strings.TrimSpace(m[1]), Amount: amount}, true
}

func (c *Classifier) handStart(text string) (Event, bool) {
	m := reHandStart.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return Event{}, false
	}
	ev := Event{
		Kind:       EventHandStarted,
		HandNumber: num,
		GameLabel:  strings.TrimSpace(m[3]),
		Alias:      m[4],
		Device:     m[5],
		DeadButton: m[4] == "",
	}
	ev.Structure, _ = c.vocab.Structure(m[2])
	ev.Game, _ = c.vocab.Game(ev.GameLabel)
	return ev, true
}

func (c *Classifier) handEnd(text string) (Event, bool) {
	m := reHandEnd.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return Event{}, false
	}
	return Event{Kind: EventHandEnded, HandNumber: num}, true
}

func (c *Classifier) post(text string) (Event, bool) {
	m := rePost.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	kind, ok := c.vocab.Post(m[3])
	if !ok {
		return Event{}, false
	}
	amount, ok := parseAmount(m[4])
	if !ok {
		return Event{}, false
	}
	return Event{
		Kind:   EventPosted,
		Alias:  m[1],
		Device: m[2],
		Action: kind,
		Amount: amount,
		AllIn:  isAllIn(m[5]),
	}, true
}

// seats classifies the seating line. Every "#seat player (stack)" group on
// the line becomes one SeatInfo, in the order written.
func (c *Classifier) seats(text string) (Event, bool) {
	if !strings.HasPrefix(text, stacksLabel+":") {
		return Event{}, false
	}
	ev := Event{Kind: EventSeatAnnounced, Street: StreetPreflop, StreetLabel: stacksLabel}
	for _, m := range reSeat.FindAllStringSubmatch(text, -1) {
		seat, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		stack, ok := parseAmount(m[4])
		if !ok {
			continue
		}
		ev.Seats = append(ev.Seats, SeatInfo{Seat: seat, Alias: m[2], Device: m[3], Stack: stack})
	}
	return ev, true
}

func (c *Classifier) streetMarker(text string) (Event, bool) {
	m := reStreet.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	label := strings.TrimSpace(m[1])
	street, ok := c.vocab.Street(label)
	if !ok || label == stacksLabel {
		return Event{}, false
	}
	return Event{Kind: EventStreetMarker, Street: street, StreetLabel: label, Cards: splitCards(m[2])}, true
}

func (c *Classifier) showedCards(text string) (Event, bool) {
	m := reShow.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	return Event{Kind: EventShowedCards, Alias: m[1], Device: m[2], Action: ActionShowsCards, Cards: splitCards(m[3])}, true
}

func (c *Classifier) addedChips(text string) (Event, bool) {
	m := reAddOn.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	amount, ok := parseAmount(m[3])
	if !ok {
		return Event{}, false
	}
	return Event{Kind: EventAddedChips, Alias: m[1], Device: m[2], Action: ActionAddedChips, Amount: amount}, true
}

func (c *Classifier) heroDealt(text string) (Event, bool) {
	m := reHeroHand.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	return Event{Kind: EventHeroDealt, Action: ActionDealtCards, Cards: splitCards(m[1])}, true
}

func (c *Classifier) collected(text string) (Event, bool) {
	m := reCollected.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	amount, ok := parseAmount(m[3])
	if !ok {
		return Event{}, false
	}
	label := "pot"
	if pm := rePotLabel.FindStringSubmatch(m[4]); pm != nil {
		label = pm[1]
	}
	return Event{Kind: EventCollected, Alias: m[1], Device: m[2], Amount: amount, PotLabel: normalizePotLabel(label)}, true
}

func (c *Classifier) uncalled(text string) (Event, bool) {
	m := reUncalled.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	amount, ok := parseAmount(m[1])
	if !ok {
		return Event{}, false
	}
	return Event{Kind: EventUncalledBetReturned, Alias: m[2], Device: m[3], Amount: amount}, true
}

// playerAction handles the "<player> <verb> ..." family. Excluded verbs are
// rejected first; check/fold carry no amount; bet/call/raise must be
// followed by an amount.
func (c *Classifier) playerAction(text string) (Event, bool) {
	m := reActor.FindStringSubmatch(text)
	if m == nil {
		return Event{}, false
	}
	alias, device, verb, tail := m[1], m[2], m[3], m[4]
	if excludedWagerVerbs[verb] {
		return Event{}, false
	}
	kind, ok := c.vocab.Verb(verb)
	if !ok {
		return Event{}, false
	}

	if !kind.IsWager() {
		return Event{Kind: EventNonBetAction, Alias: alias, Device: device, Action: kind}, true
	}

	wm := reWagerTail.FindStringSubmatch(tail)
	if wm == nil {
		return Event{}, false
	}
	amount, ok := parseAmount(wm[1])
	if !ok {
		return Event{}, false
	}
	return Event{
		Kind:   EventBetAction,
		Alias:  alias,
		Device: device,
		Action: kind,
		Amount: amount,
		AllIn:  isAllIn(wm[2]),
	}, true
}

func (c *Classifier) runItTwice(text string) (Event, bool) {
	if !strings.Contains(text, runItTwiceApproval) {
		return Event{}, false
	}
	return Event{Kind: EventRunItTwiceApproved}, true
}

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func isAllIn(tail string) bool {
	return strings.Contains(tail, "all in")
}

func splitCards(s string) []string {
	parts := strings.Split(s, ",")
	cards := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cards = append(cards, p)
		}
	}
	return cards
}

// normalizePotLabel folds the spellings of the main pot together so that
// "from pot" and "from main pot" credit the same pot.
func normalizePotLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	switch label {
	case "", "pot", "main pot":
		return "main"
	}
	return strings.NewReplacer("-", " ").Replace(label)
}
