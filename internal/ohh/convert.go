package ohh

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

const startDateLayout = "2006-01-02T15:04:05Z"

var zero = NewAmount(decimal.Zero)

// FromHand builds the document for one compiled hand. Settings supply the
// site and version fields that the log does not carry.
func FromHand(h *parser.Hand, s parser.Settings) Document {
	doc := Document{
		SpecVersion:     s.SpecVersion,
		InternalVersion: s.InternalVersion,
		NetworkName:     s.NetworkName,
		SiteName:        s.SiteName,
		GameType:        string(h.GameType),
		TableName:       h.TableName,
		TableSize:       h.TableSize,
		GameNumber:      h.Key(),
		Currency:        h.Currency,
		AnteAmount:      NewAmount(h.Ante),
		SmallBlind:      NewAmount(h.SmallBlind),
		BigBlind:        NewAmount(h.BigBlind),
		DealerSeat:      h.DealerSeat,
		BetLimit:        BetLimit{BetType: string(h.BetLimit.Type)},
		Flags:           make([]string, 0, len(h.Flags)),
		Players:         make([]Player, 0, len(h.Players)),
		Rounds:          make([]Round, 0, len(h.Rounds)),
		Pots:            make([]Pot, 0, len(h.Pots)),
	}
	if doc.Currency == "" {
		doc.Currency = s.Currency
	}
	if !h.StartTime.IsZero() {
		doc.StartDateUTC = h.StartTime.UTC().Truncate(time.Second).Format(startDateLayout)
	}
	if h.BetLimit.Cap != nil {
		c := NewAmount(*h.BetLimit.Cap)
		doc.BetLimit.BetCap = &c
	}
	if h.HeroPlayerID != nil {
		id := *h.HeroPlayerID
		doc.HeroPlayerID = &id
	}
	for _, f := range h.Flags {
		doc.Flags = append(doc.Flags, string(f))
	}

	for _, p := range h.Players {
		doc.Players = append(doc.Players, Player{
			ID:            p.ID,
			Seat:          p.Seat,
			Name:          p.Name,
			Display:       p.Display,
			StartingStack: NewAmount(p.StartingStack),
			PlayerBounty:  NewAmount(p.Bounty),
		})
	}

	for _, r := range h.Rounds {
		round := Round{
			ID:      r.ID,
			Street:  r.Street.String(),
			Cards:   append([]string{}, r.Cards...),
			Actions: make([]Action, 0, len(r.Actions)),
		}
		for _, a := range r.Actions {
			round.Actions = append(round.Actions, Action{
				ActionNumber: a.Number,
				PlayerID:     a.PlayerID,
				Action:       a.Kind.String(),
				Amount:       NewAmount(a.Amount),
				IsAllIn:      a.AllIn,
				Cards:        a.Cards,
			})
		}
		doc.Rounds = append(doc.Rounds, round)
	}

	for _, p := range h.Pots {
		pot := Pot{
			Number:     p.Number,
			Amount:     NewAmount(p.Amount),
			Rake:       NewAmount(p.Rake),
			Jackpot:    zero,
			PlayerWins: make([]PlayerWin, 0, len(p.Wins)),
		}
		for _, w := range p.Wins {
			pot.PlayerWins = append(pot.PlayerWins, PlayerWin{
				PlayerID:        w.PlayerID,
				WinAmount:       NewAmount(w.Amount),
				CashoutAmount:   zero,
				CashoutFee:      zero,
				BonusAmount:     zero,
				ContributedRake: NewAmount(w.Rake),
			})
		}
		doc.Pots = append(doc.Pots, pot)
	}
	return doc
}
