// Package ohh renders compiled hands as Open Hand History documents.
package ohh

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a money value that marshals as a JSON number with exactly two
// decimal places.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount { return Amount{d} }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("amount %s: %w", data, err)
	}
	a.Decimal = d
	return nil
}

// Envelope is the top-level object of every document: {"ohh": {...}}.
type Envelope struct {
	OHH Document `json:"ohh"`
}

type Document struct {
	SpecVersion     string   `json:"spec_version"`
	InternalVersion string   `json:"internal_version"`
	NetworkName     string   `json:"network_name"`
	SiteName        string   `json:"site_name"`
	GameType        string   `json:"game_type"`
	TableName       string   `json:"table_name"`
	TableSize       int      `json:"table_size"`
	GameNumber      string   `json:"game_number"`
	StartDateUTC    string   `json:"start_date_utc"`
	Currency        string   `json:"currency"`
	AnteAmount      Amount   `json:"ante_amount"`
	SmallBlind      Amount   `json:"small_blind_amount"`
	BigBlind        Amount   `json:"big_blind_amount"`
	DealerSeat      int      `json:"dealer_seat"`
	BetLimit        BetLimit `json:"bet_limit"`
	HeroPlayerID    *int     `json:"hero_player_id"`
	Flags           []string `json:"flags"`
	Players         []Player `json:"players"`
	Rounds          []Round  `json:"rounds"`
	Pots            []Pot    `json:"pots"`
}

type BetLimit struct {
	BetType string  `json:"bet_type"`
	BetCap  *Amount `json:"bet_cap"`
}

type Player struct {
	ID            int    `json:"id"`
	Seat          int    `json:"seat"`
	Name          string `json:"name"`
	Display       string `json:"display"`
	StartingStack Amount `json:"starting_stack"`
	PlayerBounty  Amount `json:"player_bounty"`
}

type Round struct {
	ID      int      `json:"id"`
	Street  string   `json:"street"`
	Cards   []string `json:"cards"`
	Actions []Action `json:"actions"`
}

type Action struct {
	ActionNumber int      `json:"action_number"`
	PlayerID     int      `json:"player_id"`
	Action       string   `json:"action"`
	Amount       Amount   `json:"amount"`
	IsAllIn      bool     `json:"is_allin"`
	Cards        []string `json:"cards,omitempty"`
}

type Pot struct {
	Number     int         `json:"number"`
	Amount     Amount      `json:"amount"`
	Rake       Amount      `json:"rake"`
	Jackpot    Amount      `json:"jackpot"`
	PlayerWins []PlayerWin `json:"player_wins"`
}

type PlayerWin struct {
	PlayerID        int    `json:"player_id"`
	WinAmount       Amount `json:"win_amount"`
	CashoutAmount   Amount `json:"cashout_amount"`
	CashoutFee      Amount `json:"cashout_fee"`
	BonusAmount     Amount `json:"bonus_amount"`
	ContributedRake Amount `json:"contributed_rake"`
}
