package parser

// CloneHand returns a fully independent deep copy of h.
// It is exported so that packages that keep hands around (e.g. persistence)
// never share slices with the compiler's output.
func CloneHand(h *Hand) *Hand {
	if h == nil {
		return nil
	}
	out := *h
	if h.HeroPlayerID != nil {
		id := *h.HeroPlayerID
		out.HeroPlayerID = &id
	}
	if h.BetLimit.Cap != nil {
		bc := *h.BetLimit.Cap
		out.BetLimit.Cap = &bc
	}
	out.Flags = append([]Flag(nil), h.Flags...)
	out.Players = append([]Player(nil), h.Players...)
	out.Anomalies = append([]HandAnomaly(nil), h.Anomalies...)
	out.Refunds = append([]Refund(nil), h.Refunds...)

	out.Rounds = make([]Round, len(h.Rounds))
	for i, r := range h.Rounds {
		out.Rounds[i] = cloneRound(r)
	}
	out.Pots = make([]Pot, len(h.Pots))
	for i, p := range h.Pots {
		p.Wins = append([]PlayerWin(nil), p.Wins...)
		out.Pots[i] = p
	}
	return &out
}

func cloneRound(r Round) Round {
	r.Cards = append([]string(nil), r.Cards...)
	actions := make([]Action, len(r.Actions))
	for i, a := range r.Actions {
		a.Cards = append([]string(nil), a.Cards...)
		actions[i] = a
	}
	r.Actions = actions
	return r
}
