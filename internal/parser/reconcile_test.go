package parser

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestReconcileAgreesAtTwoDecimals(t *testing.T) {
	t.Parallel()

	h := &Hand{GameNumber: "1", Pots: []Pot{{Amount: dec("10.004")}, {Amount: dec("5")}}}
	if d := Reconcile(h, dec("15.001")); d != nil {
		t.Fatalf("expected agreement, got %v", d)
	}
}

func TestReconcileReportsDifference(t *testing.T) {
	t.Parallel()

	h := &Hand{GameNumber: "1663117201000", Pots: []Pot{{Amount: dec("30")}}}
	d := Reconcile(h, dec("20"))
	if d == nil {
		t.Fatal("expected a diagnostic")
	}
	msg := d.Error()
	for _, want := range []string{"1663117201000", "20.00", "30.00", "-10.00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("diagnostic %q does not mention %q", msg, want)
		}
	}
	if Reconcile(nil, decimal.Zero) != nil {
		t.Fatal("nil hand must reconcile")
	}
}

func TestContributionsMatchCompiledTotals(t *testing.T) {
	t.Parallel()

	hands := compileFixture(t, tableLog, "Alice")
	first := Contributions(hands[0], dec("200"))
	assertAmount(t, "hand 1", first, hands[0].Contributed.String())
	second := Contributions(hands[1], decimal.Zero)
	assertAmount(t, "hand 2", second, hands[1].Contributed.String())
}

func TestContributionsSkipDeadPosts(t *testing.T) {
	t.Parallel()

	h := &Hand{Rounds: []Round{{Actions: []Action{
		{Kind: ActionPostDead, Amount: dec("5")},
		{Kind: ActionPostBB, Amount: dec("10")},
		{Kind: ActionCall, Amount: dec("10")},
		{Kind: ActionAddedChips, Amount: dec("100")},
	}}}}
	assertAmount(t, "contributions", Contributions(h, decimal.Zero), "20")
}

func TestCloneHandIsIndependent(t *testing.T) {
	t.Parallel()

	orig := compileFixture(t, tableLog, "Alice")[0]
	cp := CloneHand(orig)

	*cp.HeroPlayerID = 2
	cp.Players[0].Name = "changed"
	cp.Rounds[0].Actions[0].Cards[0] = "2c"
	cp.Rounds[1].Cards[0] = "3c"
	cp.Pots[0].Wins[0].PlayerID = 2
	cp.Flags = append(cp.Flags, FlagRunItTwice)
	cp.Refunds = append(cp.Refunds, Refund{PlayerID: 0})

	if *orig.HeroPlayerID != 0 || orig.Players[0].Name != "Alice" {
		t.Fatal("clone shares player data with the original")
	}
	if orig.Rounds[0].Actions[0].Cards[0] != "As" || orig.Rounds[1].Cards[0] != "Ah" {
		t.Fatal("clone shares round data with the original")
	}
	if orig.Pots[0].Wins[0].PlayerID != 1 || orig.HasFlag(FlagRunItTwice) || len(orig.Refunds) != 1 {
		t.Fatal("clone shares pot or flag data with the original")
	}
	if CloneHand(nil) != nil {
		t.Fatal("CloneHand(nil) must be nil")
	}
}
