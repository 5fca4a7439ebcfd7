package economy

import "testing"

func TestMarketCapSteps(t *testing.T) {
	m := DefaultMarketRules()
	cases := []struct {
		pop  float64
		want float64
	}{
		{0, 20},
		{99, 20},
		{100, 30},
		{250, 40},
		{1000, 120},
	}
	for _, tc := range cases {
		if got := m.MarketCap(tc.pop); got != tc.want {
			t.Errorf("MarketCap(%v) = %v, expected %v", tc.pop, got, tc.want)
		}
	}
}

func TestReplenishBuyableComposes(t *testing.T) {
	rules := DefaultMarketRules()
	a := testLedger(0)
	b := testLedger(0)

	// Replaying four calls in a batch must match four calls spread over time.
	for i := 0; i < 4; i++ {
		a.ReplenishBuyable(rules, 150)
	}
	for i := 0; i < 2; i++ {
		b.ReplenishBuyable(rules, 150)
	}
	for i := 0; i < 2; i++ {
		b.ReplenishBuyable(rules, 150)
	}

	for _, rt := range a.Types() {
		if a.Get(rt).BuyableAmount != b.Get(rt).BuyableAmount {
			t.Fatalf("%s buyable differs: %f vs %f", rt, a.Get(rt).BuyableAmount, b.Get(rt).BuyableAmount)
		}
	}
	if got := a.Get(Iron).BuyableAmount; got != 30 {
		t.Fatalf("iron buyable = %f, expected cap 30", got)
	}
	if got := a.Get(Population).BuyableAmount; got != 0 {
		t.Fatalf("special resources must not become buyable, got %f", got)
	}
}

func TestAutoTrade(t *testing.T) {
	l := testLedger(1000)
	food := l.Get(Food)
	food.Amount = 10
	food.BuyableAmount = 100
	food.AutoBuyBelow = 0.3

	wood := l.Get(Wood)
	wood.Amount = 90
	wood.AutoSellAbove = 0.5

	bought, sold := l.AutoTrade()
	if bought[Food] != 20 {
		t.Errorf("bought food = %f, expected 20", bought[Food])
	}
	if sold[Wood] != 40 {
		t.Errorf("sold wood = %f, expected 40", sold[Wood])
	}
	// 1000 - 20*3 + 40*1.5
	if got := l.Flunds().Amount; got != 1000 {
		t.Errorf("flunds = %f, expected 1000", got)
	}
}

func TestBuyRespectsCurrency(t *testing.T) {
	l := testLedger(12)
	l.Get(Iron).BuyableAmount = 50
	if got := l.Buy(Iron, 10); got != 2 {
		t.Fatalf("bought %f, expected 2", got)
	}
	if got := l.Flunds().Amount; got != 0 {
		t.Fatalf("flunds = %f, expected 0", got)
	}
	if got := l.Buy(Population, 1); got != 0 {
		t.Fatalf("special resource bought: %f", got)
	}
}
