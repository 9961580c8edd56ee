package model

import "testing"

func TestDiff(t *testing.T) {
	t.Parallel()

	each := []WalletBalance{{"a", 1}, {"b", 2}, {"c", 3}}
	batch := []WalletBalance{{"a", 1}, {"b", 0}, {"c", 3}}
	got := Diff(each, batch)
	if len(got) != 1 || got[0].Index != 1 || got[0].Address != "b" || got[0].EachLamports != 2 || got[0].BatchLamports != 0 {
		t.Fatalf("Diff=%+v", got)
	}
	if d := Diff(each, each); len(d) != 0 {
		t.Fatalf("identical results should not differ: %+v", d)
	}
	if d := Diff(nil, batch); len(d) != 0 {
		t.Fatalf("empty side: %+v", d)
	}
}

func TestStrategyLabel(t *testing.T) {
	t.Parallel()

	if StrategyEach.Label() != "Method 1" || StrategyBatch.Label() != "Method 2" {
		t.Fatalf("labels: %s / %s", StrategyEach.Label(), StrategyBatch.Label())
	}
}
