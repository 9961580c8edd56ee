package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"balance-bench/internal/domain/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "bench.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestMigrator_UpIsRepeatable(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "bench.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := NewMigrator(db).Up(ctx); err != nil {
		t.Fatalf("second Up: %v", err)
	}
	v, err := NewStore(db).GetSchemaMetaValue(ctx, "schema_version")
	if err != nil {
		t.Fatalf("GetSchemaMetaValue: %v", err)
	}
	if v != "1" {
		t.Fatalf("schema_version=%q", v)
	}
}

func TestStore_SaveAndGetComparison(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	cmp := &model.Comparison{
		RunID:        "run_1",
		RPCURL:       "http://127.0.0.1:8899",
		ConfigPath:   "config.yaml",
		ConfigSHA256: "abc",
		Wallets:      []string{"W1", "W2"},
		Each: model.StrategyResult{
			Strategy: model.StrategyEach,
			Duration: 120 * time.Millisecond,
			Balances: []model.WalletBalance{{Address: "W1", Lamports: 18446744073709551615}, {Address: "W2", Lamports: 5}},
			Digest:   "d1",
		},
		Batch: model.StrategyResult{
			Strategy: model.StrategyBatch,
			Duration: 30 * time.Millisecond,
			Balances: []model.WalletBalance{{Address: "W1", Lamports: 18446744073709551615}, {Address: "W2", Lamports: 0}},
			Digest:   "d2",
		},
		StartedAt: 1700000000,
	}
	cmp.Mismatches = model.Diff(cmp.Each.Balances, cmp.Batch.Balances)

	if err := s.SaveComparison(ctx, cmp); err != nil {
		t.Fatalf("SaveComparison: %v", err)
	}

	got, err := s.GetComparison(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetComparison: %v", err)
	}
	if got == nil {
		t.Fatalf("run not found")
	}
	if got.RPCURL != cmp.RPCURL || got.ConfigSHA256 != "abc" || got.StartedAt != 1700000000 {
		t.Fatalf("overview=%+v", got)
	}
	if got.Each.Duration != 120*time.Millisecond || got.Batch.Duration != 30*time.Millisecond {
		t.Fatalf("durations each=%s batch=%s", got.Each.Duration, got.Batch.Duration)
	}
	if len(got.Each.Balances) != 2 || got.Each.Balances[0].Lamports != 18446744073709551615 || got.Each.Balances[1].Address != "W2" {
		t.Fatalf("each=%+v", got.Each.Balances)
	}
	if len(got.Batch.Balances) != 2 || got.Batch.Balances[1].Lamports != 0 {
		t.Fatalf("batch=%+v", got.Batch.Balances)
	}
	if len(got.Wallets) != 2 || got.Wallets[0] != "W1" {
		t.Fatalf("wallets=%v", got.Wallets)
	}
	if len(got.Mismatches) != 1 || got.Mismatches[0].Index != 1 {
		t.Fatalf("mismatches=%+v", got.Mismatches)
	}

	missing, err := s.GetComparison(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing run: %v %+v", err, missing)
	}
}

func TestStore_ListRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i, id := range []string{"run_a", "run_b", "run_c"} {
		cmp := &model.Comparison{
			RunID:     id,
			RPCURL:    "http://x",
			Each:      model.StrategyResult{Strategy: model.StrategyEach},
			Batch:     model.StrategyResult{Strategy: model.StrategyBatch},
			StartedAt: int64(1000 + i),
		}
		if err := s.SaveComparison(ctx, cmp); err != nil {
			t.Fatalf("SaveComparison %s: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run_c" || runs[1].RunID != "run_b" {
		t.Fatalf("runs=%+v", runs)
	}

	if err := s.SaveComparison(ctx, &model.Comparison{RunID: "run_a", RPCURL: "http://x"}); err == nil {
		t.Fatalf("duplicate run_id should fail")
	}
}
