package chainbalance

import (
	"context"
	"errors"
	"testing"
	"time"

	"balance-bench/internal/domain/model"
	"balance-bench/internal/services/chainbalance/chaintest"

	"github.com/gagliardetto/solana-go"
)

func newKeys(n int) []solana.PublicKey {
	out := make([]solana.PublicKey, n)
	for i := range out {
		out[i] = solana.NewWallet().PublicKey()
	}
	return out
}

func checkOrder(t *testing.T, got []model.WalletBalance, addrs []solana.PublicKey) {
	t.Helper()
	if len(got) != len(addrs) {
		t.Fatalf("len=%d want %d", len(got), len(addrs))
	}
	for i, a := range addrs {
		if got[i].Address != a.String() {
			t.Fatalf("#%d: want %s, got %s", i, a, got[i].Address)
		}
	}
}

func TestFetchEach_OrderFollowsInputNotCompletion(t *testing.T) {
	t.Parallel()

	addrs := newKeys(4)
	node := chaintest.NewNode(map[string]uint64{
		addrs[0].String(): 1_000_000_000,
		addrs[1].String(): 1_500_000_000,
		addrs[2].String(): 7,
		addrs[3].String(): 0,
	})
	defer node.Close()
	// 第一个地址最慢返回，结果仍应排在第一位。
	node.Delay(addrs[0].String(), 80*time.Millisecond)

	got, err := FetchEach(context.Background(), NewClient(node.URL), addrs)
	if err != nil {
		t.Fatalf("FetchEach: %v", err)
	}
	checkOrder(t, got, addrs)
	want := []uint64{1_000_000_000, 1_500_000_000, 7, 0}
	for i, w := range want {
		if got[i].Lamports != w {
			t.Fatalf("#%d lamports=%d want %d", i, got[i].Lamports, w)
		}
	}
	if node.BalanceCalls() != len(addrs) || node.BatchCalls() != 0 {
		t.Fatalf("calls balance=%d batch=%d", node.BalanceCalls(), node.BatchCalls())
	}
}

func TestFetchEach_FirstErrorFailsAll(t *testing.T) {
	t.Parallel()

	addrs := newKeys(3)
	node := chaintest.NewNode(map[string]uint64{addrs[0].String(): 5, addrs[2].String(): 6})
	defer node.Close()
	node.Fail(addrs[1].String())

	got, err := FetchEach(context.Background(), NewClient(node.URL), addrs)
	if err == nil {
		t.Fatalf("want error, got %v", got)
	}
	if got != nil {
		t.Fatalf("partial results must be discarded: %v", got)
	}
	if !errors.Is(err, ErrRPC) {
		t.Fatalf("want ErrRPC, got %v", err)
	}
}

func TestFetchBatch_UnfundedIsZero(t *testing.T) {
	t.Parallel()

	addrs := newKeys(3)
	node := chaintest.NewNode(map[string]uint64{
		addrs[0].String(): 2_000_000_000,
		addrs[2].String(): 42,
	})
	defer node.Close()

	got, err := FetchBatch(context.Background(), NewClient(node.URL), addrs)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	checkOrder(t, got, addrs)
	if got[0].Lamports != 2_000_000_000 || got[1].Lamports != 0 || got[2].Lamports != 42 {
		t.Fatalf("lamports=%v", got)
	}
	if node.BatchCalls() != 1 || node.BalanceCalls() != 0 {
		t.Fatalf("calls balance=%d batch=%d", node.BalanceCalls(), node.BatchCalls())
	}
	sent := node.LastBatch()
	for i, a := range addrs {
		if sent[i] != a.String() {
			t.Fatalf("request order #%d: %s", i, sent[i])
		}
	}
}

func TestFetchBatch_RequestError(t *testing.T) {
	t.Parallel()

	node := chaintest.NewNode(nil)
	defer node.Close()
	node.FailAll()

	_, err := FetchBatch(context.Background(), NewClient(node.URL), newKeys(2))
	if !errors.Is(err, ErrRPC) {
		t.Fatalf("want ErrRPC, got %v", err)
	}
}

func TestStrategies_AgreeOnFundedAccounts(t *testing.T) {
	t.Parallel()

	addrs := newKeys(5)
	accounts := map[string]uint64{}
	for i, a := range addrs {
		accounts[a.String()] = uint64(i+1) * 123_456_789
	}
	node := chaintest.NewNode(accounts)
	defer node.Close()
	c := NewClient(node.URL)

	each, err := FetchEach(context.Background(), c, addrs)
	if err != nil {
		t.Fatalf("FetchEach: %v", err)
	}
	batch, err := FetchBatch(context.Background(), c, addrs)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	for i := range addrs {
		if each[i] != batch[i] {
			t.Fatalf("#%d each=%v batch=%v", i, each[i], batch[i])
		}
	}
}

func TestFetch_EmptyListMakesNoRequest(t *testing.T) {
	t.Parallel()

	node := chaintest.NewNode(nil)
	defer node.Close()
	c := NewClient(node.URL)

	each, err := FetchEach(context.Background(), c, nil)
	if err != nil || each == nil || len(each) != 0 {
		t.Fatalf("FetchEach: %v %#v", err, each)
	}
	batch, err := FetchBatch(context.Background(), c, nil)
	if err != nil || batch == nil || len(batch) != 0 {
		t.Fatalf("FetchBatch: %v %#v", err, batch)
	}
	if node.Calls() != 0 {
		t.Fatalf("calls=%d", node.Calls())
	}
}
