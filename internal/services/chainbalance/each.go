package chainbalance

import (
	"context"
	"fmt"

	"balance-bench/internal/domain/model"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"
)

// FetchEach 为每个地址单独发一次 getBalance，全部并发发出后统一等待。
//
// 结果按输入顺序写入对应下标，与请求完成先后无关。
// 任意一个请求失败则整体失败，已完成的结果一并丢弃。
func FetchEach(ctx context.Context, c Client, addrs []solana.PublicKey) ([]model.WalletBalance, error) {
	out := make([]model.WalletBalance, len(addrs))
	if len(addrs) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addrs {
		g.Go(func() error {
			res, err := c.GetBalance(gctx, addr, DefaultCommitment)
			if err != nil {
				return fmt.Errorf("%w: getBalance %s: %w", ErrRPC, addr, err)
			}
			if res == nil {
				return fmt.Errorf("%w: getBalance %s: empty result", ErrRPC, addr)
			}
			out[i] = model.WalletBalance{Address: addr.String(), Lamports: res.Value}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
