package chainbalance

import (
	"context"
	"fmt"

	"balance-bench/internal/domain/model"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// FetchBatch 用一次 getMultipleAccounts 拉取全部地址的账户信息。
//
// 节点对未开户地址返回 null，这里按 0 余额处理，不区分“不存在”和“余额为 0”。
func FetchBatch(ctx context.Context, c Client, addrs []solana.PublicKey) ([]model.WalletBalance, error) {
	out := make([]model.WalletBalance, len(addrs))
	if len(addrs) == 0 {
		return out, nil
	}

	// 只需要 lamports：dataSlice 长度为 0，避免传回账户数据；
	// base64 编码避免默认 base58 对大账户报错。
	var zero uint64
	res, err := c.GetMultipleAccountsWithOpts(ctx, addrs, &rpc.GetMultipleAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: DefaultCommitment,
		DataSlice:  &rpc.DataSlice{Offset: &zero, Length: &zero},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: getMultipleAccounts: %w", ErrRPC, err)
	}
	if res == nil || len(res.Value) != len(addrs) {
		got := 0
		if res != nil {
			got = len(res.Value)
		}
		return nil, fmt.Errorf("%w: getMultipleAccounts: want %d accounts, got %d", ErrRPC, len(addrs), got)
	}

	for i, acc := range res.Value {
		var lamports uint64
		if acc != nil {
			lamports = acc.Lamports
		}
		out[i] = model.WalletBalance{Address: addrs[i].String(), Lamports: lamports}
	}
	return out, nil
}
