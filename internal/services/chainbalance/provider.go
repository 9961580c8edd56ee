package chainbalance

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrRPC 包装所有节点请求失败（连接、超时、协议层错误）。
var ErrRPC = errors.New("rpc request failed")

// Client 是两种查询方式用到的最小 Solana RPC 接口，*rpc.Client 直接满足。
//
// 两个方法都是只读查询，同一个 Client 可被多个 goroutine 并发使用。
type Client interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error)
}

// NewClient 创建指向 rpcURL 的 JSON-RPC 客户端。不做重试、不做限流。
func NewClient(rpcURL string) *rpc.Client {
	return rpc.New(rpcURL)
}

// DefaultCommitment 与 Solana 官方客户端默认值保持一致。
const DefaultCommitment = rpc.CommitmentFinalized
