package benchrun

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"balance-bench/internal/adapters/walletconfig"
	"balance-bench/internal/domain/model"
	"balance-bench/internal/platform/hash"
	"balance-bench/internal/platform/id"
	"balance-bench/internal/services/chainbalance"

	"github.com/gagliardetto/solana-go"
)

// Recorder 持久化一次运行结果（可选）。
type Recorder interface {
	SaveComparison(ctx context.Context, cmp *model.Comparison) error
}

type Options struct {
	ConfigPath string
	// Recorder 为 nil 时不落库。
	Recorder Recorder
	// NewClient 为 nil 时使用 chainbalance.NewClient。
	NewClient func(rpcURL string) chainbalance.Client
}

// Run 执行完整流程：读配置 -> 校验地址 -> 计时执行 each -> 计时执行 batch。
//
// 任一步失败立即返回，不重试。地址校验在任何网络请求之前完成。
func Run(ctx context.Context, opts Options) (*model.Comparison, error) {
	cfg, err := walletconfig.NewLoader(opts.ConfigPath).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	addrs, err := chainbalance.ParseAddresses(cfg.Wallets)
	if err != nil {
		return nil, fmt.Errorf("validate wallets: %w", err)
	}

	newClient := opts.NewClient
	if newClient == nil {
		newClient = func(rpcURL string) chainbalance.Client { return chainbalance.NewClient(rpcURL) }
	}
	client := newClient(cfg.RPCURL)

	startedAt := time.Now()
	each, batch, err := Compare(ctx, client, addrs)
	if err != nil {
		return nil, err
	}

	cmp := &model.Comparison{
		RunID:        id.New("run"),
		RPCURL:       cfg.RPCURL,
		ConfigPath:   cfg.Path,
		ConfigSHA256: cfg.SHA256,
		Wallets:      cfg.Wallets,
		Each:         each,
		Batch:        batch,
		Mismatches:   model.Diff(each.Balances, batch.Balances),
		StartedAt:    startedAt.Unix(),
	}

	if opts.Recorder != nil {
		if err := opts.Recorder.SaveComparison(ctx, cmp); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}
	return cmp, nil
}

// Compare 顺序执行两种方式并分别计时；batch 在 each 的耗时记录之后才开始。
func Compare(ctx context.Context, c chainbalance.Client, addrs []solana.PublicKey) (each, batch model.StrategyResult, err error) {
	start := time.Now()
	eachBalances, err := chainbalance.FetchEach(ctx, c, addrs)
	if err != nil {
		return each, batch, fmt.Errorf("%s: %w", strings.ToLower(model.StrategyEach.Label()), err)
	}
	each = model.StrategyResult{
		Strategy: model.StrategyEach,
		Duration: time.Since(start),
		Balances: eachBalances,
		Digest:   Digest(eachBalances),
	}

	start = time.Now()
	batchBalances, err := chainbalance.FetchBatch(ctx, c, addrs)
	if err != nil {
		return each, batch, fmt.Errorf("%s: %w", strings.ToLower(model.StrategyBatch.Label()), err)
	}
	batch = model.StrategyResult{
		Strategy: model.StrategyBatch,
		Duration: time.Since(start),
		Balances: batchBalances,
		Digest:   Digest(batchBalances),
	}
	return each, batch, nil
}

// Digest 对 address=lamports 列表（保持顺序）计算 SHA-256。
func Digest(balances []model.WalletBalance) string {
	parts := make([]string, 0, len(balances))
	for _, b := range balances {
		parts = append(parts, b.Address+"="+strconv.FormatUint(b.Lamports, 10))
	}
	return hash.Text(parts...)
}
