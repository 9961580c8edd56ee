package model

import "time"

// LamportsPerSOL 是 SOL 与最小单位 lamport 的固定换算系数。
const LamportsPerSOL uint64 = 1_000_000_000

// Strategy 表示一种余额查询方式。
type Strategy string

const (
	// StrategyEach 每个地址一次 getBalance，全部并发发出后统一等待（输出中的 Method 1）。
	StrategyEach Strategy = "each"
	// StrategyBatch 一次 getMultipleAccounts 批量拉取全部账户（输出中的 Method 2）。
	StrategyBatch Strategy = "batch"
)

// Label 返回终端输出里使用的方法编号。
func (s Strategy) Label() string {
	switch s {
	case StrategyEach:
		return "Method 1"
	case StrategyBatch:
		return "Method 2"
	default:
		return string(s)
	}
}

// WalletBalance 是单个地址在某一策略下的查询结果。
type WalletBalance struct {
	Address  string `json:"address"`  // base58 展示串
	Lamports uint64 `json:"lamports"` // 原始余额（最小单位）
}

// StrategyResult 是一次策略执行的耗时与结果，Balances 与输入地址顺序一致。
type StrategyResult struct {
	Strategy Strategy        `json:"strategy"`
	Duration time.Duration   `json:"duration_ns"`
	Balances []WalletBalance `json:"balances"`
	Digest   string          `json:"digest"`
}

// Mismatch 记录两种策略在同一位置上给出不同余额的情况。
// 未开户地址在 batch 下记为 0，这属于预期内的差异来源之一。
type Mismatch struct {
	Index         int    `json:"index"`
	Address       string `json:"address"`
	EachLamports  uint64 `json:"each_lamports"`
	BatchLamports uint64 `json:"batch_lamports"`
}

// Comparison 是一次完整运行（两种策略）的汇总。
type Comparison struct {
	RunID        string         `json:"run_id"`
	RPCURL       string         `json:"rpc_url"`
	ConfigPath   string         `json:"config_path,omitempty"`
	ConfigSHA256 string         `json:"config_sha256,omitempty"`
	Wallets      []string       `json:"wallets"`
	Each         StrategyResult `json:"each"`
	Batch        StrategyResult `json:"batch"`
	Mismatches   []Mismatch     `json:"mismatches,omitempty"`
	StartedAt    int64          `json:"started_at"`
}

// RunInfo 是 bench_runs 表的列表视图。
type RunInfo struct {
	RunID         string `json:"run_id"`
	RPCURL        string `json:"rpc_url"`
	ConfigSHA256  string `json:"config_sha256"`
	WalletCount   int    `json:"wallet_count"`
	EachDuration  int64  `json:"each_duration_ns"`
	BatchDuration int64  `json:"batch_duration_ns"`
	MismatchCount int    `json:"mismatch_count"`
	StartedAt     int64  `json:"started_at"`
}

// Diff 按位置比较两种策略的结果，返回余额不一致的位置。
// 两边长度不同时只比较共同部分。
func Diff(each, batch []WalletBalance) []Mismatch {
	n := len(each)
	if len(batch) < n {
		n = len(batch)
	}
	var out []Mismatch
	for i := 0; i < n; i++ {
		if each[i].Lamports == batch[i].Lamports {
			continue
		}
		out = append(out, Mismatch{
			Index:         i,
			Address:       each[i].Address,
			EachLamports:  each[i].Lamports,
			BatchLamports: batch[i].Lamports,
		})
	}
	return out
}
