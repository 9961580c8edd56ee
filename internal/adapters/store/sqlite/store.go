package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"balance-bench/internal/domain/model"

	_ "modernc.org/sqlite"
)

// Open 打开（必要时创建）SQLite 文件并执行迁移。
// 单连接 + busy_timeout，避免并发写时出现 SQLITE_BUSY。
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign_keys: %w", err)
	}
	if err := NewMigrator(db).Up(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return db, nil
}

// Store 封装运行记录的读写。
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetSchemaMetaValue 查询 schema_meta 表指定 key 的 value。
func (s *Store) GetSchemaMetaValue(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM schema_meta WHERE key = ? LIMIT 1`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query schema_meta %s: %w", key, err)
	}
	return v, nil
}

// SaveComparison 在一个事务里写入运行摘要与两种策略的逐地址余额。
func (s *Store) SaveComparison(ctx context.Context, cmp *model.Comparison) (err error) {
	if cmp == nil || cmp.RunID == "" {
		return errors.New("save comparison: run_id is required")
	}
	startedAt := cmp.StartedAt
	if startedAt == 0 {
		startedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save comparison: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bench_runs(
			run_id, rpc_url, config_path, config_sha256, wallet_count,
			each_duration_ns, batch_duration_ns, each_digest, batch_digest,
			mismatch_count, started_at
		)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cmp.RunID, cmp.RPCURL, cmp.ConfigPath, cmp.ConfigSHA256, len(cmp.Wallets),
		int64(cmp.Each.Duration), int64(cmp.Batch.Duration), cmp.Each.Digest, cmp.Batch.Digest,
		len(cmp.Mismatches), startedAt)
	if err != nil {
		return fmt.Errorf("insert bench_run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bench_balances(run_id, strategy, position, address, lamports)
		VALUES(?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert bench_balances: %w", err)
	}
	defer stmt.Close()

	for _, res := range []model.StrategyResult{cmp.Each, cmp.Batch} {
		for i, b := range res.Balances {
			// lamports 可能超过 int64，按十进制文本存。
			if _, err = stmt.ExecContext(ctx, cmp.RunID, string(res.Strategy), i, b.Address, strconv.FormatUint(b.Lamports, 10)); err != nil {
				return fmt.Errorf("insert bench_balance %s #%d: %w", res.Strategy, i, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save comparison: %w", err)
	}
	return nil
}

// ListRuns 按开始时间倒序列出最近的运行记录。
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, rpc_url, COALESCE(config_sha256, ''), wallet_count,
			each_duration_ns, batch_duration_ns, mismatch_count, started_at
		FROM bench_runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query bench_runs: %w", err)
	}
	defer rows.Close()

	out := []model.RunInfo{}
	for rows.Next() {
		var r model.RunInfo
		if err := rows.Scan(&r.RunID, &r.RPCURL, &r.ConfigSHA256, &r.WalletCount,
			&r.EachDuration, &r.BatchDuration, &r.MismatchCount, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan bench_run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bench_runs: %w", err)
	}
	return out, nil
}

// GetComparison 读取一次运行的完整结果；不存在时返回 (nil, nil)。
// Mismatches 由两份余额重新计算，不单独落库。
func (s *Store) GetComparison(ctx context.Context, runID string) (*model.Comparison, error) {
	cmp := &model.Comparison{
		Each:  model.StrategyResult{Strategy: model.StrategyEach, Balances: []model.WalletBalance{}},
		Batch: model.StrategyResult{Strategy: model.StrategyBatch, Balances: []model.WalletBalance{}},
	}
	var eachNS, batchNS int64
	var walletCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, rpc_url, COALESCE(config_path, ''), COALESCE(config_sha256, ''), wallet_count,
			each_duration_ns, batch_duration_ns, COALESCE(each_digest, ''), COALESCE(batch_digest, ''), started_at
		FROM bench_runs
		WHERE run_id = ?
	`, runID).Scan(&cmp.RunID, &cmp.RPCURL, &cmp.ConfigPath, &cmp.ConfigSHA256, &walletCount,
		&eachNS, &batchNS, &cmp.Each.Digest, &cmp.Batch.Digest, &cmp.StartedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query bench_run %s: %w", runID, err)
	}
	cmp.Each.Duration = time.Duration(eachNS)
	cmp.Batch.Duration = time.Duration(batchNS)

	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy, address, lamports
		FROM bench_balances
		WHERE run_id = ?
		ORDER BY strategy, position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query bench_balances %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var strategy, addr, raw string
		if err := rows.Scan(&strategy, &addr, &raw); err != nil {
			return nil, fmt.Errorf("scan bench_balance: %w", err)
		}
		lamports, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse lamports %q: %w", raw, err)
		}
		b := model.WalletBalance{Address: addr, Lamports: lamports}
		switch model.Strategy(strategy) {
		case model.StrategyEach:
			cmp.Each.Balances = append(cmp.Each.Balances, b)
		case model.StrategyBatch:
			cmp.Batch.Balances = append(cmp.Batch.Balances, b)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bench_balances: %w", err)
	}

	cmp.Wallets = make([]string, 0, walletCount)
	for _, b := range cmp.Each.Balances {
		cmp.Wallets = append(cmp.Wallets, b.Address)
	}
	cmp.Mismatches = model.Diff(cmp.Each.Balances, cmp.Batch.Balances)
	return cmp, nil
}
