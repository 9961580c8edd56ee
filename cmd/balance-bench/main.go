package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sqliteadapter "balance-bench/internal/adapters/store/sqlite"
	"balance-bench/internal/app"
	"balance-bench/internal/services/benchpdf"
	"balance-bench/internal/services/benchrun"
	"balance-bench/internal/services/report"
)

// CLI 入口。所有错误统一输出到 stderr 并返回非 0 状态码。
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run 是一级命令路由。不带参数时读取 ./config.yaml 执行一次对比并打印结果。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return runCompare(ctx, nil, stdout, stderr)
	}

	switch args[0] {
	case "compare":
		return runCompare(ctx, args[1:], stdout, stderr)
	case "history":
		return runHistory(ctx, args[1:], stdout)
	case "report":
		return runReport(ctx, args[1:], stdout)
	case "migrate":
		return runMigrate(ctx, args[1:], stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// runCompare 执行对比（读配置 -> 校验 -> 两种方式计时 -> 打印），可选落库与导出 PDF。
func runCompare(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", cfg.ConfigPath, "wallet config file (.yaml/.yml/.json/.plist)")
	dbPath := fs.String("db", "", "sqlite database path; empty disables run history")
	pdfPath := fs.String("pdf", "", "write a PDF comparison report to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := benchrun.Options{ConfigPath: *configPath}
	if strings.TrimSpace(*dbPath) != "" {
		db, err := sqliteadapter.Open(ctx, *dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Recorder = sqliteadapter.NewStore(db)
	}

	cmp, err := benchrun.Run(ctx, opts)
	if err != nil {
		return err
	}
	if err := report.Print(stdout, cmp); err != nil {
		return fmt.Errorf("print results: %w", err)
	}

	if opts.Recorder != nil {
		fmt.Fprintf(stderr, "run recorded: run_id=%s db=%s\n", cmp.RunID, *dbPath)
	}
	if strings.TrimSpace(*pdfPath) != "" {
		res, err := benchpdf.Generate(cmp, *pdfPath)
		if err != nil {
			return fmt.Errorf("export pdf: %w", err)
		}
		fmt.Fprintf(stderr, "pdf=%s pdf_sha256=%s\n", res.PDFPath, res.PDFSHA256)
		if len(res.Warnings) > 0 {
			fmt.Fprintf(stderr, "warnings=%s\n", strings.Join(res.Warnings, " | "))
		}
	}
	return nil
}

// runHistory 列出最近的运行记录。
func runHistory(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	dbPath := fs.String("db", cfg.DBPath, "sqlite database path")
	limit := fs.Int("limit", 20, "max runs to list")
	asJSON := fs.Bool("json", false, "print as json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := sqliteadapter.Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := sqliteadapter.NewStore(db).ListRuns(ctx, *limit)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(stdout, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%s  %s  wallets=%d method1=%s method2=%s mismatches=%d rpc=%s\n",
			time.Unix(r.StartedAt, 0).Format("2006-01-02 15:04:05"),
			r.RunID,
			r.WalletCount,
			time.Duration(r.EachDuration),
			time.Duration(r.BatchDuration),
			r.MismatchCount,
			r.RPCURL,
		)
	}
	return nil
}

// runReport 为已记录的运行生成 PDF。
func runReport(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	dbPath := fs.String("db", cfg.DBPath, "sqlite database path")
	runID := fs.String("run-id", "", "run id (required)")
	out := fs.String("out", "", "output pdf path (default: <report-dir>/<run-id>_balances.pdf)")
	reportDir := fs.String("report-dir", cfg.ReportDir, "default report directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := strings.TrimSpace(*runID)
	if id == "" {
		return fmt.Errorf("--run-id is required")
	}

	db, err := sqliteadapter.Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	cmp, err := sqliteadapter.NewStore(db).GetComparison(ctx, id)
	if err != nil {
		return err
	}
	if cmp == nil {
		return fmt.Errorf("run not found: %s", id)
	}

	path := strings.TrimSpace(*out)
	if path == "" {
		path = benchpdf.DefaultPath(*reportDir, id)
	}
	res, err := benchpdf.Generate(cmp, path)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "pdf report completed")
	fmt.Fprintf(stdout, "run_id=%s\n", id)
	fmt.Fprintf(stdout, "pdf=%s\n", res.PDFPath)
	fmt.Fprintf(stdout, "pdf_sha256=%s\n", res.PDFSHA256)
	if len(res.Warnings) > 0 {
		fmt.Fprintf(stdout, "warnings=%s\n", strings.Join(res.Warnings, " | "))
	}
	return nil
}

// runMigrate 执行 SQLite 迁移，确保数据库结构完整。
func runMigrate(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := app.DefaultConfig()

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", cfg.DBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := sqliteadapter.Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(stdout, "migrations applied successfully: db=%s\n", *dbPath)
	return nil
}

// printUsage 输出命令帮助。
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  balance-bench                      (reads ./config.yaml, compares both methods)")
	fmt.Fprintln(w, "  balance-bench compare [--config config.yaml] [--db data/bench.db] [--pdf out.pdf]")
	fmt.Fprintln(w, "  balance-bench history [--db data/bench.db] [--limit 20] [--json]")
	fmt.Fprintln(w, "  balance-bench report --run-id RUN_ID [--db data/bench.db] [--out path] [--report-dir data/reports]")
	fmt.Fprintln(w, "  balance-bench migrate [--db data/bench.db]")
}

func printJSON(w io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(raw))
	return nil
}
