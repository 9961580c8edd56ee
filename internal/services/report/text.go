package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"balance-bench/internal/domain/model"
	"balance-bench/internal/services/chainbalance"
)

// Print 把两种方式的耗时与余额写到 w（通常是 stdout）。
//
// 先输出两行耗时，再依次输出 Method 1、Method 2 的逐地址余额（SOL）。
func Print(w io.Writer, cmp *model.Comparison) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s took: %s\n", cmp.Each.Strategy.Label(), cmp.Each.Duration)
	fmt.Fprintf(bw, "%s took: %s\n", cmp.Batch.Strategy.Label(), cmp.Batch.Duration)

	for _, res := range []model.StrategyResult{cmp.Each, cmp.Batch} {
		fmt.Fprintf(bw, "\nResults from %s:\n", strings.ToLower(res.Strategy.Label()))
		for _, b := range res.Balances {
			fmt.Fprintf(bw, "Wallet: %s, Balance: %s SOL\n", b.Address, chainbalance.FormatSOL(b.Lamports))
		}
	}
	return bw.Flush()
}

