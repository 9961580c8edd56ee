package chainbalance

import (
	"math/big"
	"strconv"
	"strings"

	"balance-bench/internal/domain/model"
)

// SOL 把 lamports 换算为浮点 SOL（整数除以 1e9）。
func SOL(lamports uint64) float64 {
	return float64(lamports) / float64(model.LamportsPerSOL)
}

// FormatSOL 输出终端展示用的浮点值：最短精确小数，不用科学计数法。
// 1000000000 -> "1"，1500000000 -> "1.5"。
func FormatSOL(lamports uint64) string {
	return strconv.FormatFloat(SOL(lamports), 'f', -1, 64)
}

// FormatSOLExact 用整数运算输出精确的 9 位小数值（去掉末尾 0），用于报告留档。
func FormatSOLExact(lamports uint64) string {
	return formatUnits(new(big.Int).SetUint64(lamports), 9)
}

// formatUnits 把整数按 decimals 输出为可读小数字符串。
// decimals=0 则直接输出整数。
func formatUnits(n *big.Int, decimals int) string {
	if n == nil || n.Sign() == 0 {
		return "0"
	}
	if decimals <= 0 {
		return n.String()
	}

	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart := new(big.Int).Quo(n, denom)
	frac := new(big.Int).Mod(n, denom)
	if frac.Sign() == 0 {
		return intPart.String()
	}

	fracStr := frac.Text(10)
	if len(fracStr) < decimals {
		fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	return intPart.String() + "." + fracStr
}
