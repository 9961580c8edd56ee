package benchpdf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"balance-bench/internal/domain/model"
	"balance-bench/internal/platform/hash"
	"balance-bench/internal/services/chainbalance"

	"github.com/phpdave11/gofpdf"
)

// 对比报告 PDF：概要、两种方式耗时、逐地址余额、差异列表。
// 余额同时给出 lamports 原值与按整数运算得到的精确 SOL 值。

type Result struct {
	PDFPath     string   `json:"pdf_path"`
	PDFSHA256   string   `json:"pdf_sha256"`
	Warnings    []string `json:"warnings,omitempty"`
	GeneratedAt int64    `json:"generated_at"`
}

const generatorVer = "benchpdf-0.1.0"

// 单份报告最多展示的地址行数，防止 PDF 过大。
const maxRows = 500

// Generate 把一次运行结果渲染为 PDF 并写到 outPath。
func Generate(cmp *model.Comparison, outPath string) (*Result, error) {
	if cmp == nil {
		return nil, fmt.Errorf("comparison is required")
	}
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir reports: %w", err)
	}

	warnings := []string{}
	if n := len(cmp.Each.Balances); n > maxRows {
		warnings = append(warnings, fmt.Sprintf("balance tables truncated: showing %d of %d wallets", maxRows, n))
	}

	now := time.Now().Unix()
	pdf, utf8OK := buildPDF(cmp, warnings, now)
	if !utf8OK {
		warnings = append(warnings, "pdf utf8 font not available; non-ascii text may be replaced with '?'")
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	sum, _, err := hash.File(outPath)
	if err != nil {
		return nil, fmt.Errorf("sha256 pdf: %w", err)
	}

	return &Result{
		PDFPath:     outPath,
		PDFSHA256:   sum,
		Warnings:    warnings,
		GeneratedAt: now,
	}, nil
}

// DefaultPath 返回 reportDir 下按运行 ID 命名的 PDF 路径。
func DefaultPath(reportDir, runID string) string {
	return filepath.Join(reportDir, fmt.Sprintf("%s_balances.pdf", runID))
}

func buildPDF(cmp *model.Comparison, warnings []string, generatedAt int64) (*gofpdf.Fpdf, bool) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle("Solana Balance Bench - Comparison Report", false)
	pdf.SetCreator(generatorVer, false)

	fontFamily, utf8OK := initPDFUnicodeFont(pdf)

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 9, "Solana Balance Bench - Comparison Report", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated at: %s", fmtTime(generatedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	sectionTitle(pdf, fontFamily, "1. Overview")
	kv(pdf, fontFamily, utf8OK, "Run ID", cmp.RunID)
	kv(pdf, fontFamily, utf8OK, "RPC URL", cmp.RPCURL)
	kv(pdf, fontFamily, utf8OK, "Config", cmp.ConfigPath)
	kv(pdf, fontFamily, utf8OK, "Config SHA256", cmp.ConfigSHA256)
	kv(pdf, fontFamily, utf8OK, "Started At", fmtTime(cmp.StartedAt))
	kv(pdf, fontFamily, utf8OK, "Wallets", fmt.Sprintf("%d", len(cmp.Wallets)))
	pdf.Ln(2)

	sectionTitle(pdf, fontFamily, "2. Timing")
	for _, res := range []model.StrategyResult{cmp.Each, cmp.Batch} {
		kv(pdf, fontFamily, utf8OK, res.Strategy.Label(), fmt.Sprintf("%s (%s)", res.Duration, res.Strategy))
	}
	if cmp.Each.Duration > 0 && cmp.Batch.Duration > 0 {
		kv(pdf, fontFamily, utf8OK, "Ratio", fmt.Sprintf("%.2fx", float64(cmp.Each.Duration)/float64(cmp.Batch.Duration)))
	}
	pdf.Ln(2)

	localWarnings := append([]string{}, warnings...)
	if !utf8OK {
		localWarnings = append(localWarnings, "pdf utf8 font not available; non-ascii text may be replaced with '?'")
	}
	if len(localWarnings) > 0 {
		sectionTitle(pdf, fontFamily, "Warnings")
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(120, 80, 0)
		for _, w := range localWarnings {
			pdf.MultiCell(0, 4.5, "- "+safeText(w, utf8OK), "", "L", false)
		}
		pdf.Ln(2)
	}

	for i, res := range []model.StrategyResult{cmp.Each, cmp.Batch} {
		sectionTitle(pdf, fontFamily, fmt.Sprintf("%d. Results from %s", i+3, strings.ToLower(res.Strategy.Label())))
		balanceTable(pdf, fontFamily, utf8OK, res)
		pdf.Ln(2)
	}

	sectionTitle(pdf, fontFamily, "5. Differences")
	if len(cmp.Mismatches) == 0 {
		emptyLine(pdf, fontFamily, "(none)")
	} else {
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(30, 30, 30)
		for _, m := range cmp.Mismatches {
			pdf.MultiCell(0, 4.5, fmt.Sprintf("#%d %s: each=%s SOL batch=%s SOL",
				m.Index+1,
				safeText(m.Address, utf8OK),
				chainbalance.FormatSOLExact(m.EachLamports),
				chainbalance.FormatSOLExact(m.BatchLamports),
			), "", "L", false)
		}
	}

	pdf.Ln(2)
	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 4.5, "Note: batch results report 0 for addresses without an account record.", "", "L", false)

	return pdf, utf8OK
}

func balanceTable(pdf *gofpdf.Fpdf, fontFamily string, utf8OK bool, res model.StrategyResult) {
	if len(res.Balances) == 0 {
		emptyLine(pdf, fontFamily, "(empty)")
		return
	}
	rows := res.Balances
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(10, 6, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(100, 6, "Wallet", "1", 0, "L", true, 0, "")
	pdf.CellFormat(36, 6, "Lamports", "1", 0, "R", true, 0, "")
	pdf.CellFormat(36, 6, "SOL", "1", 1, "R", true, 0, "")

	pdf.SetFont(fontFamily, "", 8)
	for i, b := range rows {
		pdf.CellFormat(10, 5, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(100, 5, safeText(b.Address, utf8OK), "1", 0, "L", false, 0, "")
		pdf.CellFormat(36, 5, fmt.Sprintf("%d", b.Lamports), "1", 0, "R", false, 0, "")
		pdf.CellFormat(36, 5, chainbalance.FormatSOLExact(b.Lamports), "1", 1, "R", false, 0, "")
	}
	if strings.TrimSpace(res.Digest) != "" {
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 5, "digest: "+res.Digest, "", 1, "L", false, 0, "")
	}
}

func emptyLine(pdf *gofpdf.Fpdf, fontFamily, text string) {
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, text, "", "L", false)
}

func sectionTitle(pdf *gofpdf.Fpdf, fontFamily string, title string) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdf.GetX(), pdf.GetY(), 196, pdf.GetY())
	pdf.Ln(2)
}

func kv(pdf *gofpdf.Fpdf, fontFamily string, utf8OK bool, key string, value string) {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(36, 5.2, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, 5.2, safeText(value, utf8OK), "", "L", false)
}

func fmtTime(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
}

// safeText 在没有 UTF-8 字体时把非 ASCII 字符替换为 '?'，保证 PDF 一定能生成。
func safeText(s string, utf8OK bool) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.TrimSpace(s)
	if utf8OK {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 32 && r <= 126 {
			b.WriteRune(r)
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}

// initPDFUnicodeFont 尝试加载 UTF-8 字体（TrueType）。
//
// 优先使用环境变量 BALANCE_BENCH_PDF_FONT，其次探测常见系统字体，
// 都失败则回退到 Helvetica。
func initPDFUnicodeFont(pdf *gofpdf.Fpdf) (family string, utf8OK bool) {
	const familyName = "unicode"
	candidates := []string{}

	if v := strings.TrimSpace(os.Getenv("BALANCE_BENCH_PDF_FONT")); v != "" {
		candidates = append(candidates, v)
	}

	switch runtime.GOOS {
	case "darwin":
		candidates = append(candidates,
			"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
			"/System/Library/Fonts/Supplemental/Arial.ttf",
		)
	case "windows":
		candidates = append(candidates,
			`C:\Windows\Fonts\arialuni.ttf`,
			`C:\Windows\Fonts\arial.ttf`,
		)
	default:
		candidates = append(candidates,
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
		)
	}

	for _, p := range candidates {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}

		// 同一文件也注册 B 样式，避免 SetFont(...,"B",...) 报错。
		pdf.AddUTF8Font(familyName, "", p)
		if pdf.Err() {
			pdf.ClearError()
			continue
		}
		pdf.AddUTF8Font(familyName, "B", p)
		if pdf.Err() {
			pdf.ClearError()
		}
		return familyName, true
	}

	return "Helvetica", false
}
