package infra

// pdf.go — printable reconciliation report rendered with go-pdf/fpdf.
// A4 portrait: store/period header, period totals, cost breakdown,
// per-machine table, cash-vs-token reconciliation block (with the mismatch
// warning when the two sources diverge).
//
// The output file is saved to storagePath/fechamento_{store}_{start}_{end}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MachinePay/backend-agarramais-sub000/internal/dto"
	"github.com/MachinePay/backend-agarramais-sub000/internal/money"

	"github.com/go-pdf/fpdf"
)

// GenerateReconciliationPDF renders a print report to disk and returns the
// absolute path to the generated file.
func GenerateReconciliationPDF(report *dto.PrintReportResponse, businessName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("fechamento_%s_%s_%s.pdf", report.StoreID, report.PeriodStart, report.PeriodEnd)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, businessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Relatório de Fechamento e Conferência", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, report.StoreName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Período: %s a %s", report.PeriodStart, report.PeriodEnd), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	half := contentW / 2
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Totais do período", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(half, 5, fmt.Sprintf("Fichas: %d", report.Totals.Tokens), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Receita registrada: R$ "+money.Format(report.Totals.Revenue), "", 1, "L", false, 0, "")
	pdf.CellFormat(half, 5, fmt.Sprintf("Prêmios entregues: %d", report.Totals.Dispensed), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Dinheiro declarado: R$ "+money.Format(report.Totals.Cash), "", 1, "L", false, 0, "")
	pdf.CellFormat(half, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Cartão/Pix declarado: R$ "+money.Format(report.Totals.CardPix), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Costs ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Custos do período", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(half, 5, "Gastos fixos (rateados): R$ "+money.Format(report.Costs.Fixed), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Gastos variáveis: R$ "+money.Format(report.Costs.Variable), "", 1, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Custo de prêmios: R$ "+money.Format(report.Costs.Product), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(half, 5, "Custo total: R$ "+money.Format(report.Costs.Total), "", 1, "L", false, 0, "")
	pdf.Ln(1)
	pdf.CellFormat(half, 6, "Lucro líquido: R$ "+money.Format(report.NetProfit), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 6, "Margem: "+report.MarginPct.StringFixed(2)+"%", "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Machines table ───────────────────────────────────────────────────────
	col1 := contentW * 0.40
	col2 := contentW * 0.15
	col3 := contentW * 0.25
	col4 := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Máquina", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Fichas", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Receita", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Ocupação", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, m := range report.Machines {
		name := m.MachineName
		if len(name) > 34 {
			name = name[:33] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", m.Tokens), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "R$ "+money.Format(m.Revenue), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, m.OccupancyPct.StringFixed(1)+"%", "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// ── Reconciliation ───────────────────────────────────────────────────────
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Conferência de receita", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(half, 5, "Total declarado em caixa: R$ "+money.Format(report.DeclaredTotal), "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 5, "Receita estimada por fichas: R$ "+money.Format(report.TokenImpliedRevenue), "", 1, "L", false, 0, "")

	if report.MismatchWarning != nil {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(180, 0, 0)
		pdf.MultiCell(contentW, 5, "ATENÇÃO: "+*report.MismatchWarning, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
