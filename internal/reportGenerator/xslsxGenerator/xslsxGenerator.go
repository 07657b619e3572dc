package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet   = "Summary"
	CompaniesSheet = "Companies"

	// excelize built-in format "#,##0.00"
	numFmtAmount = 4
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if report.Title == "" {
		return nil, "", errors.New("empty report title")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, "", err
	}

	moneyStyle, err := g.moneyStyle(f, report.Currency)
	if err != nil {
		return nil, "", err
	}

	if err = g.fillSummary(f, report, moneyStyle); err != nil {
		slog.Error("got error while filling summary", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillCompanies(f, report, moneyStyle); err != nil {
		slog.Error("got error while filling companies", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

// currencyNumFmt builds a number format like "$"#,##0.00 from the currency's symbol, template
// and minor units. Unknown codes give "".
func currencyNumFmt(code string) string {
	c := money.GetCurrency(code)
	if c == nil {
		return ""
	}
	number := "#,##0"
	if c.Fraction > 0 {
		number += "." + strings.Repeat("0", c.Fraction)
	}
	return strings.NewReplacer("1", number, "$", `"`+c.Grapheme+`"`).Replace(c.Template)
}

func (g *XSLSXGenerator) moneyStyle(f *excelize.File, currency string) (int, error) {
	numFmt := currencyNumFmt(currency)
	if numFmt == "" {
		return f.NewStyle(&excelize.Style{NumFmt: numFmtAmount})
	}
	return f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
}

func (g *XSLSXGenerator) fillSummary(f *excelize.File, report model.PortfolioReport, moneyStyle int) error {
	sheet := SummarySheet

	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	_ = f.SetCellStr(sheet, "A1", report.Title)

	styleID, err := g.headerStyle(f, "#cfe2f3") // light blue
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	s := report.Performance.Summary
	rows := []struct {
		label string
		value float64
	}{
		{fmt.Sprintf("Total AUM, %s", report.Currency), s.TotalAUM},
		{"AUM change, %", s.AUMChange},
		{"Average IRR, %", s.AverageIRR},
		{"IRR change, %", s.IRRChange},
		{"Average TVPI", s.AverageTVPI},
		{"TVPI change, %", s.TVPIChange},
	}
	for i, row := range rows {
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", i+2), row.label)
		_ = f.SetCellFloat(sheet, fmt.Sprintf("B%d", i+2), row.value, 2, 64)
	}
	_ = f.SetCellStyle(sheet, "B2", "B2", moneyStyle)
	_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", len(rows)+2), "Generated at")
	_ = f.SetCellStr(sheet, fmt.Sprintf("B%d", len(rows)+2), report.GeneratedAt)

	// AUM by date
	rowNum := len(rows) + 4
	if err := f.MergeCell(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("B%d", rowNum)); err != nil {
		return err
	}
	_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", rowNum), "AUM by date")

	styleID, err = g.headerStyle(f, "#d9ead3") // light green
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	for _, point := range report.Performance.Series {
		rowNum++
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", rowNum), point.Label)
		_ = f.SetCellFloat(sheet, fmt.Sprintf("B%d", rowNum), point.Value, 2, 64)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("B%d", rowNum), fmt.Sprintf("B%d", rowNum), moneyStyle)
	}

	return f.SetColWidth(sheet, "A", "B", 24)
}

var companyHeaders = []string{
	"Company", "Industry", "Status", "Metric date", "Valuation", "Shares owned, %",
	"Stake value", "ARR", "MRR", "Burn rate", "Runway, months",
}

func (g *XSLSXGenerator) fillCompanies(f *excelize.File, report model.PortfolioReport, moneyStyle int) error {
	sheet := CompaniesSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	styleID, err := g.headerStyle(f, "#f9cb9c") // light orange
	if err != nil {
		return err
	}

	for i, header := range companyHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, styleID)
	}

	for i, row := range report.Companies {
		r := i + 2
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", r), row.Company.Name)
		_ = f.SetCellStr(sheet, fmt.Sprintf("B%d", r), row.Company.Industry)
		_ = f.SetCellStr(sheet, fmt.Sprintf("C%d", r), row.Company.Status)
		_ = f.SetCellFloat(sheet, fmt.Sprintf("G%d", r), row.StakeValue, 2, 64)

		m := row.Latest
		if m == nil {
			continue
		}
		_ = f.SetCellStr(sheet, fmt.Sprintf("D%d", r), m.MetricDate.String())
		setNullable(f, sheet, fmt.Sprintf("E%d", r), m.PostMoneyValuation)
		setNullable(f, sheet, fmt.Sprintf("F%d", r), m.SharesOwned)
		setNullable(f, sheet, fmt.Sprintf("H%d", r), m.ARR)
		setNullable(f, sheet, fmt.Sprintf("I%d", r), m.MRR)
		setNullable(f, sheet, fmt.Sprintf("J%d", r), m.BurnRate)
		setNullable(f, sheet, fmt.Sprintf("K%d", r), m.RunwayMonths)
	}

	if last := len(report.Companies) + 1; last > 1 {
		for _, col := range []string{"E", "G", "H", "I", "J"} {
			if err := f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, last), moneyStyle); err != nil {
				return fmt.Errorf("apply style: %w", err)
			}
		}
	}

	return f.SetColWidth(sheet, "A", "K", 16)
}

// setNullable leaves the cell blank for absent values.
func setNullable(f *excelize.File, sheet, cell string, v decimal.NullDecimal) {
	if !v.Valid {
		return
	}
	_ = f.SetCellFloat(sheet, cell, v.Decimal.InexactFloat64(), 2, 64)
}
