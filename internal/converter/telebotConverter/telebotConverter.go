package telebotConverter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/aggregator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/tg/tgCallback"
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const (
	currency = money.USD
	absent   = "n/a"
	// how many points of the AUM series the summary lists
	seriesTail = 6
)

// Money formats an amount like $1,250,000.00.
func Money(amount decimal.Decimal) string {
	return money.NewFromFloat(amount.InexactFloat64(), currency).Display()
}

func nullMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return absent
	}
	return Money(v.Decimal)
}

func nullNumber(v decimal.NullDecimal, suffix string) string {
	if !v.Valid {
		return absent
	}
	return v.Decimal.StringFixed(1) + suffix
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return absent
	}
	return *s
}

func signedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func SummaryResponse(summary model.PortfolioSummary) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder
	s := summary.Performance.Summary

	sb.WriteString("📊 Portfolio\n")
	sb.WriteString(fmt.Sprintf("💰 AUM: %s (%s)\n", Money(decimal.NewFromFloat(s.TotalAUM)), signedPercent(s.AUMChange)))
	sb.WriteString(fmt.Sprintf("📈 Avg IRR: %.2f%% ▸ Avg TVPI: %.2fx\n", s.AverageIRR, s.AverageTVPI))
	sb.WriteString(fmt.Sprintf("🏢 Companies: %d\n", summary.Companies))

	btns := make([]tele.Btn, 0, len(summary.Funds))
	for _, f := range summary.Funds {
		sb.WriteString(fmt.Sprintf("🏦 %s (%d)\n", f.Name, f.VintageYear))
		btns = append(btns, markup.Data("📄 Report "+f.Name, tgCallback.ExportReport, f.ID.String()))
	}

	series := summary.Performance.Series
	if len(series) > seriesTail {
		series = series[len(series)-seriesTail:]
	}
	if len(series) > 0 {
		sb.WriteString("\nAUM by date:\n")
		for _, p := range series {
			sb.WriteString(fmt.Sprintf("   ▸ %s: %s\n", p.Label, Money(decimal.NewFromFloat(p.Value))))
		}
	}

	rows := []tele.Row{markup.Row(markup.Data("🏢 Companies", tgCallback.Companies))}
	for _, b := range btns {
		rows = append(rows, markup.Row(b))
	}
	markup.Inline(rows...)

	return sb.String(), markup
}

func CompaniesResponse(companies []model.Company) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	if len(companies) == 0 {
		return "No portfolio companies yet.", nil
	}

	var sb strings.Builder
	sb.WriteString("🏢 Portfolio companies:\n\n")
	rows := make([]tele.Row, 0, len(companies))
	for i, c := range companies {
		sb.WriteString(fmt.Sprintf("%d. %s ▸ %s ▸ %s\n", i+1, c.Name, c.Industry, c.Status))
		rows = append(rows, markup.Row(markup.Data(c.Name, tgCallback.Company, c.ID.String())))
	}
	markup.Inline(rows...)

	return sb.String(), markup
}

func CompanyOverviewResponse(overview model.CompanyOverview) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder
	c := overview.Company

	sb.WriteString(fmt.Sprintf("🏢 %s\n", c.Name))
	sb.WriteString(fmt.Sprintf("Industry: %s\nStatus: %s\n", c.Industry, c.Status))
	if !c.FoundingDate.IsZero() {
		sb.WriteString(fmt.Sprintf("Founded: %s\n", c.FoundingDate))
	}
	sb.WriteString(fmt.Sprintf("HQ: %s\n", optional(c.Metadata.HQLocation)))
	if c.Metadata.TeamSize != nil {
		sb.WriteString(fmt.Sprintf("Team size: %d\n", *c.Metadata.TeamSize))
	}
	if c.Metadata.Description != nil {
		sb.WriteString(fmt.Sprintf("\n%s\n", *c.Metadata.Description))
	}

	if m := overview.LatestMetrics; m != nil {
		sb.WriteString(fmt.Sprintf("\n📋 Metrics as of %s:\n", m.MetricDate))
		sb.WriteString(fmt.Sprintf("   ▸ Valuation: %s\n", nullMoney(m.PostMoneyValuation)))
		sb.WriteString(fmt.Sprintf("   ▸ Shares owned: %s\n", nullNumber(m.SharesOwned, "%")))
		sb.WriteString(fmt.Sprintf("   ▸ Stake value: %s\n", Money(overview.StakeValue)))
		sb.WriteString(fmt.Sprintf("   ▸ ARR: %s ▸ MRR: %s\n", nullMoney(m.ARR), nullMoney(m.MRR)))
		sb.WriteString(fmt.Sprintf("   ▸ Burn rate: %s\n", nullMoney(m.BurnRate)))
		sb.WriteString(fmt.Sprintf("   ▸ Runway: %s (%s%% of %d months)\n",
			nullNumber(m.RunwayMonths, " months"), overview.RunwayProgress.StringFixed(0), aggregator.RunwayBenchmarkMonths))
		sb.WriteString(fmt.Sprintf("   ▸ Updates recorded: %d\n", overview.MetricsEntries))
	} else {
		sb.WriteString("\nNo metrics recorded yet.\n")
	}

	id := c.ID.String()
	markup.Inline(
		markup.Row(
			markup.Data("✏️ Edit company", tgCallback.EditCompany, id),
			markup.Data("📈 Update metrics", tgCallback.EditMetrics, id),
		),
		markup.Row(markup.Data("⬅️ Companies", tgCallback.Companies)),
	)

	return sb.String(), markup
}

func draftMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("💾 Save", tgCallback.SaveDraft),
		markup.Data("✖️ Cancel", tgCallback.CancelDraft),
	))
	return markup
}

const editHint = "\nSend changes as \"field: value\" lines, \"-\" clears a value."

func CompanyDraftResponse(draft model.CompanyDraft) (text string, markup *tele.ReplyMarkup) {
	var sb strings.Builder
	md := draft.Metadata

	sb.WriteString("✏️ Editing company\n\n")
	sb.WriteString(fmt.Sprintf("name: %s\n", draft.Name))
	sb.WriteString(fmt.Sprintf("industry: %s\n", draft.Industry))
	sb.WriteString(fmt.Sprintf("founding_date: %s\n", orAbsent(draft.FoundingDate.String())))
	sb.WriteString(fmt.Sprintf("status: %s\n", draft.Status))
	teamSize := absent
	if md.TeamSize != nil {
		teamSize = fmt.Sprint(*md.TeamSize)
	}
	sb.WriteString(fmt.Sprintf("team_size: %s\n", teamSize))
	sb.WriteString(fmt.Sprintf("hq_location: %s\n", optional(md.HQLocation)))
	sb.WriteString(fmt.Sprintf("performance: %s\n", optional(md.Performance)))
	sb.WriteString(fmt.Sprintf("description: %s\n", optional(md.Description)))
	sb.WriteString(editHint)

	return sb.String(), draftMarkup()
}

func MetricsDraftResponse(draft model.MetricsDraft) (text string, markup *tele.ReplyMarkup) {
	var sb strings.Builder

	sb.WriteString("📈 New metrics entry (dated today)\n\n")
	sb.WriteString(fmt.Sprintf("valuation: %s\n", nullDecimal(draft.PostMoneyValuation)))
	sb.WriteString(fmt.Sprintf("shares_owned: %s\n", nullDecimal(draft.SharesOwned)))
	sb.WriteString(fmt.Sprintf("arr: %s\n", nullDecimal(draft.ARR)))
	sb.WriteString(fmt.Sprintf("mrr: %s\n", nullDecimal(draft.MRR)))
	sb.WriteString(fmt.Sprintf("burn_rate: %s\n", nullDecimal(draft.BurnRate)))
	sb.WriteString(fmt.Sprintf("runway_months: %s\n", nullDecimal(draft.RunwayMonths)))
	sb.WriteString(editHint)

	return sb.String(), draftMarkup()
}

func FileResponse(file model.File) string {
	return fmt.Sprintf("📄 %s\n%s", file.Name, file.Path)
}

// FieldErrorsResponse lists per-field problems sorted by field name.
func FieldErrorsResponse(fields map[string]string) string {
	var sb strings.Builder
	sb.WriteString("⚠️ Please fix:\n")
	for _, f := range slices.Sorted(maps.Keys(fields)) {
		sb.WriteString(fmt.Sprintf("   ▸ %s: %s\n", f, fields[f]))
	}
	return sb.String()
}

func nullDecimal(v decimal.NullDecimal) string {
	if !v.Valid {
		return absent
	}
	return v.Decimal.String()
}

func orAbsent(s string) string {
	if s == "" {
		return absent
	}
	return s
}
