package portfolioService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/aggregator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (s *PortfolioService) CreateInvestorUpdate(ctx context.Context, update model.InvestorUpdate) (created model.InvestorUpdate, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateInvestorUpdate"

	slog.Debug("CreateInvestorUpdate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("companyID", update.CompanyID.String()))
	defer func() {
		if err != nil {
			slog.Error("CreateInvestorUpdate failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateInvestorUpdate completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if strings.TrimSpace(update.Title) == "" {
		verr := &service.ValidationError{}
		verr.Add("title", "is required")
		return model.InvestorUpdate{}, verr
	}

	created, err = s.repo.InsertInvestorUpdate(ctx, update)
	if err != nil {
		return model.InvestorUpdate{}, mapRepoErr(err)
	}

	s.invalidate(ctx, keyInvestorUpdates(update.CompanyID))

	if created.ContentHTML, err = s.renderMarkdown(created.Content); err != nil {
		return model.InvestorUpdate{}, err
	}
	return created, nil
}

// GetInvestorUpdates returns a company's updates newest first with content rendered to HTML.
func (s *PortfolioService) GetInvestorUpdates(ctx context.Context, companyID uuid.UUID) ([]model.InvestorUpdate, error) {
	updates, err := fetch(ctx, s, keyInvestorUpdates(companyID), func(ctx context.Context) ([]model.InvestorUpdate, error) {
		return s.repo.GetInvestorUpdates(ctx, companyID)
	})
	if err != nil {
		return nil, err
	}

	rendered := make([]model.InvestorUpdate, len(updates))
	for i, u := range updates {
		if u.ContentHTML, err = s.renderMarkdown(u.Content); err != nil {
			return nil, err
		}
		rendered[i] = u
	}
	return rendered, nil
}

func (s *PortfolioService) renderMarkdown(content *string) (string, error) {
	if content == nil || *content == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(*content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

func (s *PortfolioService) GetFiles(ctx context.Context, fundID uuid.UUID) ([]model.File, error) {
	return fetch(ctx, s, keyFiles(fundID), func(ctx context.Context) ([]model.File, error) {
		return s.repo.GetFilesByFund(ctx, fundID)
	})
}

// UploadDocument stores a fund document in the file storage and records it in the files table.
func (s *PortfolioService) UploadDocument(ctx context.Context, fundID uuid.UUID, name string, size int64, reader io.Reader) (file model.File, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UploadDocument"

	slog.Debug("UploadDocument start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	defer func() {
		if err != nil {
			slog.Error("UploadDocument failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UploadDocument completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", file.ID.String()))
		}
	}()

	if s.storage == nil {
		return model.File{}, service.ErrStorageDisabled
	}

	if strings.TrimSpace(name) == "" {
		verr := &service.ValidationError{}
		verr.Add("name", "is required")
		return model.File{}, verr
	}

	if _, err = s.GetFund(ctx, fundID); err != nil {
		return model.File{}, err
	}

	return s.storeFile(ctx, fundID, name, size, reader, model.FileTypeDocument)
}

// ExportReport builds the portfolio workbook, uploads it and records it against the fund.
func (s *PortfolioService) ExportReport(ctx context.Context, fundID uuid.UUID) (file model.File, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op), slog.String("fundID", fundID.String()))
	defer func() {
		if err != nil {
			slog.Error("ExportReport failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ExportReport completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("link", file.Path))
		}
	}()

	if s.storage == nil {
		return model.File{}, service.ErrStorageDisabled
	}

	fund, err := s.GetFund(ctx, fundID)
	if err != nil {
		return model.File{}, err
	}

	report, err := s.BuildReport(ctx, fund.Name)
	if err != nil {
		return model.File{}, err
	}

	data, ext, err := s.reports.Generate(ctx, report)
	if err != nil {
		return model.File{}, fmt.Errorf("generate report: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", unsafeFilenameChars.ReplaceAllString(fund.Name, "_"), report.GeneratedAt, ext)

	return s.storeFile(ctx, fundID, name, int64(len(data)), bytes.NewReader(data), model.FileTypeReport)
}

func (s *PortfolioService) storeFile(ctx context.Context, fundID uuid.UUID, name string, size int64, reader io.Reader, kind string) (model.File, error) {
	link, err := s.storage.UploadFile(ctx, reader, name, kind)
	if err != nil {
		return model.File{}, fmt.Errorf("%w: %s", service.ErrUnavailable, err.Error())
	}

	file := model.File{FundID: fundID, Name: name, Path: link, Size: size, Type: kind}
	if sess, ok := utils.GetSessionFromCtx(ctx); ok {
		uploadedBy := sess.UserID
		file.UploadedBy = &uploadedBy
	}

	file, err = s.repo.InsertFile(ctx, file)
	if err != nil {
		return model.File{}, mapRepoErr(err)
	}

	s.invalidate(ctx, keyFiles(fundID))

	return file, nil
}

// BuildReport assembles the workbook content from current data. Companies keep the repository
// order and carry their latest metrics row, if any.
func (s *PortfolioService) BuildReport(ctx context.Context, title string) (model.PortfolioReport, error) {
	summary, err := s.GetPortfolioSummary(ctx)
	if err != nil {
		return model.PortfolioReport{}, err
	}

	companies, err := s.GetCompanies(ctx)
	if err != nil {
		return model.PortfolioReport{}, err
	}

	records, err := s.repo.GetAllMetrics(ctx)
	if err != nil {
		return model.PortfolioReport{}, mapRepoErr(err)
	}

	history := make(map[uuid.UUID][]model.MetricsRecord)
	for _, r := range records {
		history[r.CompanyID] = append(history[r.CompanyID], r)
	}

	rows := make([]model.CompanyReportRow, 0, len(companies))
	for _, c := range companies {
		row := model.CompanyReportRow{Company: c}
		if latest, ok := aggregator.Latest(history[c.ID]); ok {
			row.Latest = &latest
			row.StakeValue = aggregator.OwnedValue(latest.PostMoneyValuation, latest.SharesOwned).InexactFloat64()
		}
		rows = append(rows, row)
	}

	return model.PortfolioReport{
		Title:       title,
		Currency:    reportCurrency,
		GeneratedAt: calendar.Today(s.now).String(),
		Performance: summary.Performance,
		Companies:   rows,
	}, nil
}
