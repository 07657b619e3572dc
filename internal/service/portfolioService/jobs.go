package portfolioService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
)

// RefreshPortfolioSummary recomputes the summary and overwrites the system-scope cache entry,
// so the bot and other session-less readers get a warm cache.
func (s *PortfolioService) RefreshPortfolioSummary(ctx context.Context) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshPortfolioSummary"

	slog.Info("RefreshPortfolioSummary start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("RefreshPortfolioSummary failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Info("RefreshPortfolioSummary completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if _, ok := utils.GetSessionFromCtx(ctx); ok {
		return errors.New("job must not run in a user session")
	}

	epoch := s.epoch.Load()
	summary, err := s.loadPortfolioSummary(ctx)
	if err != nil {
		return mapRepoErr(err)
	}

	s.store(ctx, keyPortfolioSummary(s.bucketingMode()), summary, epoch)
	return nil
}

// CleanupReports removes exported reports older than the file TTL from the storage and the
// files table. Uploaded documents are kept.
func (s *PortfolioService) CleanupReports(ctx context.Context) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CleanupReports"

	slog.Info("CleanupReports start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("CleanupReports failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if s.storage == nil {
		slog.Info("CleanupReports skipped: file storage disabled", slog.String("rqID", rqID), slog.String("op", op))
		return nil
	}

	deletedFiles, err := s.storage.DeleteOldFiles(ctx, model.FileTypeReport)
	if err != nil {
		return err
	}

	deletedRows, err := s.repo.DeleteFilesCreatedBefore(ctx, model.FileTypeReport, s.now().Add(-s.cfg.GoogleDrive.FileTTL))
	if err != nil {
		return mapRepoErr(err)
	}

	// file lists are cached per fund; the job does not know which funds were touched
	if deletedRows > 0 {
		s.invalidate(ctx, "files:*")
	}

	slog.Info("CleanupReports completed", slog.String("rqID", rqID), slog.String("op", op),
		slog.Int("deletedFiles", deletedFiles), slog.Int64("deletedRows", deletedRows))

	return nil
}
