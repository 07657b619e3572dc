package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/converter/dbConverter"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/dbModel"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
)

const fileColumns = `file_id, fund_id, name, path, size, type, uploaded_by, created_at`

func (r *Postgres) InsertFile(ctx context.Context, file model.File) (_ model.File, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO files(fund_id, name, path, size, type, uploaded_by)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING ` + fileColumns

	slog.Debug("InsertFile start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertFile failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertFile completed", slog.String("rqID", rqID))
		}
	}()

	dbFile := dbModel.File{}
	err = r.txOrDb(ctx).
		QueryRowxContext(ctx, query, file.FundID, file.Name, file.Path, file.Size, file.Type, file.UploadedBy).
		StructScan(&dbFile)
	if err != nil {
		return model.File{}, mapErr(err)
	}

	return dbConverter.ConvertFile(dbFile), nil
}

func (r *Postgres) GetFilesByFund(ctx context.Context, fundID uuid.UUID) (files []model.File, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + fileColumns + ` FROM files WHERE fund_id = $1 ORDER BY created_at DESC`

	slog.Debug("GetFilesByFund start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetFilesByFund failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetFilesByFund completed", slog.String("rqID", rqID))
		}
	}()

	var dbFiles []dbModel.File
	err = r.txOrDb(ctx).SelectContext(ctx, &dbFiles, query, fundID)
	if err != nil {
		return nil, mapErr(err)
	}

	files = make([]model.File, 0, len(dbFiles))
	for _, f := range dbFiles {
		files = append(files, dbConverter.ConvertFile(f))
	}

	return files, nil
}

// DeleteFilesCreatedBefore removes rows of the given type whose stored object has expired.
func (r *Postgres) DeleteFilesCreatedBefore(ctx context.Context, fileType string, before time.Time) (deleted int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM files WHERE type = $1 AND created_at < $2`

	slog.Debug("DeleteFilesCreatedBefore start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteFilesCreatedBefore failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteFilesCreatedBefore completed", slog.String("rqID", rqID), slog.Int64("deleted", deleted))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, fileType, before)
	if err != nil {
		return 0, mapErr(err)
	}

	return res.RowsAffected()
}

const investorUpdateColumns = `id, company_id, title, content, attachment_path, created_at`

func (r *Postgres) InsertInvestorUpdate(ctx context.Context, update model.InvestorUpdate) (_ model.InvestorUpdate, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO investor_updates(company_id, title, content, attachment_path)
		VALUES($1, $2, $3, $4)
		RETURNING ` + investorUpdateColumns

	slog.Debug("InsertInvestorUpdate start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertInvestorUpdate failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertInvestorUpdate completed", slog.String("rqID", rqID))
		}
	}()

	dbUpdate := dbModel.InvestorUpdate{}
	err = r.txOrDb(ctx).
		QueryRowxContext(ctx, query, update.CompanyID, update.Title, update.Content, update.AttachmentPath).
		StructScan(&dbUpdate)
	if err != nil {
		return model.InvestorUpdate{}, mapErr(err)
	}

	return dbConverter.ConvertInvestorUpdate(dbUpdate), nil
}

func (r *Postgres) GetInvestorUpdates(ctx context.Context, companyID uuid.UUID) (updates []model.InvestorUpdate, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ` + investorUpdateColumns + `
		FROM investor_updates
		WHERE company_id = $1
		ORDER BY created_at DESC
		`

	slog.Debug("GetInvestorUpdates start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetInvestorUpdates failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetInvestorUpdates completed", slog.String("rqID", rqID))
		}
	}()

	var dbUpdates []dbModel.InvestorUpdate
	err = r.txOrDb(ctx).SelectContext(ctx, &dbUpdates, query, companyID)
	if err != nil {
		return nil, mapErr(err)
	}

	updates = make([]model.InvestorUpdate, 0, len(dbUpdates))
	for _, u := range dbUpdates {
		updates = append(updates, dbConverter.ConvertInvestorUpdate(u))
	}

	return updates, nil
}
