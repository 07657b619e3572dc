package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/converter/dbConverter"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/dbModel"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
)

func (r *Postgres) InsertOrganization(ctx context.Context, name, orgType string) (org model.Organization, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO organizations(name, type) VALUES($1, $2)
		RETURNING organization_id, name, type, created_at
		`

	slog.Debug("InsertOrganization start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertOrganization failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertOrganization completed", slog.String("rqID", rqID))
		}
	}()

	dbOrg := dbModel.Organization{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, name, orgType).StructScan(&dbOrg)
	if err != nil {
		return model.Organization{}, mapErr(err)
	}

	return dbConverter.ConvertOrganization(dbOrg), nil
}

func (r *Postgres) InsertOrganizationUser(ctx context.Context, orgUser model.OrganizationUser) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO organization_users(organization_id, user_id, role) VALUES($1, $2, $3)`

	slog.Debug("InsertOrganizationUser start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertOrganizationUser failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertOrganizationUser completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, orgUser.OrganizationID, orgUser.UserID, orgUser.Role)
	return mapErr(err)
}

func (r *Postgres) InsertFund(ctx context.Context, fund model.Fund) (_ model.Fund, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO funds(organization_id, name, vintage_year, fund_size, status)
		VALUES($1, $2, $3, $4, $5)
		RETURNING fund_id, organization_id, name, vintage_year, fund_size, status, created_at
		`

	slog.Debug("InsertFund start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertFund failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertFund completed", slog.String("rqID", rqID))
		}
	}()

	dbFund := dbModel.Fund{}
	err = r.txOrDb(ctx).
		QueryRowxContext(ctx, query, fund.OrganizationID, fund.Name, fund.VintageYear, fund.FundSize, fund.Status).
		StructScan(&dbFund)
	if err != nil {
		return model.Fund{}, mapErr(err)
	}

	return dbConverter.ConvertFund(dbFund), nil
}

func (r *Postgres) InsertFundUser(ctx context.Context, fundUser model.FundUser) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO fund_users(fund_id, user_id, role) VALUES($1, $2, $3)`

	slog.Debug("InsertFundUser start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertFundUser failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertFundUser completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, fundUser.FundID, fundUser.UserID, fundUser.Role)
	return mapErr(err)
}

const fundColumns = `fund_id, organization_id, name, vintage_year, fund_size, status, created_at`

func (r *Postgres) GetFunds(ctx context.Context) (funds []model.Fund, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + fundColumns + ` FROM funds ORDER BY vintage_year DESC, name`

	slog.Debug("GetFunds start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetFunds failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetFunds completed", slog.String("rqID", rqID))
		}
	}()

	var dbFunds []dbModel.Fund
	err = r.txOrDb(ctx).SelectContext(ctx, &dbFunds, query)
	if err != nil {
		return nil, mapErr(err)
	}

	funds = make([]model.Fund, 0, len(dbFunds))
	for _, f := range dbFunds {
		funds = append(funds, dbConverter.ConvertFund(f))
	}

	return funds, nil
}

func (r *Postgres) GetFund(ctx context.Context, fundID uuid.UUID) (fund model.Fund, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + fundColumns + ` FROM funds WHERE fund_id = $1`

	slog.Debug("GetFund start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetFund failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetFund completed", slog.String("rqID", rqID))
		}
	}()

	dbFund := dbModel.Fund{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, fundID).StructScan(&dbFund)
	if err != nil {
		return model.Fund{}, mapErr(err)
	}

	return dbConverter.ConvertFund(dbFund), nil
}

func (r *Postgres) CountUserFunds(ctx context.Context, userID uuid.UUID) (count int, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT count(*) FROM fund_users WHERE user_id = $1`

	slog.Debug("CountUserFunds start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CountUserFunds failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("CountUserFunds completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, mapErr(err)
	}

	return count, nil
}
