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

const investmentColumns = `id, company_id, investment_date, round_name, stage, amount_invested,
	ownership_percentage, valuation, status, created_at`

func (r *Postgres) InsertInvestment(ctx context.Context, investment model.Investment) (_ model.Investment, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO investments(company_id, investment_date, round_name, stage, amount_invested,
		                        ownership_percentage, valuation, status)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + investmentColumns

	slog.Debug("InsertInvestment start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertInvestment failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertInvestment completed", slog.String("rqID", rqID))
		}
	}()

	dbInvestment := dbModel.Investment{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query,
		investment.CompanyID,
		investment.InvestmentDate,
		investment.RoundName,
		investment.Stage,
		investment.AmountInvested,
		investment.OwnershipPercentage,
		investment.Valuation,
		investment.Status,
	).StructScan(&dbInvestment)
	if err != nil {
		return model.Investment{}, mapErr(err)
	}

	return dbConverter.ConvertInvestment(dbInvestment), nil
}

func (r *Postgres) GetInvestmentsByCompany(ctx context.Context, companyID uuid.UUID) (investments []model.Investment, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE company_id = $1
		ORDER BY investment_date DESC, created_at DESC
		`

	slog.Debug("GetInvestmentsByCompany start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetInvestmentsByCompany failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetInvestmentsByCompany completed", slog.String("rqID", rqID))
		}
	}()

	var dbInvestments []dbModel.Investment
	err = r.txOrDb(ctx).SelectContext(ctx, &dbInvestments, query, companyID)
	if err != nil {
		return nil, mapErr(err)
	}

	investments = make([]model.Investment, 0, len(dbInvestments))
	for _, inv := range dbInvestments {
		investments = append(investments, dbConverter.ConvertInvestment(inv))
	}

	return investments, nil
}
