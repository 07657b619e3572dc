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

const metricsColumns = `m.id, m.company_id, m.metric_date, m.post_money_valuation, m.shares_owned,
	m.arr, m.mrr, m.burn_rate, m.runway_months, m.created_at`

// InsertMetrics appends a dated row, earlier rows are never modified.
func (r *Postgres) InsertMetrics(ctx context.Context, record model.MetricsRecord) (_ model.MetricsRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO company_metrics_history AS m(company_id, metric_date, post_money_valuation, shares_owned,
		                                         arr, mrr, burn_rate, runway_months)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + metricsColumns

	slog.Debug("InsertMetrics start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertMetrics failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertMetrics completed", slog.String("rqID", rqID))
		}
	}()

	dbMetrics := dbModel.MetricsHistory{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query,
		record.CompanyID,
		record.MetricDate,
		record.PostMoneyValuation,
		record.SharesOwned,
		record.ARR,
		record.MRR,
		record.BurnRate,
		record.RunwayMonths,
	).StructScan(&dbMetrics)
	if err != nil {
		return model.MetricsRecord{}, mapErr(err)
	}

	return dbConverter.ConvertMetrics(dbMetrics), nil
}

func (r *Postgres) selectMetrics(ctx context.Context, query string, args ...any) (records []model.MetricsRecord, err error) {
	var dbMetrics []dbModel.MetricsHistory
	err = r.txOrDb(ctx).SelectContext(ctx, &dbMetrics, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}

	records = make([]model.MetricsRecord, 0, len(dbMetrics))
	for _, m := range dbMetrics {
		records = append(records, dbConverter.ConvertMetrics(m))
	}

	return records, nil
}

func (r *Postgres) GetMetricsHistory(ctx context.Context, companyID uuid.UUID, ascending bool) (records []model.MetricsRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := `
		SELECT ` + metricsColumns + `
		FROM company_metrics_history m
		WHERE m.company_id = $1
		ORDER BY m.metric_date ` + order + `, m.created_at ` + order

	slog.Debug("GetMetricsHistory start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetMetricsHistory failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetMetricsHistory completed", slog.String("rqID", rqID))
		}
	}()

	return r.selectMetrics(ctx, query, companyID)
}

func (r *Postgres) GetAllMetrics(ctx context.Context) (records []model.MetricsRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ` + metricsColumns + `, c.name AS company_name
		FROM company_metrics_history m
		JOIN portfolio_companies c ON c.company_id = m.company_id
		ORDER BY m.metric_date, m.created_at
		`

	slog.Debug("GetAllMetrics start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetAllMetrics failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetAllMetrics completed", slog.String("rqID", rqID))
		}
	}()

	return r.selectMetrics(ctx, query)
}

// GetLatestMetrics returns the row with the latest metric date, ties broken by creation time.
func (r *Postgres) GetLatestMetrics(ctx context.Context, companyID uuid.UUID) (record model.MetricsRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ` + metricsColumns + `
		FROM company_metrics_history m
		WHERE m.company_id = $1
		ORDER BY m.metric_date DESC, m.created_at DESC
		LIMIT 1
		`

	slog.Debug("GetLatestMetrics start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetLatestMetrics failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetLatestMetrics completed", slog.String("rqID", rqID))
		}
	}()

	dbMetrics := dbModel.MetricsHistory{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, companyID).StructScan(&dbMetrics)
	if err != nil {
		return model.MetricsRecord{}, mapErr(err)
	}

	return dbConverter.ConvertMetrics(dbMetrics), nil
}

func (r *Postgres) CountMetrics(ctx context.Context, companyID uuid.UUID) (count int, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT count(*) FROM company_metrics_history WHERE company_id = $1`

	slog.Debug("CountMetrics start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CountMetrics failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("CountMetrics completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).GetContext(ctx, &count, query, companyID)
	if err != nil {
		return 0, mapErr(err)
	}

	return count, nil
}
