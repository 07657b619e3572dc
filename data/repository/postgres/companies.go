package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/converter/dbConverter"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/dbModel"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
)

const companyColumns = `company_id, name, industry, founding_date, metadata, status, created_at, updated_at`

func (r *Postgres) InsertCompany(ctx context.Context, company model.Company) (_ model.Company, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO portfolio_companies(name, industry, founding_date, metadata, status)
		VALUES($1, NULLIF($2, ''), $3, $4::jsonb, COALESCE(NULLIF($5, ''), 'Active'))
		RETURNING ` + companyColumns

	slog.Debug("InsertCompany start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertCompany failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertCompany completed", slog.String("rqID", rqID))
		}
	}()

	if company.Metadata.Metrics == nil {
		company.Metadata.Metrics = map[string]float64{}
	}
	metadata, err := json.Marshal(company.Metadata)
	if err != nil {
		return model.Company{}, fmt.Errorf("marshal metadata: %w", err)
	}

	dbCompany := dbModel.Company{}
	err = r.txOrDb(ctx).
		QueryRowxContext(ctx, query, company.Name, company.Industry, company.FoundingDate, string(metadata), company.Status).
		StructScan(&dbCompany)
	if err != nil {
		return model.Company{}, mapErr(err)
	}

	return dbConverter.ConvertCompany(dbCompany)
}

func (r *Postgres) GetCompany(ctx context.Context, companyID uuid.UUID) (company model.Company, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + companyColumns + ` FROM portfolio_companies WHERE company_id = $1`

	slog.Debug("GetCompany start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetCompany failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCompany completed", slog.String("rqID", rqID))
		}
	}()

	dbCompany := dbModel.Company{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, companyID).StructScan(&dbCompany)
	if err != nil {
		return model.Company{}, mapErr(err)
	}

	return dbConverter.ConvertCompany(dbCompany)
}

func (r *Postgres) GetCompanies(ctx context.Context) (companies []model.Company, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + companyColumns + ` FROM portfolio_companies ORDER BY name`

	slog.Debug("GetCompanies start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetCompanies failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCompanies completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
	if err != nil {
		return nil, mapErr(err)
	}

	defer rows.Close()

	companies = []model.Company{}
	for rows.Next() {
		var dbCompany dbModel.Company
		err = rows.StructScan(&dbCompany)
		if err != nil {
			return nil, err
		}
		company, err := dbConverter.ConvertCompany(dbCompany)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}

	return companies, rows.Err()
}

// UpdateCompany applies a partial update. Nil fields keep their stored value, cleared fields
// become NULL and metadata keys are merged into the stored document. Concurrent updates are last-write-wins.
func (r *Postgres) UpdateCompany(ctx context.Context, companyID uuid.UUID, patch model.CompanyPatch) (_ model.Company, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE portfolio_companies
		SET name = COALESCE($2, name),
		    industry = COALESCE($3, industry),
		    founding_date = CASE WHEN $8::boolean THEN NULL ELSE COALESCE($4::date, founding_date) END,
		    status = COALESCE($5, status),
		    metadata = (COALESCE(metadata, '{}'::jsonb) - $7::text[]) || $6::jsonb,
		    updated_at = now()
		WHERE company_id = $1
		RETURNING ` + companyColumns

	slog.Debug("UpdateCompany start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateCompany failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateCompany completed", slog.String("rqID", rqID))
		}
	}()

	metadataPatch := model.MetadataPatch{}
	if patch.Metadata != nil {
		metadataPatch = *patch.Metadata
	}
	metadata, err := json.Marshal(metadataPatch)
	if err != nil {
		return model.Company{}, fmt.Errorf("marshal metadata patch: %w", err)
	}

	var foundingDate any
	if patch.FoundingDate != nil {
		foundingDate = patch.FoundingDate.String()
	}

	dbCompany := dbModel.Company{}
	err = r.txOrDb(ctx).
		QueryRowxContext(ctx, query, companyID, patch.Name, patch.Industry, foundingDate, patch.Status, string(metadata),
			patch.ClearedMetadataKeys(), patch.ClearsFoundingDate()).
		StructScan(&dbCompany)
	if err != nil {
		return model.Company{}, mapErr(err)
	}

	return dbConverter.ConvertCompany(dbCompany)
}
