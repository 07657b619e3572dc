package dbConverter

import (
	"fmt"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/dbModel"
	"github.com/google/uuid"
)

func ConvertCompany(dbCompany dbModel.Company) (model.Company, error) {
	company := model.Company{
		ID:           dbCompany.CompanyID,
		Name:         dbCompany.Name,
		Industry:     dbCompany.Industry.String,
		FoundingDate: dbCompany.FoundingDate,
		Status:       dbCompany.Status.String,
		CreatedAt:    dbCompany.CreatedAt,
		UpdatedAt:    dbCompany.UpdatedAt,
	}

	if len(dbCompany.Metadata) > 0 {
		if err := dbCompany.Metadata.Unmarshal(&company.Metadata); err != nil {
			return model.Company{}, fmt.Errorf("unmarshal metadata of company %s: %w", dbCompany.CompanyID, err)
		}
	}
	if company.Metadata.Metrics == nil {
		company.Metadata.Metrics = map[string]float64{}
	}

	return company, nil
}

func ConvertInvestment(dbInvestment dbModel.Investment) model.Investment {
	return model.Investment{
		ID:                  dbInvestment.ID,
		CompanyID:           dbInvestment.CompanyID,
		InvestmentDate:      dbInvestment.InvestmentDate,
		RoundName:           dbInvestment.RoundName,
		Stage:               dbInvestment.Stage,
		AmountInvested:      dbInvestment.AmountInvested,
		OwnershipPercentage: dbInvestment.OwnershipPercentage,
		Valuation:           dbInvestment.Valuation,
		Status:              dbInvestment.Status.String,
		CreatedAt:           dbInvestment.CreatedAt,
	}
}

func ConvertMetrics(dbMetrics dbModel.MetricsHistory) model.MetricsRecord {
	return model.MetricsRecord{
		ID:                 dbMetrics.ID,
		CompanyID:          dbMetrics.CompanyID,
		CompanyName:        dbMetrics.CompanyName.String,
		MetricDate:         dbMetrics.MetricDate,
		PostMoneyValuation: dbMetrics.PostMoneyValuation,
		SharesOwned:        dbMetrics.SharesOwned,
		ARR:                dbMetrics.ARR,
		MRR:                dbMetrics.MRR,
		BurnRate:           dbMetrics.BurnRate,
		RunwayMonths:       dbMetrics.RunwayMonths,
		CreatedAt:          dbMetrics.CreatedAt,
	}
}

func ConvertOrganization(dbOrganization dbModel.Organization) model.Organization {
	return model.Organization{
		ID:        dbOrganization.OrganizationID,
		Name:      dbOrganization.Name,
		Type:      dbOrganization.Type,
		CreatedAt: dbOrganization.CreatedAt,
	}
}

func ConvertFund(dbFund dbModel.Fund) model.Fund {
	return model.Fund{
		ID:             dbFund.FundID,
		OrganizationID: dbFund.OrganizationID,
		Name:           dbFund.Name,
		VintageYear:    dbFund.VintageYear,
		FundSize:       dbFund.FundSize,
		Status:         dbFund.Status.String,
		CreatedAt:      dbFund.CreatedAt,
	}
}

func ConvertProfile(dbProfile dbModel.Profile) model.Profile {
	profile := model.Profile{
		ID:        dbProfile.ID,
		Email:     dbProfile.Email,
		Role:      dbProfile.Role,
		CreatedAt: dbProfile.CreatedAt,
		UpdatedAt: dbProfile.UpdatedAt,
	}
	if dbProfile.FullName.Valid {
		profile.FullName = &dbProfile.FullName.String
	}
	return profile
}

func ConvertFile(dbFile dbModel.File) model.File {
	return model.File{
		ID:         dbFile.FileID,
		FundID:     dbFile.FundID.UUID,
		Name:       dbFile.Name,
		Path:       dbFile.Path,
		Size:       dbFile.Size,
		Type:       dbFile.Type,
		UploadedBy: nullUUID(dbFile.UploadedBy),
		CreatedAt:  dbFile.CreatedAt,
	}
}

func ConvertInvestorUpdate(dbUpdate dbModel.InvestorUpdate) model.InvestorUpdate {
	update := model.InvestorUpdate{
		ID:        dbUpdate.ID,
		CompanyID: dbUpdate.CompanyID.UUID,
		Title:     dbUpdate.Title,
		CreatedAt: dbUpdate.CreatedAt,
	}
	if dbUpdate.Content.Valid {
		update.Content = &dbUpdate.Content.String
	}
	if dbUpdate.AttachmentPath.Valid {
		update.AttachmentPath = &dbUpdate.AttachmentPath.String
	}
	return update
}

func nullUUID(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	return &id.UUID
}
