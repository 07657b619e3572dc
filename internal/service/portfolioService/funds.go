package portfolioService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
)

// Onboard creates the signed-in user's organization and first fund and promotes the user to the
// vc role. Either every row is written or none.
func (s *PortfolioService) Onboard(ctx context.Context, req model.OnboardingRequest) (res model.OnboardingResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Onboard"

	slog.Debug("Onboard start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("Onboard failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("Onboard completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fundID", res.Fund.ID.String()))
		}
	}()

	sess, ok := utils.GetSessionFromCtx(ctx)
	if !ok {
		return model.OnboardingResult{}, service.ErrUnauthorized
	}

	if err = validateOnboarding(req); err != nil {
		return model.OnboardingResult{}, err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		org, err := s.repo.InsertOrganization(ctx, req.OrganizationName, model.OrganizationTypeVCFirm)
		if err != nil {
			return err
		}

		err = s.repo.InsertOrganizationUser(ctx, model.OrganizationUser{
			OrganizationID: org.ID,
			UserID:         sess.UserID,
			Role:           model.OrganizationRoleAdmin,
		})
		if err != nil {
			return err
		}

		fund, err := s.repo.InsertFund(ctx, model.Fund{
			OrganizationID: org.ID,
			Name:           req.FundName,
			VintageYear:    req.VintageYear,
			FundSize:       req.FundSize,
			Status:         model.FundStatusActive,
		})
		if err != nil {
			return err
		}

		err = s.repo.InsertFundUser(ctx, model.FundUser{FundID: fund.ID, UserID: sess.UserID, Role: model.FundRoleManager})
		if err != nil {
			return err
		}

		if err = s.repo.UpdateProfileRole(ctx, sess.UserID, model.RoleVC); err != nil {
			return err
		}

		res = model.OnboardingResult{Organization: org, Fund: fund}
		return nil
	})
	if err != nil {
		return model.OnboardingResult{}, mapRepoErr(err)
	}

	s.invalidate(ctx, keyFunds, keyTeam, allPortfolioSummaries)

	return res, nil
}

func (s *PortfolioService) GetFunds(ctx context.Context) ([]model.Fund, error) {
	return fetch(ctx, s, keyFunds, func(ctx context.Context) ([]model.Fund, error) {
		return s.repo.GetFunds(ctx)
	})
}

func (s *PortfolioService) GetFund(ctx context.Context, fundID uuid.UUID) (model.Fund, error) {
	funds, err := s.GetFunds(ctx)
	if err != nil {
		return model.Fund{}, err
	}
	for _, f := range funds {
		if f.ID == fundID {
			return f, nil
		}
	}
	// the cached list may predate the fund
	fund, err := s.repo.GetFund(ctx, fundID)
	return fund, mapRepoErr(err)
}

func (s *PortfolioService) GetTeam(ctx context.Context) ([]model.Profile, error) {
	return fetch(ctx, s, keyTeam, func(ctx context.Context) ([]model.Profile, error) {
		return s.repo.GetProfiles(ctx)
	})
}
