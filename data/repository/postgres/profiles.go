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

const profileColumns = `id, email, full_name, role, created_at, updated_at`

func (r *Postgres) GetProfile(ctx context.Context, userID uuid.UUID) (profile model.Profile, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	slog.Debug("GetProfile start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetProfile failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetProfile completed", slog.String("rqID", rqID))
		}
	}()

	dbProfile := dbModel.Profile{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID).StructScan(&dbProfile)
	if err != nil {
		return model.Profile{}, mapErr(err)
	}

	return dbConverter.ConvertProfile(dbProfile), nil
}

// UpsertProfile creates the profile on first sign-in. An existing profile keeps its role.
func (r *Postgres) UpsertProfile(ctx context.Context, profile model.Profile) (_ model.Profile, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO profiles(id, email, full_name, role) VALUES($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
		    updated_at = now()
		RETURNING ` + profileColumns

	slog.Debug("UpsertProfile start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertProfile failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertProfile completed", slog.String("rqID", rqID))
		}
	}()

	dbProfile := dbModel.Profile{}
	err = r.txOrDb(ctx).
		QueryRowxContext(ctx, query, profile.ID, profile.Email, profile.FullName, profile.Role).
		StructScan(&dbProfile)
	if err != nil {
		return model.Profile{}, mapErr(err)
	}

	return dbConverter.ConvertProfile(dbProfile), nil
}

func (r *Postgres) UpdateProfileRole(ctx context.Context, userID uuid.UUID, role string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1`

	slog.Debug("UpdateProfileRole start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateProfileRole failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateProfileRole completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, userID, role)
	if err != nil {
		return mapErr(err)
	}

	return requireAffected(res)
}

func (r *Postgres) GetProfiles(ctx context.Context) (profiles []model.Profile, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at`

	slog.Debug("GetProfiles start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetProfiles failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetProfiles completed", slog.String("rqID", rqID))
		}
	}()

	var dbProfiles []dbModel.Profile
	err = r.txOrDb(ctx).SelectContext(ctx, &dbProfiles, query)
	if err != nil {
		return nil, mapErr(err)
	}

	profiles = make([]model.Profile, 0, len(dbProfiles))
	for _, p := range dbProfiles {
		profiles = append(profiles, dbConverter.ConvertProfile(p))
	}

	return profiles, nil
}
