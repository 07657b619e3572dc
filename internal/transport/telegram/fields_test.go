package telegram

import (
	"testing"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLines_Company(t *testing.T) {
	hq := "Berlin"
	draft := model.CompanyDraft{Name: "Acme", Industry: "Fintech", Status: "Active"}
	draft.Metadata.HQLocation = &hq

	err := applyLines(&draft, "Name: Acme Labs\nteam_size: 12\n\nhq_location: -\nfounding_date: 2020-02-29", companySetters)
	require.NoError(t, err)

	assert.Equal(t, "Acme Labs", draft.Name)
	require.NotNil(t, draft.Metadata.TeamSize)
	assert.Equal(t, 12, *draft.Metadata.TeamSize)
	assert.Nil(t, draft.Metadata.HQLocation)
	assert.Equal(t, "2020-02-29", draft.FoundingDate.String())
}

func TestApplyLines_KeepsValidLines(t *testing.T) {
	draft := model.MetricsDraft{}

	err := applyLines(&draft, "arr: $1,200,000\nmrr: lots\ncolor: red\nno separator", metricsSetters)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidation)

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be a number", verr.Fields["mrr"])
	assert.Equal(t, "unknown field", verr.Fields["color"])
	assert.Contains(t, verr.Fields, "no separator")

	assert.True(t, draft.ARR.Valid)
	assert.True(t, draft.ARR.Decimal.Equal(decimal.NewFromInt(1_200_000)))
	assert.False(t, draft.MRR.Valid)
}

func TestApplyLines_RejectsEmptyRequired(t *testing.T) {
	draft := model.CompanyDraft{Name: "Acme"}

	err := applyLines(&draft, "name: -", companySetters)

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must not be empty", verr.Fields["name"])
	assert.Equal(t, "Acme", draft.Name)
}

func TestApplyLines_NothingToApply(t *testing.T) {
	draft := model.MetricsDraft{}

	err := applyLines(&draft, "  \n ", metricsSetters)

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"message": "no changes found"}, verr.Fields)
}
