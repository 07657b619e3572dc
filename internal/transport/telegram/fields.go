package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/shopspring/decimal"
)

// clearValue empties an optional field.
const clearValue = "-"

type setter[T any] func(draft *T, value string) error

var companySetters = map[string]setter[model.CompanyDraft]{
	"name":     func(d *model.CompanyDraft, v string) error { return setRequired(&d.Name, v) },
	"industry": func(d *model.CompanyDraft, v string) error { return setRequired(&d.Industry, v) },
	"status":   func(d *model.CompanyDraft, v string) error { return setRequired(&d.Status, v) },
	"founding_date": func(d *model.CompanyDraft, v string) error {
		if v == clearValue {
			d.FoundingDate = calendar.Date{}
			return nil
		}
		on, err := calendar.Parse(v)
		if err != nil {
			return fmt.Errorf("must be a date like 2021-03-01")
		}
		d.FoundingDate = on
		return nil
	},
	"team_size": func(d *model.CompanyDraft, v string) error {
		if v == clearValue {
			d.Metadata.TeamSize = nil
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("must be a whole number")
		}
		d.Metadata.TeamSize = &n
		return nil
	},
	"hq_location": func(d *model.CompanyDraft, v string) error { return setOptional(&d.Metadata.HQLocation, v) },
	"performance": func(d *model.CompanyDraft, v string) error { return setOptional(&d.Metadata.Performance, v) },
	"description": func(d *model.CompanyDraft, v string) error { return setOptional(&d.Metadata.Description, v) },
}

var metricsSetters = map[string]setter[model.MetricsDraft]{
	"valuation":     func(d *model.MetricsDraft, v string) error { return setDecimal(&d.PostMoneyValuation, v) },
	"shares_owned":  func(d *model.MetricsDraft, v string) error { return setDecimal(&d.SharesOwned, v) },
	"arr":           func(d *model.MetricsDraft, v string) error { return setDecimal(&d.ARR, v) },
	"mrr":           func(d *model.MetricsDraft, v string) error { return setDecimal(&d.MRR, v) },
	"burn_rate":     func(d *model.MetricsDraft, v string) error { return setDecimal(&d.BurnRate, v) },
	"runway_months": func(d *model.MetricsDraft, v string) error { return setDecimal(&d.RunwayMonths, v) },
}

func setRequired(field *string, v string) error {
	if v == "" || v == clearValue {
		return fmt.Errorf("must not be empty")
	}
	*field = v
	return nil
}

func setOptional(field **string, v string) error {
	if v == clearValue {
		*field = nil
		return nil
	}
	*field = &v
	return nil
}

func setDecimal(field *decimal.NullDecimal, v string) error {
	if v == clearValue {
		*field = decimal.NullDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(strings.NewReplacer(",", "", "$", "", "_", "").Replace(v))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	*field = decimal.NewNullDecimal(d)
	return nil
}

// applyLines applies "field: value" lines to draft. Every line is tried; the returned error
// lists all failing fields and the draft keeps the lines that were valid.
func applyLines[T any](draft *T, text string, setters map[string]setter[T]) error {
	verr := &service.ValidationError{}
	applied := 0

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok {
			verr.Add(name, "expected \"field: value\"")
			continue
		}
		set, known := setters[name]
		if !known {
			verr.Add(name, "unknown field")
			continue
		}
		if err := set(draft, strings.TrimSpace(value)); err != nil {
			verr.Add(name, err.Error())
			continue
		}
		applied++
	}

	if applied == 0 && len(verr.Fields) == 0 {
		verr.Add("message", "no changes found")
	}
	return verr.Err()
}
