package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/aggregator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// metricsFile is the YAML layout read by the aggregate command.
//
//	metrics:
//	  - company: acme
//	    date: 2024-01-15
//	    valuation: 1000000
//	    shares_owned: 10
type metricsFile struct {
	Metrics []metricsEntry `yaml:"metrics"`
}

type metricsEntry struct {
	Company     string `yaml:"company"`
	Date        string `yaml:"date"`
	Valuation   string `yaml:"valuation"`
	SharesOwned string `yaml:"shares_owned"`
}

func newAggregateCmd() *cobra.Command {
	var (
		file         string
		carryForward bool
	)

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate metrics from a YAML file and print the portfolio summary as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read metrics file: %w", err)
			}

			records, err := parseMetrics(raw)
			if err != nil {
				return err
			}

			var opts []aggregator.Option
			if carryForward {
				opts = append(opts, aggregator.WithCarryForward())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(aggregator.Aggregate(records, opts...))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with metrics entries")
	cmd.Flags().BoolVar(&carryForward, "carry-forward", false, "use each company's latest value on or before every date")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// parseMetrics turns the YAML entries into records. Company names map to stable ids.
func parseMetrics(raw []byte) ([]model.MetricsRecord, error) {
	var f metricsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse metrics file: %w", err)
	}

	records := make([]model.MetricsRecord, 0, len(f.Metrics))
	for i, e := range f.Metrics {
		if e.Company == "" {
			return nil, fmt.Errorf("entry %d: company is required", i+1)
		}
		on, err := calendar.Parse(e.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		valuation, err := optionalDecimal(e.Valuation)
		if err != nil {
			return nil, fmt.Errorf("entry %d: valuation: %w", i+1, err)
		}
		shares, err := optionalDecimal(e.SharesOwned)
		if err != nil {
			return nil, fmt.Errorf("entry %d: shares_owned: %w", i+1, err)
		}

		records = append(records, model.MetricsRecord{
			CompanyID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(e.Company)),
			MetricDate:         on,
			PostMoneyValuation: valuation,
			SharesOwned:        shares,
		})
	}
	return records, nil
}

func optionalDecimal(v string) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
