package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/data"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/cache"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/repository/postgres"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service/portfolioService"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/spf13/cobra"
)

const reportTimeout = 2 * time.Minute

func newReportCmd() *cobra.Command {
	var (
		out   string
		title string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the portfolio workbook from the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad()

			ctx, cancel := context.WithTimeout(cmd.Context(), reportTimeout)
			defer cancel()
			ctx = utils.WithRequestID(ctx, "")

			pgClient, err := data.NewPostgresClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer pgClient.Close()

			redisClient, err := data.NewRedisClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			generator := xslsxGenerator.New()
			srv := portfolioService.New(cfg, postgres.NewPostgres(cfg, pgClient), cache.NewRedisCache(redisClient, cfg), generator)

			report, err := srv.BuildReport(ctx, title)
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}

			content, ext, err := generator.Generate(ctx, report)
			if err != nil {
				return fmt.Errorf("generate workbook: %w", err)
			}

			if filepath.Ext(out) == "" {
				out += ext
			}
			if err = os.WriteFile(out, content, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "portfolio_report.xlsx", "output file")
	cmd.Flags().StringVar(&title, "title", "Portfolio report", "workbook title")

	return cmd
}
