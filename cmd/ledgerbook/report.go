package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/internal/accounting"
	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
	"github.com/ledgerbook/ledgerbook/internal/app"
	"github.com/ledgerbook/ledgerbook/internal/platform/db"
)

func newReportCmd() *cobra.Command {
	var (
		book       string
		reportType string
		start      string
		end        string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate one statement and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := reports.ParseReportType(reportType)
			if err != nil {
				return err
			}
			period, err := accounting.ParsePeriod(start, end)
			if err != nil {
				return err
			}

			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			statements, err := app.LoadStatements(cfg, logger)
			if err != nil {
				return err
			}
			dbpool, err := db.New(cmd.Context(), db.Options{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns})
			if err != nil {
				logger.Error("connect postgres", slog.Any("error", err))
				return err
			}
			defer dbpool.Close()

			repo := accounting.NewRepository(dbpool, logger)
			service := app.NewReportService(app.ReportServiceParams{
				Config:     cfg,
				Logger:     logger,
				Statements: statements,
				Accounts:   repo,
				Entries:    repo,
			})
			report, err := service.Generate(cmd.Context(), accounting.ReportRequest{BookID: book, Type: rt, Period: period})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&book, "book", "", "book identifier")
	cmd.Flags().StringVar(&reportType, "type", string(reports.BalanceSheet), "balance_sheet, income_statement or cash_flow")
	cmd.Flags().StringVar(&start, "start", "", "first day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day of the period (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newStatementsCmd() *cobra.Command {
	statements := &cobra.Command{
		Use:   "statements",
		Short: "Inspect statement configuration",
	}
	statements.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a statement configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *reports.Config
				err error
			)
			if len(args) == 1 {
				cfg, err = reports.LoadConfigFile(slog.Default(), args[0])
			} else {
				cfg, err = reports.DefaultConfig(slog.Default())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d statements, fiscal year starts in %s\n", len(reports.ReportTypes), cfg.FiscalYearStartMonth())
			return nil
		},
	})
	return statements
}
